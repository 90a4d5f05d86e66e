package services

import (
	"errors"
	"fmt"
	"strings"
)

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	// Resource lookups
	ErrNotFound        = errors.New("requested resource not found")
	ErrPersonNotFound  = errors.New("person not found")
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrTutorNotFound   = errors.New("tutor not found")
	ErrClubNotFound    = errors.New("club not found")
	ErrRunNotFound     = errors.New("workflow run not found")
	ErrJobNotFound     = errors.New("teardown job not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrDocumentRequired     = errors.New("person document is required")
	ErrSameAthleteAndTutor  = errors.New("athlete and tutor must be different people")
	ErrConfirmationRequired = errors.New("transfer requires confirmation")
	ErrPassphraseMismatch   = errors.New("teardown passphrase does not match")
	ErrTeardownInProgress   = errors.New("a teardown job is already running")

	// Relationship integrity
	ErrDeleteBlocked     = errors.New("delete blocked: linked records could not be removed")
	ErrInconsistentState = errors.New("something went wrong, state may be inconsistent")

	// Upstream backend
	ErrUpstream = errors.New("federation backend request failed")
)

// WorkflowError reports a multi-step mutation that stopped at Step. Completed lists the steps
// that already reached the backend; when any of them mutated data the error also matches
// ErrInconsistentState.
type WorkflowError struct {
	Workflow  string
	RunID     string
	Step      string
	Completed []string
	Mutated   bool
	Err       error
}

func (e *WorkflowError) Error() string {
	msg := fmt.Sprintf("%s failed at step %s: %v", e.Workflow, e.Step, e.Err)
	if e.Mutated {
		msg += fmt.Sprintf(" (completed: %s; %s)", strings.Join(e.Completed, ", "), ErrInconsistentState)
	}
	return msg
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return target == ErrInconsistentState && e.Mutated
}
