package repositories

import (
	"errors"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrMissingID = errors.New("record has no id")

	ErrWorkflowRunConflict = errors.New("workflow run already exists")
	ErrWorkflowRunNotFound = errors.New("workflow run not found")
)

// translate maps backend responses onto repository sentinels while keeping the original
// *apiclient.APIError reachable through errors.As.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case apiclient.IsNotFound(err):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case apiclient.IsDuplicate(err):
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
