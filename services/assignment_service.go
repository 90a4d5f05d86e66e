package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
)

type AssignmentOutcome string

const (
	AssignmentCreated AssignmentOutcome = "created"
	AssignmentUpdated AssignmentOutcome = "updated"
	// AssignmentExisting means the create was answered as a duplicate and nothing changed.
	AssignmentExisting AssignmentOutcome = "existing"
)

const (
	StepLoadPerson = "load_person"
	StepScanRoles  = "scan_roles"
	StepCreateRole = "create_role"
	StepUpdateRole = "update_role"
)

type AssignTutorInput struct {
	PersonID  int    `json:"idPersona" validate:"required,gt=0"`
	TutorType string `json:"tipoTutor" validate:"required,max=50"`
}

type AssignDelegateInput struct {
	PersonID     int  `json:"idPersona" validate:"required,gt=0"`
	ClubID       *int `json:"idClub" validate:"omitempty,gt=0"`
	RoleID       int  `json:"idRol" validate:"gte=0"`
	FederationID int  `json:"idFederacion" validate:"gte=0"`
}

type AssignmentResult struct {
	RunID    string            `json:"run_id"`
	Outcome  AssignmentOutcome `json:"outcome"`
	PersonID int               `json:"idPersona"`
}

type AssignmentService interface {
	AssignTutor(ctx context.Context, input AssignTutorInput) (*AssignmentResult, error)
	AssignDelegate(ctx context.Context, input AssignDelegateInput) (*AssignmentResult, error)
}

type assignmentService struct {
	personRepo   repositories.PersonRepository
	tutorRepo    repositories.TutorRepository
	delegateRepo repositories.DelegateRepository
	recorder     *workflowRecorder
}

func NewAssignmentService(
	personRepo repositories.PersonRepository,
	tutorRepo repositories.TutorRepository,
	delegateRepo repositories.DelegateRepository,
	workflowLog repositories.WorkflowLogRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) AssignmentService {
	return &assignmentService{
		personRepo:   personRepo,
		tutorRepo:    tutorRepo,
		delegateRepo: delegateRepo,
		recorder:     newWorkflowRecorder(workflowLog, m, logger),
	}
}

// findByPerson scans a role collection for the record keyed by personID. There is no indexed
// lookup, so the whole collection is read.
func findByPerson(records []apiclient.Record, personID int) apiclient.Record {
	for _, rec := range records {
		if id, ok := rec.Int("idPersona", "personaId", "id"); ok && id == personID {
			return rec
		}
	}
	return nil
}

// AssignTutor gives a person the tutor role. An existing tutor record is updated in full:
// every field the backend returned is sent back, with the type and the denormalized person
// fields refreshed.
func (s *assignmentService) AssignTutor(ctx context.Context, input AssignTutorInput) (*AssignmentResult, error) {
	if input.PersonID <= 0 || input.TutorType == "" {
		return nil, ErrValidationFailed
	}
	run, err := s.recorder.begin(ctx, WorkflowAssignTutor, fmt.Sprintf("person:%d", input.PersonID))
	if err != nil {
		return nil, err
	}
	result := &AssignmentResult{RunID: run.id, PersonID: input.PersonID}

	var person *models.Person
	err = run.step(ctx, StepLoadPerson, false, "", func(ctx context.Context) error {
		p, err := s.personRepo.GetByID(ctx, input.PersonID)
		person = p
		return notFoundAs(err, ErrPersonNotFound)
	})
	if err != nil {
		return nil, err
	}

	var existing apiclient.Record
	err = run.step(ctx, StepScanRoles, false, repositories.PathTutors, func(ctx context.Context) error {
		records, err := s.tutorRepo.ListRecords(ctx)
		existing = findByPerson(records, input.PersonID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		err = run.step(ctx, StepUpdateRole, true, repositories.PathTutors, func(ctx context.Context) error {
			existing.Set("tipoTutor", input.TutorType)
			existing.Set("nombre", person.FirstName)
			existing.Set("apellido", person.LastName)
			existing.Set("documento", person.Document)
			existing.Set("telefono", person.Phone)
			existing.Set("email", person.Email)
			return s.tutorRepo.UpdateRecord(ctx, input.PersonID, existing)
		})
		if err != nil {
			return nil, err
		}
		result.Outcome = AssignmentUpdated
		run.finish(ctx)
		return result, nil
	}

	tutor := models.Tutor{
		PersonID:  input.PersonID,
		TutorType: input.TutorType,
		FirstName: person.FirstName,
		LastName:  person.LastName,
		Document:  person.Document,
		Phone:     person.Phone,
		Email:     person.Email,
	}
	result.Outcome = AssignmentCreated
	err = run.step(ctx, StepCreateRole, true, repositories.PathTutors, func(ctx context.Context) error {
		err := s.tutorRepo.Create(ctx, &tutor)
		if errors.Is(err, repositories.ErrDuplicate) {
			result.Outcome = AssignmentExisting
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	run.finish(ctx)
	return result, nil
}

// AssignDelegate gives a person the club delegate role, updating the full record when one
// already exists.
func (s *assignmentService) AssignDelegate(ctx context.Context, input AssignDelegateInput) (*AssignmentResult, error) {
	if input.PersonID <= 0 {
		return nil, ErrValidationFailed
	}
	run, err := s.recorder.begin(ctx, WorkflowAssignDelegate, fmt.Sprintf("person:%d", input.PersonID))
	if err != nil {
		return nil, err
	}
	result := &AssignmentResult{RunID: run.id, PersonID: input.PersonID}

	err = run.step(ctx, StepLoadPerson, false, "", func(ctx context.Context) error {
		_, err := s.personRepo.GetByID(ctx, input.PersonID)
		return notFoundAs(err, ErrPersonNotFound)
	})
	if err != nil {
		return nil, err
	}

	var existing apiclient.Record
	err = run.step(ctx, StepScanRoles, false, repositories.PathDelegates, func(ctx context.Context) error {
		records, err := s.delegateRepo.ListRecords(ctx)
		existing = findByPerson(records, input.PersonID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		err = run.step(ctx, StepUpdateRole, true, repositories.PathDelegates, func(ctx context.Context) error {
			if input.ClubID != nil {
				existing.Set("idClub", *input.ClubID)
			} else {
				existing.Set("idClub", nil)
			}
			existing.Set("idRol", input.RoleID)
			existing.Set("idFederacion", input.FederationID)
			return s.delegateRepo.UpdateRecord(ctx, input.PersonID, existing)
		})
		if err != nil {
			return nil, err
		}
		result.Outcome = AssignmentUpdated
		run.finish(ctx)
		return result, nil
	}

	delegate := models.Delegate{
		PersonID:     input.PersonID,
		ClubID:       input.ClubID,
		RoleID:       input.RoleID,
		FederationID: input.FederationID,
	}
	result.Outcome = AssignmentCreated
	err = run.step(ctx, StepCreateRole, true, repositories.PathDelegates, func(ctx context.Context) error {
		err := s.delegateRepo.Create(ctx, &delegate)
		if errors.Is(err, repositories.ErrDuplicate) {
			result.Outcome = AssignmentExisting
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	run.finish(ctx)
	return result, nil
}
