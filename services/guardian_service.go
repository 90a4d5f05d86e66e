package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
)

// Step names of the guardian workflows.
const (
	StepLoadParties    = "load_parties"
	StepInheritContact = "inherit_contact"
	StepRemoveLink     = "remove_link"
	StepCreateLink     = "create_link"
	StepRemoveLinks    = "remove_links"
	StepDeleteRole     = "delete_role"
)

type LinkGuardianInput struct {
	AthleteID    int                 `json:"idAtleta" validate:"required,gt=0"`
	TutorID      int                 `json:"idTutor" validate:"required,gt=0,nefield=AthleteID"`
	Relationship models.Relationship `json:"parentesco" validate:"gte=0,lte=3"`
}

type LinkGuardianResult struct {
	RunID           string              `json:"run_id"`
	Link            models.AthleteTutor `json:"link"`
	RemovedLinks    int                 `json:"removed_links"`
	InheritedFields []string            `json:"inherited_fields,omitempty"`
	AlreadyExisted  bool                `json:"already_existed"`
	AthleteIsMinor  bool                `json:"athlete_is_minor"`
}

type DeleteResult struct {
	RunID        string `json:"run_id"`
	RemovedLinks int    `json:"removed_links"`
}

type GuardianService interface {
	LinkMinorToGuardian(ctx context.Context, input LinkGuardianInput) (*LinkGuardianResult, error)
	DeleteTutor(ctx context.Context, tutorID int) (*DeleteResult, error)
	DeleteAthlete(ctx context.Context, athleteID int) (*DeleteResult, error)
}

type guardianService struct {
	personRepo  repositories.PersonRepository
	athleteRepo repositories.AthleteRepository
	tutorRepo   repositories.TutorRepository
	linkRepo    repositories.AthleteTutorRepository
	recorder    *workflowRecorder
	now         func() time.Time
}

func NewGuardianService(
	personRepo repositories.PersonRepository,
	athleteRepo repositories.AthleteRepository,
	tutorRepo repositories.TutorRepository,
	linkRepo repositories.AthleteTutorRepository,
	workflowLog repositories.WorkflowLogRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) GuardianService {
	return &guardianService{
		personRepo:  personRepo,
		athleteRepo: athleteRepo,
		tutorRepo:   tutorRepo,
		linkRepo:    linkRepo,
		recorder:    newWorkflowRecorder(workflowLog, m, logger),
		now:         time.Now,
	}
}

// LinkMinorToGuardian replaces every guardian link of the athlete with a single link to the
// tutor. Steps run in order and are never rolled back: a failure after a link was removed
// leaves the athlete unlinked and is reported as an inconsistent-state WorkflowError.
func (s *guardianService) LinkMinorToGuardian(ctx context.Context, input LinkGuardianInput) (*LinkGuardianResult, error) {
	if input.AthleteID <= 0 || input.TutorID <= 0 || !input.Relationship.Valid() {
		return nil, ErrValidationFailed
	}
	if input.AthleteID == input.TutorID {
		return nil, ErrSameAthleteAndTutor
	}

	run, err := s.recorder.begin(ctx, WorkflowLinkGuardian, fmt.Sprintf("athlete:%d tutor:%d", input.AthleteID, input.TutorID))
	if err != nil {
		return nil, err
	}
	result := &LinkGuardianResult{RunID: run.id}

	var minor, guardian *models.Person
	err = run.step(ctx, StepLoadParties, false, "", func(ctx context.Context) error {
		if _, err := s.athleteRepo.GetByPersonID(ctx, input.AthleteID); err != nil {
			return notFoundAs(err, ErrAthleteNotFound)
		}
		if _, err := s.tutorRepo.GetByPersonID(ctx, input.TutorID); err != nil {
			return notFoundAs(err, ErrTutorNotFound)
		}
		if minor, err = s.personRepo.GetByID(ctx, input.AthleteID); err != nil {
			return notFoundAs(err, ErrPersonNotFound)
		}
		if guardian, err = s.personRepo.GetByID(ctx, input.TutorID); err != nil {
			return notFoundAs(err, ErrPersonNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.AthleteIsMinor = isMinor(CalculateAge(minor.BirthDate, s.now()))
	if !result.AthleteIsMinor {
		run.logger.Info("linking a guardian to an athlete who is not a minor", "athlete_id", input.AthleteID)
	}

	if inherited := inheritContact(minor, guardian); len(inherited) > 0 {
		detail := strings.Join(inherited, ",")
		err = run.step(ctx, StepInheritContact, true, detail, func(ctx context.Context) error {
			return s.personRepo.Update(ctx, minor)
		})
		if err != nil {
			return nil, err
		}
		result.InheritedFields = inherited
	}

	var existing []models.AthleteTutor
	err = run.step(ctx, "list_links", false, "", func(ctx context.Context) error {
		links, err := s.linkRepo.List(ctx)
		if err != nil {
			return err
		}
		existing = linksOfAthlete(links, input.AthleteID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, link := range existing {
		err = run.step(ctx, StepRemoveLink, true, linkDetail(link), func(ctx context.Context) error {
			return ignoreNotFound(s.linkRepo.Delete(ctx, link))
		})
		if err != nil {
			return nil, err
		}
		result.RemovedLinks++
	}

	link := models.AthleteTutor{AthleteID: input.AthleteID, TutorID: input.TutorID, Relationship: input.Relationship}
	err = run.step(ctx, StepCreateLink, true, linkDetail(link), func(ctx context.Context) error {
		if err := s.linkRepo.Create(ctx, &link); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				result.AlreadyExisted = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Link = link
	run.finish(ctx)
	return result, nil
}

// inheritContact copies the guardian's email and phone onto the minor where the minor has none
// and returns the names of the copied fields.
func inheritContact(minor, guardian *models.Person) []string {
	var fields []string
	if strings.TrimSpace(minor.Email) == "" && strings.TrimSpace(guardian.Email) != "" {
		minor.Email = guardian.Email
		fields = append(fields, "email")
	}
	if strings.TrimSpace(minor.Phone) == "" && strings.TrimSpace(guardian.Phone) != "" {
		minor.Phone = guardian.Phone
		fields = append(fields, "telefono")
	}
	return fields
}

func linksOfAthlete(links []models.AthleteTutor, athleteID int) []models.AthleteTutor {
	var out []models.AthleteTutor
	for _, l := range links {
		if l.AthleteID == athleteID {
			out = append(out, l)
		}
	}
	return out
}

func linksOfTutor(links []models.AthleteTutor, tutorID int) []models.AthleteTutor {
	var out []models.AthleteTutor
	for _, l := range links {
		if l.TutorID == tutorID {
			out = append(out, l)
		}
	}
	return out
}

func linkDetail(l models.AthleteTutor) string {
	if l.HasID() {
		return fmt.Sprintf("id:%d athlete:%d tutor:%d", l.ID, l.AthleteID, l.TutorID)
	}
	return fmt.Sprintf("athlete:%d tutor:%d", l.AthleteID, l.TutorID)
}

func (s *guardianService) DeleteTutor(ctx context.Context, tutorID int) (*DeleteResult, error) {
	exists := func(ctx context.Context, id int) error {
		_, err := s.tutorRepo.GetByPersonID(ctx, id)
		return err
	}
	return s.deleteRole(ctx, WorkflowDeleteTutor, tutorID, linksOfTutor, ErrTutorNotFound, exists, s.tutorRepo.Delete)
}

func (s *guardianService) DeleteAthlete(ctx context.Context, athleteID int) (*DeleteResult, error) {
	exists := func(ctx context.Context, id int) error {
		_, err := s.athleteRepo.GetByPersonID(ctx, id)
		return err
	}
	return s.deleteRole(ctx, WorkflowDeleteAthlete, athleteID, linksOfAthlete, ErrAthleteNotFound, exists, s.athleteRepo.Delete)
}

// deleteRole removes every link that references the role record and only then the record
// itself. If any link survives, the record is left in place. A record that is already gone is
// reported as not found before any link is touched, so its dangling links stay for the
// listings to report.
func (s *guardianService) deleteRole(
	ctx context.Context,
	workflow string,
	personID int,
	filter func([]models.AthleteTutor, int) []models.AthleteTutor,
	notFound error,
	exists func(context.Context, int) error,
	deleteFn func(context.Context, int) error,
) (*DeleteResult, error) {
	if personID <= 0 {
		return nil, ErrValidationFailed
	}
	if err := exists(ctx, personID); err != nil {
		return nil, notFoundAs(err, notFound)
	}
	run, err := s.recorder.begin(ctx, workflow, fmt.Sprintf("person:%d", personID))
	if err != nil {
		return nil, err
	}
	result := &DeleteResult{RunID: run.id}

	var refs []models.AthleteTutor
	err = run.step(ctx, "list_links", false, "", func(ctx context.Context) error {
		links, err := s.linkRepo.List(ctx)
		if err != nil {
			return err
		}
		refs = filter(links, personID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var failed []string
	for _, link := range refs {
		if err := ignoreNotFound(s.linkRepo.Delete(ctx, link)); err != nil {
			run.logger.Warn("failed to remove link before delete", "link", linkDetail(link), "error", err)
			failed = append(failed, linkDetail(link))
			continue
		}
		result.RemovedLinks++
	}
	if result.RemovedLinks > 0 {
		run.record(ctx, StepRemoveLinks, true, fmt.Sprintf("removed:%d", result.RemovedLinks))
	}
	if len(failed) > 0 {
		return nil, run.fail(ctx, StepRemoveLinks, fmt.Errorf("%w: %s", ErrDeleteBlocked, strings.Join(failed, "; ")))
	}

	err = run.step(ctx, StepDeleteRole, true, "", func(ctx context.Context) error {
		return notFoundAs(deleteFn(ctx, personID), notFound)
	})
	if err != nil {
		return nil, err
	}
	run.finish(ctx)
	return result, nil
}

// notFoundAs replaces a repository not-found error with a service sentinel.
func notFoundAs(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return sentinel
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return err
}
