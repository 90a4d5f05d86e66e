package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
)

type TransferOutcome string

const (
	TransferUnchanged         TransferOutcome = "unchanged"
	TransferNeedsConfirmation TransferOutcome = "needs_confirmation"
	TransferCompleted         TransferOutcome = "completed"
)

const StepUpdateClub = "update_club"

type TransferInput struct {
	AthleteID int  `json:"idAtleta" validate:"required,gt=0"`
	ClubID    int  `json:"idClub" validate:"required,gt=0"`
	Confirmed bool `json:"confirmado"`
}

type TransferResult struct {
	Outcome      TransferOutcome `json:"outcome"`
	RunID        string          `json:"run_id,omitempty"`
	AthleteID    int             `json:"idAtleta"`
	FromClubID   *int            `json:"idClubActual"`
	FromClubName string          `json:"nombreClubActual"`
	ToClubID     int             `json:"idClubDestino"`
	ToClubName   string          `json:"nombreClubDestino"`
}

type TransferService interface {
	Transfer(ctx context.Context, input TransferInput) (*TransferResult, error)
}

type transferService struct {
	athleteRepo repositories.AthleteRepository
	clubRepo    repositories.ClubRepository
	recorder    *workflowRecorder
	logger      *slog.Logger
}

func NewTransferService(
	athleteRepo repositories.AthleteRepository,
	clubRepo repositories.ClubRepository,
	workflowLog repositories.WorkflowLogRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) TransferService {
	return &transferService{
		athleteRepo: athleteRepo,
		clubRepo:    clubRepo,
		recorder:    newWorkflowRecorder(workflowLog, m, logger),
		logger:      logger,
	}
}

// Transfer moves an athlete to another club. An athlete that already belongs to a different
// club is only moved when the input is confirmed; otherwise the caller gets a
// needs_confirmation result and nothing is written. The update carries the full record as
// fetched with only the club id replaced.
func (s *transferService) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.AthleteID <= 0 || input.ClubID <= 0 {
		return nil, ErrValidationFailed
	}

	record, err := s.athleteRepo.GetRecord(ctx, input.AthleteID)
	if err != nil {
		return nil, notFoundAs(err, ErrAthleteNotFound)
	}
	target, err := s.clubRepo.GetByID(ctx, input.ClubID)
	if err != nil {
		return nil, notFoundAs(err, ErrClubNotFound)
	}

	result := &TransferResult{
		AthleteID:    input.AthleteID,
		ToClubID:     target.ID,
		ToClubName:   orPlaceholder(target.Name),
		FromClubName: models.FreeAgentLabel,
	}
	if current, ok := record.Int("idClub"); ok {
		result.FromClubID = &current
		result.FromClubName = s.clubName(ctx, current)
	}

	switch {
	case result.FromClubID != nil && *result.FromClubID == input.ClubID:
		result.Outcome = TransferUnchanged
		return result, nil
	case result.FromClubID != nil && !input.Confirmed:
		result.Outcome = TransferNeedsConfirmation
		return result, nil
	}

	run, err := s.recorder.begin(ctx, WorkflowTransfer, fmt.Sprintf("athlete:%d club:%d", input.AthleteID, input.ClubID))
	if err != nil {
		return nil, err
	}
	result.RunID = run.id
	detail := fmt.Sprintf("from:%s to:%d", result.FromClubName, input.ClubID)
	err = run.step(ctx, StepUpdateClub, true, detail, func(ctx context.Context) error {
		record.Set("idClub", input.ClubID)
		return s.athleteRepo.UpdateRecord(ctx, input.AthleteID, record)
	})
	if err != nil {
		return nil, err
	}
	run.finish(ctx)
	result.Outcome = TransferCompleted
	return result, nil
}

func (s *transferService) clubName(ctx context.Context, clubID int) string {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		s.logger.Warn("could not resolve current club of athlete", "club_id", clubID, "error", err)
		return models.Placeholder
	}
	return orPlaceholder(club.Name)
}
