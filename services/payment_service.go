package services

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
)

type PaymentService interface {
	CreatePreference(ctx context.Context, input models.PaymentPreferenceInput) (*models.PaymentPreference, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
}

func NewPaymentService(paymentRepo repositories.PaymentRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo}
}

func (s *paymentService) CreatePreference(ctx context.Context, input models.PaymentPreferenceInput) (*models.PaymentPreference, error) {
	if input.RegistrationID <= 0 || input.Amount <= 0 {
		return nil, ErrValidationFailed
	}
	pref, err := s.paymentRepo.CreatePreference(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return pref, nil
}
