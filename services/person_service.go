package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
)

type PersonService interface {
	// Resolve returns the person holding the input's document, creating it when none exists.
	Resolve(ctx context.Context, input models.Person) (*models.Person, bool, error)
	Find(ctx context.Context, document string) (*models.Person, error)
}

type personService struct {
	personRepo repositories.PersonRepository
	logger     *slog.Logger
}

func NewPersonService(personRepo repositories.PersonRepository, logger *slog.Logger) PersonService {
	return &personService{personRepo: personRepo, logger: logger}
}

func (s *personService) Find(ctx context.Context, document string) (*models.Person, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, ErrDocumentRequired
	}
	person, err := s.personRepo.FindByDocument(ctx, document)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return person, nil
}

// Resolve looks the document up first and creates only on a miss. A duplicate answer to the
// create means another writer won the race, so the lookup is repeated. The bool reports whether
// this call created the person.
func (s *personService) Resolve(ctx context.Context, input models.Person) (*models.Person, bool, error) {
	input.Document = strings.TrimSpace(input.Document)
	if input.Document == "" {
		return nil, false, ErrDocumentRequired
	}

	existing, err := s.Find(ctx, input.Document)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrPersonNotFound) {
		return nil, false, err
	}

	created := input
	created.ID = 0
	if err := s.personRepo.Create(ctx, &created); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			s.logger.Info("person created concurrently, resolving existing record", "document", input.Document)
			existing, findErr := s.Find(ctx, input.Document)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if created.ID == 0 {
		// Some create endpoints answer 204; the id then comes from a second lookup.
		existing, err := s.Find(ctx, input.Document)
		if err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}
	return &created, true, nil
}
