package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
)

const MaxDocumentSize = 10 << 20

var allowedDocumentExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

type DocumentService interface {
	List(ctx context.Context, personID int) ([]models.Document, error)
	Upload(ctx context.Context, personID int, docType models.DocumentType, filename string, content io.Reader) (*models.Document, error)
}

type documentService struct {
	personRepo   repositories.PersonRepository
	documentRepo repositories.DocumentRepository
	logger       *slog.Logger
}

func NewDocumentService(personRepo repositories.PersonRepository, documentRepo repositories.DocumentRepository, logger *slog.Logger) DocumentService {
	return &documentService{personRepo: personRepo, documentRepo: documentRepo, logger: logger}
}

func (s *documentService) List(ctx context.Context, personID int) ([]models.Document, error) {
	if personID <= 0 {
		return nil, ErrValidationFailed
	}
	docs, err := s.documentRepo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, notFoundAs(err, ErrPersonNotFound)
	}
	return docs, nil
}

// Upload forwards a file to the backend's multipart endpoint after checking the person exists.
func (s *documentService) Upload(ctx context.Context, personID int, docType models.DocumentType, filename string, content io.Reader) (*models.Document, error) {
	if personID <= 0 || !docType.Valid() || content == nil {
		return nil, ErrValidationFailed
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedDocumentExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrValidationFailed, ext)
	}
	if _, err := s.personRepo.GetByID(ctx, personID); err != nil {
		return nil, notFoundAs(err, ErrPersonNotFound)
	}
	doc, err := s.documentRepo.Upload(ctx, personID, docType, filepath.Base(filename), content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	s.logger.Info("document uploaded", "person_id", personID, "document_id", doc.ID, "type", int(docType))
	return doc, nil
}
