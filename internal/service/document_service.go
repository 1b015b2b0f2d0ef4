package service

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/auth"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/repository"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// DocumentService stores uploaded files on the fixture backend.
type DocumentService struct {
	documents repository.DocumentRepository
}

// NewDocumentService builds the service.
func NewDocumentService(documents repository.DocumentRepository) *DocumentService {
	return &DocumentService{documents: documents}
}

// List returns one page of the documents visible to actor.
func (s *DocumentService) List(ctx context.Context, actor *domain.User, query dto.DocumentListQuery) (domain.Page[domain.Document], error) {
	docs, err := s.visible(ctx, actor, repository.DocumentFilter{OwnerID: query.OwnerID, DepartmentID: query.DepartmentID})
	if err != nil {
		return domain.Page[domain.Document]{}, err
	}
	return domain.Paginate(docs, query.Page, query.Size), nil
}

// All returns every document visible to actor.
func (s *DocumentService) All(ctx context.Context, actor *domain.User) ([]domain.Document, error) {
	return s.visible(ctx, actor, repository.DocumentFilter{})
}

// Upload stores content owned by actor and actor's department.
func (s *DocumentService) Upload(ctx context.Context, actor *domain.User, filename, contentType string, content []byte) (*domain.Document, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, apperrors.NewValidationError("filename required", nil)
	}
	if len(content) > domain.MaxUploadBytes {
		return nil, apperrors.NewDomainError(apperrors.CodeValidation, "file exceeds 1 MiB", http.StatusRequestEntityTooLarge,
			map[string]any{"size": len(content), "limit": domain.MaxUploadBytes})
	}
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	doc := &domain.Document{
		Filename:    filename,
		Size:        int64(len(content)),
		ContentType: contentType,
		Owner:       actor.Ref(),
		Department:  actor.Department,
	}
	if err := s.documents.Create(ctx, doc, content); err != nil {
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}

// Rename changes a document's filename.
func (s *DocumentService) Rename(ctx context.Context, actor *domain.User, id int64, req dto.DocumentUpdateRequest) (*domain.Document, error) {
	doc, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	doc.Filename = req.Filename
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, s.notFound(err, id)
	}
	return doc, nil
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return s.notFound(err, id)
	}
	return nil
}

// Download returns a document and its content if actor can see it.
func (s *DocumentService) Download(ctx context.Context, actor *domain.User, id int64) (*domain.Document, []byte, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, nil, s.notFound(err, id)
	}
	if !canView(actor, *doc) {
		return nil, nil, apperrors.NewForbidden("not allowed to read this document")
	}
	content, err := s.documents.Content(ctx, id)
	if err != nil {
		return nil, nil, s.notFound(err, id)
	}
	return doc, content, nil
}

func (s *DocumentService) visible(ctx context.Context, actor *domain.User, filter repository.DocumentFilter) ([]domain.Document, error) {
	docs, err := s.documents.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if canView(actor, doc) {
			result = append(result, doc)
		}
	}
	return result, nil
}

func (s *DocumentService) editable(ctx context.Context, actor *domain.User, id int64) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err, id)
	}
	if !auth.CanEditDocument(sessionOf(actor), *doc) {
		return nil, apperrors.NewForbidden("not allowed to modify this document")
	}
	return doc, nil
}

func (s *DocumentService) notFound(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("document", map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

// canView mirrors the edit rule and additionally lets every member of a
// department read its documents.
func canView(actor *domain.User, doc domain.Document) bool {
	session := sessionOf(actor)
	if auth.CanEditDocument(session, doc) {
		return true
	}
	return session != nil && session.DepartmentID() != 0 && session.DepartmentID() == doc.DepartmentID()
}
