package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/docdesk/internal/domain"
)

// DocumentFilter narrows List results. Zero fields match everything.
type DocumentFilter struct {
	OwnerID      int64
	DepartmentID int64
}

// DocumentRepository stores the fixture backend's uploaded files.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document, content []byte) error
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	Content(ctx context.Context, id int64) ([]byte, error)
	List(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)
}

type storedDocument struct {
	doc     domain.Document
	content []byte
}

type documentRepository struct {
	mu        sync.RWMutex
	nextID    int64
	documents map[int64]storedDocument
}

// NewDocumentRepository builds the repository.
func NewDocumentRepository() DocumentRepository {
	return &documentRepository{documents: make(map[int64]storedDocument)}
}

func (r *documentRepository) Create(_ context.Context, doc *domain.Document, content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	doc.ID = r.nextID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	r.documents[doc.ID] = storedDocument{doc: *doc, content: append([]byte(nil), content...)}
	return nil
}

func (r *documentRepository) Update(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.documents[doc.ID]
	if !ok {
		return ErrNotFound
	}
	stored.doc = *doc
	r.documents[doc.ID] = stored
	return nil
}

func (r *documentRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[id]; !ok {
		return ErrNotFound
	}
	delete(r.documents, id)
	return nil
}

func (r *documentRepository) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	doc := stored.doc
	return &doc, nil
}

func (r *documentRepository) Content(_ context.Context, id int64) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), stored.content...), nil
}

func (r *documentRepository) List(_ context.Context, filter DocumentFilter) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Document, 0, len(r.documents))
	for _, stored := range r.documents {
		doc := stored.doc
		if filter.OwnerID != 0 && (doc.Owner == nil || doc.Owner.ID != filter.OwnerID) {
			continue
		}
		if filter.DepartmentID != 0 && doc.DepartmentID() != filter.DepartmentID {
			continue
		}
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
