package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/session"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// DocumentQuery selects one page of documents. Page is zero-based; zero
// filters match everything.
type DocumentQuery struct {
	Page         int
	Size         int
	OwnerID      int64
	DepartmentID int64
}

// ListDocuments fetches one page of documents.
func (c *Client) ListDocuments(ctx context.Context, query DocumentQuery) (domain.Page[domain.Document], error) {
	values := pageQuery(query.Page, query.Size)
	if query.OwnerID > 0 {
		values.Set("ownerId", strconv.FormatInt(query.OwnerID, 10))
	}
	if query.DepartmentID > 0 {
		values.Set("departmentId", strconv.FormatInt(query.DepartmentID, 10))
	}

	var page domain.Page[domain.Document]
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/documents", values), nil, &page); err != nil {
		return domain.Page[domain.Document]{}, err
	}
	c.remember(session.CollectionDocuments, page)
	return page, nil
}

// AllDocuments fetches every visible document.
func (c *Client) AllDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents/all", nil, &docs); err != nil {
		return nil, err
	}
	c.remember(session.CollectionAllDocuments, docs)
	return docs, nil
}

// UploadDocument sends r as a multipart upload. Files over 1 MiB are
// refused before anything is sent.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (*domain.Document, error) {
	content, err := io.ReadAll(io.LimitReader(r, domain.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(content) > domain.MaxUploadBytes {
		return nil, apperrors.NewValidationError("file exceeds 1 MiB", map[string]any{"filename": filename, "limit": domain.MaxUploadBytes})
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.gateway.NewRequest(ctx, http.MethodPost, "/api/documents", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var doc domain.Document
	if err := c.send(req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument renames a document.
func (c *Client) UpdateDocument(ctx context.Context, id int64, filename string) (*domain.Document, error) {
	req := dto.DocumentUpdateRequest{Filename: filename}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var doc domain.Document
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/documents/%d", id), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/documents/%d", id), nil, nil)
}

// DownloadDocument streams a document's content to w and returns the
// number of bytes written.
func (c *Client) DownloadDocument(ctx context.Context, id int64, w io.Writer) (int64, error) {
	req, err := c.gateway.NewRequest(ctx, http.MethodGet, fmt.Sprintf("/api/documents/%d/download", id), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.gateway.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download document %d: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}
