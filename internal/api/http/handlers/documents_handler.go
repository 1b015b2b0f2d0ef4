package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/docdesk/internal/api/dto"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/service"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

// DocumentsHandler exposes /api/documents.
type DocumentsHandler struct {
	documents *service.DocumentService
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(documents *service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// List handles GET /api/documents.
func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	var query dto.DocumentListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(query); err != nil {
		return err
	}
	page, err := h.documents.List(c.UserContext(), user, query)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// All handles GET /api/documents/all.
func (h *DocumentsHandler) All(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	docs, err := h.documents.All(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

// Upload handles POST /api/documents with a multipart "file" field.
func (h *DocumentsHandler) Upload(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file field required", nil)
	}
	if header.Size > domain.MaxUploadBytes {
		return apperrors.NewDomainError(apperrors.CodeValidation, "file exceeds 1 MiB", http.StatusRequestEntityTooLarge,
			map[string]any{"size": header.Size, "limit": domain.MaxUploadBytes})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, domain.MaxUploadBytes+1))
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	doc, err := h.documents.Upload(c.UserContext(), user, header.Filename, header.Header.Get("Content-Type"), content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(doc)
}

// Update handles PUT /api/documents/:id.
func (h *DocumentsHandler) Update(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.DocumentUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	doc, err := h.documents.Rename(c.UserContext(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// Delete handles DELETE /api/documents/:id.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.documents.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Download handles GET /api/documents/:id/download.
func (h *DocumentsHandler) Download(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	doc, content, err := h.documents.Download(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(content)))
	return c.Send(content)
}
