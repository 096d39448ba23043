package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/api/http/presenter"
	"github.com/traqcheck/candidateverify/pkg/document"
)

type DocumentHandler struct {
	svc document.UseCase
}

func NewDocumentHandler(svc document.UseCase) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Download streams a submitted document as an attachment.
// @Summary Download document
// @Tags    documents
// @Produce application/octet-stream
// @Param   id path string true "document id (UUID)"
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	return h.serve(c, "attachment")
}

// View streams a submitted document inline for in-browser preview.
// @Summary View document
// @Tags    documents
// @Produce application/octet-stream
// @Param   id path string true "document id (UUID)"
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /documents/{id}/view [get]
func (h *DocumentHandler) View(c *fiber.Ctx) error {
	return h.serve(c, "inline")
}

func (h *DocumentHandler) serve(c *fiber.Ctx, disposition string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	doc, data, contentType, err := h.svc.Fetch(c.Context(), id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "document not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to load document")
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	return c.Send(data)
}

type reviewRequest struct {
	Verdict string `json:"verdict"`
	Note    string `json:"note"`
}

// Review records a reviewer verdict for a document. Verifying the last
// pending required document moves the candidate to VERIFIED; a rejection
// re-opens the upload link.
// @Summary Review document (admin)
// @Tags    documents
// @Accept  json
// @Produce json
// @Param   id path string true "document id (UUID)"
// @Param   input body reviewRequest true "verdict VERIFIED or REJECTED with an optional note"
// @Security BearerAuth
// @Success 200 {object} document.Document
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /documents/{id}/review [post]
func (h *DocumentHandler) Review(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	verdict := document.VerificationStatus(strings.ToUpper(strings.TrimSpace(req.Verdict)))
	reviewer, _ := c.Locals("userId").(string)
	doc, err := h.svc.Review(c.Context(), id, verdict, req.Note, reviewer)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrBadVerdict):
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, document.ErrNotFound):
			return presenter.Error(c, http.StatusNotFound, "document not found")
		default:
			return presenter.Error(c, http.StatusInternalServerError, "failed to review document")
		}
	}
	return presenter.JSON(c, http.StatusOK, doc)
}
