package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/api/http/presenter"
	"github.com/traqcheck/candidateverify/pkg/candidate"
	"github.com/traqcheck/candidateverify/pkg/document"
)

// formFields maps multipart field names on the public portal to document types.
var formFields = []struct {
	Field string
	Type  document.Type
}{
	{"pan_card", document.TypePAN},
	{"aadhaar_card", document.TypeAadhaar},
}

// PublicHandler serves the unauthenticated candidate portal reached through
// the e-mailed upload link.
type PublicHandler struct {
	candidates candidate.UseCase
	documents  document.UseCase
	// Limit uploaded file size read into memory (bytes)
	maxBytes int64
}

func NewPublicHandler(candidates candidate.UseCase, documents document.UseCase) *PublicHandler {
	return &PublicHandler{candidates: candidates, documents: documents, maxBytes: 10 << 20} // 10MB
}

// GetCandidate exposes only what the upload page needs: a greeting and the
// workflow state. No contact or resume data leaks through this route.
// @Summary Public candidate lookup
// @Tags    public
// @Produce json
// @Param   id path string true "candidate id (UUID)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /public/candidates/{id} [get]
func (h *PublicHandler) GetCandidate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "candidate not found")
	}
	cand, err := h.candidates.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "candidate not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to load candidate")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"id":               cand.ID.String(),
		"name":             cand.Name,
		"documentStatus":   cand.DocumentStatus,
		"documentDeadline": cand.DocumentDeadline,
	})
}

// SubmitDocuments accepts the PAN and Aadhaar files from the candidate.
// Both files must arrive in one request.
// @Summary Submit identity documents
// @Tags    public
// @Accept  multipart/form-data
// @Produce json
// @Param   id path string true "candidate id (UUID)"
// @Param   pan_card formData file true "PAN card (jpg, jpeg, png or pdf)"
// @Param   aadhaar_card formData file true "Aadhaar card (jpg, jpeg, png or pdf)"
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /public/candidates/{id}/documents [post]
func (h *PublicHandler) SubmitDocuments(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "candidate not found")
	}

	var uploads []document.Upload
	var missing []string
	for _, ff := range formFields {
		fh, err := c.FormFile(ff.Field)
		if err != nil || fh == nil {
			missing = append(missing, ff.Field)
			continue
		}
		file, err := fh.Open()
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
		}
		data, err := readAtMost(file, h.maxBytes)
		file.Close()
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		}
		uploads = append(uploads, document.Upload{
			Type:        ff.Type,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	if len(missing) > 0 {
		return presenter.Error(c, http.StatusBadRequest, "missing required files: "+strings.Join(missing, ", "))
	}

	result, err := h.documents.Submit(c.Context(), id, uploads)
	if err != nil {
		switch {
		case errors.Is(err, candidate.ErrNotFound):
			return presenter.Error(c, http.StatusNotFound, "candidate not found")
		case errors.Is(err, document.ErrAlreadySubmitted):
			return presenter.Error(c, http.StatusConflict, err.Error())
		case errors.Is(err, document.ErrUnsupportedFile),
			errors.Is(err, document.ErrFileTooLarge),
			errors.Is(err, document.ErrMissingFile):
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		default:
			return presenter.Error(c, http.StatusInternalServerError, "failed to store documents")
		}
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"documentStatus": result.Candidate.DocumentStatus,
		"documents":      result.Documents,
	})
}
