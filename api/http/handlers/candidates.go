package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/api/http/presenter"
	"github.com/traqcheck/candidateverify/pkg/audit"
	"github.com/traqcheck/candidateverify/pkg/candidate"
	"github.com/traqcheck/candidateverify/pkg/docreq"
	"github.com/traqcheck/candidateverify/pkg/document"
	"github.com/traqcheck/candidateverify/pkg/resume"
)

type CandidateHandler struct {
	intake    candidate.IntakeUseCase
	svc       candidate.UseCase
	requests  docreq.UseCase
	documents document.UseCase
	// Limit uploaded file size read into memory (bytes)
	maxBytes int64
}

func NewCandidateHandler(intake candidate.IntakeUseCase, svc candidate.UseCase, requests docreq.UseCase, documents document.UseCase) *CandidateHandler {
	return &CandidateHandler{intake: intake, svc: svc, requests: requests, documents: documents, maxBytes: 15 << 20} // 15MB
}

// documentView decorates a document with its recruiter download/view routes.
type documentView struct {
	document.Document
	DownloadURL string `json:"downloadUrl"`
	ViewURL     string `json:"viewUrl"`
}

func newDocumentView(d document.Document) documentView {
	base := "/api/v1/documents/" + d.ID.String()
	return documentView{Document: d, DownloadURL: base + "/download", ViewURL: base + "/view"}
}

// Upload runs the resume pipeline: extract text, parse with the LLM,
// validate and store the candidate.
// @Summary Upload a resume
// @Description Accepts a PDF, DOCX or TXT resume, extracts structured candidate fields with an LLM and stores the candidate. Re-uploading for a known e-mail updates the existing candidate.
// @Tags    candidates
// @Accept  multipart/form-data
// @Produce json
// @Param   resume formData file true "Resume file (PDF, DOCX or TXT)"
// @Security BearerAuth
// @Success 201 {object} map[string]any "new candidate"
// @Success 200 {object} map[string]any "existing candidate updated"
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /candidates/upload [post]
func (h *CandidateHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("resume")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "resume file is required (pdf, docx or txt)")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".pdf", ".docx", ".txt":
	case ".doc":
		return presenter.Error(c, http.StatusBadRequest, resume.ErrLegacyDoc.Error())
	default:
		return presenter.Error(c, http.StatusBadRequest, resume.ErrUnsupportedFormat.Error())
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()
	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.intake.IntakeResume(c.Context(), fh.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrUnsupportedFormat), errors.Is(err, resume.ErrLegacyDoc):
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, candidate.ErrEmptyResume):
			return presenter.Error(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, candidate.ErrModelOutput), errors.Is(err, candidate.ErrModelUnavailable):
			return presenter.Error(c, http.StatusBadGateway, err.Error())
		case errors.Is(err, candidate.ErrDuplicateEmail):
			return presenter.Error(c, http.StatusConflict, err.Error())
		default:
			return presenter.Error(c, http.StatusInternalServerError, fmt.Sprintf("failed to process resume: %v", err))
		}
	}
	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}
	return presenter.JSON(c, status, fiber.Map{
		"candidate": result.Candidate,
		"updated":   result.Updated,
		"issues":    result.Issues,
	})
}

// List returns candidates, newest first.
// @Summary List candidates
// @Tags    candidates
// @Produce json
// @Param   limit query int false "page size (max 200)"
// @Param   offset query int false "page offset"
// @Security BearerAuth
// @Success 200 {array} candidate.Candidate
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /candidates [get]
func (h *CandidateHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 50)
	items, err := h.svc.List(c.Context(), limit, offset)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list candidates")
	}
	if items == nil {
		items = []candidate.Candidate{}
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Get returns a single candidate together with its submitted documents.
// @Summary Get candidate
// @Tags    candidates
// @Produce json
// @Param   id path string true "candidate id (UUID)"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /candidates/{id} [get]
func (h *CandidateHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	cand, err := h.svc.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "candidate not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to load candidate")
	}
	docs, err := h.documents.ListByCandidate(c.Context(), id)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to load documents")
	}
	views := make([]documentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, newDocumentView(d))
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"candidate": cand,
		"documents": views,
	})
}

// Update applies a manual correction to candidate fields.
// @Summary Edit candidate details
// @Description Manually corrects extracted fields. Edited values count as human-verified, so the validation status is recomputed with full confidence.
// @Tags    candidates
// @Accept  json
// @Produce json
// @Param   id path string true "candidate id (UUID)"
// @Param   input body candidate.DetailsUpdate true "fields to update; omitted fields stay untouched"
// @Security BearerAuth
// @Success 200 {object} candidate.Candidate
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /candidates/{id} [put]
func (h *CandidateHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	var upd candidate.DetailsUpdate
	if err := c.BodyParser(&upd); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	editor, _ := c.Locals("userId").(string)
	cand, err := h.svc.UpdateDetails(c.Context(), id, upd, editor)
	if err != nil {
		switch {
		case errors.Is(err, candidate.ErrNotFound):
			return presenter.Error(c, http.StatusNotFound, "candidate not found")
		case errors.Is(err, candidate.ErrBadTransition):
			return presenter.Error(c, http.StatusConflict, err.Error())
		case errors.Is(err, candidate.ErrDuplicateEmail):
			return presenter.Error(c, http.StatusConflict, err.Error())
		default:
			return presenter.Error(c, http.StatusInternalServerError, "failed to update candidate")
		}
	}
	return presenter.JSON(c, http.StatusOK, cand)
}

// Logs returns the audit trail of automated and reviewer actions.
// @Summary Candidate audit trail
// @Tags    candidates
// @Produce json
// @Param   id path string true "candidate id (UUID)"
// @Param   limit query int false "page size (max 200)"
// @Param   offset query int false "page offset"
// @Security BearerAuth
// @Success 200 {array} audit.Entry
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /candidates/{id}/logs [get]
func (h *CandidateHandler) Logs(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	limit, offset := parseLimitOffset(c, 50)
	entries, err := h.svc.ListLogs(c.Context(), id, limit, offset)
	if err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "candidate not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to load logs")
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return presenter.JSON(c, http.StatusOK, entries)
}

// RequestDocuments e-mails the candidate a document request with the public
// upload link and moves the workflow to REQUESTED.
// @Summary Request identity documents
// @Description Sends the candidate an LLM-composed e-mail with a secure upload link and a deadline. Calling again while still REQUESTED sends a reminder.
// @Tags    candidates
// @Produce json
// @Param   id path string true "candidate id (UUID)"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /candidates/{id}/request-documents [post]
func (h *CandidateHandler) RequestDocuments(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	result, err := h.requests.RequestDocuments(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, candidate.ErrNotFound):
			return presenter.Error(c, http.StatusNotFound, "candidate not found")
		case errors.Is(err, docreq.ErrNoEmail):
			return presenter.Error(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, candidate.ErrBadTransition):
			return presenter.Error(c, http.StatusConflict, "documents were already submitted or verified")
		case errors.Is(err, docreq.ErrSendFailed):
			return presenter.Error(c, http.StatusBadGateway, err.Error())
		default:
			return presenter.Error(c, http.StatusInternalServerError, "failed to request documents")
		}
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"candidate":  result.Candidate,
		"subject":    result.Subject,
		"uploadLink": result.UploadLink,
		"deadline":   result.Deadline,
	})
}

// DownloadResume streams the originally uploaded resume file.
// @Summary Download resume file
// @Tags    candidates
// @Produce application/octet-stream
// @Param   id path string true "candidate id (UUID)"
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /candidates/{id}/resume [get]
func (h *CandidateHandler) DownloadResume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	data, filename, contentType, err := h.svc.FetchResume(c.Context(), id)
	if err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "resume not found")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to load resume")
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
