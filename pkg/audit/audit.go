package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the candidate audit trail.
const (
	ActionResumeParsed        = "RESUME_PARSED"
	ActionDocumentRequestSent = "DOCUMENT_REQUEST_SENT"
	ActionDocumentsSubmitted  = "DOCUMENTS_SUBMITTED"
	ActionDocumentReviewed    = "DOCUMENT_REVIEWED"
	ActionDetailsEdited       = "DETAILS_EDITED"
	ActionStatusChanged       = "STATUS_CHANGED"
)

// Entry is one recorded automated or reviewer action for a candidate.
type Entry struct {
	ID          uuid.UUID      `json:"id"`
	CandidateID uuid.UUID      `json:"candidateId"`
	Action      string         `json:"action"`
	Tool        string         `json:"tool"`
	Input       map[string]any `json:"input"`
	Output      map[string]any `json:"output"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Repository persists the audit trail.
type Repository interface {
	Create(ctx context.Context, e Entry) error
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit, offset int) ([]Entry, error)
}

// New fills in the identity fields of an entry.
func New(candidateID uuid.UUID, action, tool string) Entry {
	return Entry{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Action:      action,
		Tool:        tool,
		Input:       map[string]any{},
		Output:      map[string]any{},
		CreatedAt:   time.Now().UTC(),
	}
}
