package candidate

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks how far a candidate got through resume parsing and validation.
type Status string

const (
	StatusParsed      Status = "PARSED"
	StatusValidated   Status = "VALIDATED"
	StatusNeedsReview Status = "NEEDS_REVIEW"
	StatusManualEntry Status = "MANUAL_ENTRY_REQUIRED"
)

// DocumentStatus tracks the identity-document collection workflow.
type DocumentStatus string

const (
	DocsNotRequested DocumentStatus = "NOT_REQUESTED"
	DocsRequested    DocumentStatus = "REQUESTED"
	DocsSubmitted    DocumentStatus = "SUBMITTED"
	DocsVerified     DocumentStatus = "VERIFIED"
)

// ConfidenceScores maps extracted field names to model confidence in [0,1].
type ConfidenceScores map[string]float64

// Candidate is the central domain entity.
type Candidate struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	Company         string           `json:"company,omitempty"`
	Designation     string           `json:"designation,omitempty"`
	Skills          []string         `json:"skills"`
	ExperienceYears float64          `json:"experienceYears"`
	Status          Status           `json:"status"`
	DocumentStatus  DocumentStatus   `json:"documentStatus"`
	Confidence      ConfidenceScores `json:"confidence"`

	ResumePath     string `json:"-"`
	ResumeFilename string `json:"resumeFilename,omitempty"`

	UploadLink           string     `json:"uploadLink,omitempty"`
	DocumentDeadline     *time.Time `json:"documentDeadline,omitempty"`
	DocumentsSubmittedAt *time.Time `json:"documentsSubmittedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
