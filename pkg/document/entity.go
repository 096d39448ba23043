package document

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type is an identity document kind requested from candidates.
type Type string

const (
	TypePAN     Type = "PAN"
	TypeAadhaar Type = "AADHAAR"
)

// Required is the set every candidate must submit and get verified.
var Required = []Type{TypePAN, TypeAadhaar}

// VerificationStatus is the review state of a single uploaded document.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Common errors used by repository/use cases
var (
	ErrNotFound         = errors.New("document not found")
	ErrAlreadySubmitted = errors.New("documents already submitted")
	ErrUnsupportedFile  = errors.New("unsupported document format: only jpg, jpeg, png and pdf are allowed")
	ErrFileTooLarge     = errors.New("document file too large")
	ErrMissingFile      = errors.New("required document file is missing")
	ErrBadVerdict       = errors.New("verdict must be VERIFIED or REJECTED")
)

// Document is one uploaded identity document.
type Document struct {
	ID               uuid.UUID          `json:"id"`
	CandidateID      uuid.UUID          `json:"candidateId"`
	Type             Type               `json:"type"`
	Filename         string             `json:"filename"`
	OriginalFilename string             `json:"originalFilename,omitempty"`
	Path             string             `json:"-"`
	ContentType      string             `json:"contentType,omitempty"`
	SizeBytes        int64              `json:"sizeBytes"`
	Verification     VerificationStatus `json:"verification"`
	Note             string             `json:"note,omitempty"`
	UploadedAt       time.Time          `json:"uploadedAt"`
	ReviewedAt       *time.Time         `json:"reviewedAt,omitempty"`
}

// Repository abstracts persistence concerns from the domain layer.
type Repository interface {
	Create(ctx context.Context, d Document) error
	GetByID(ctx context.Context, id uuid.UUID) (Document, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Document, error)
	Update(ctx context.Context, d Document) error
}
