package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/pkg/audit"
	"github.com/traqcheck/candidateverify/pkg/blob"
	"github.com/traqcheck/candidateverify/pkg/candidate"
	"github.com/traqcheck/candidateverify/pkg/events"
	"github.com/traqcheck/candidateverify/pkg/metrics"
)

const maxDocumentBytes = 10 << 20 // 10MB per file

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// Upload is one file coming in from the public portal.
type Upload struct {
	Type        Type
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitResult reports the stored documents and the updated candidate.
type SubmitResult struct {
	Candidate candidate.Candidate
	Documents []Document
}

// UseCase covers submission from the public portal and reviewer actions.
type UseCase interface {
	Submit(ctx context.Context, candidateID uuid.UUID, uploads []Upload) (SubmitResult, error)
	Review(ctx context.Context, documentID uuid.UUID, verdict VerificationStatus, note, reviewer string) (Document, error)
	Fetch(ctx context.Context, documentID uuid.UUID) (Document, []byte, string, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Document, error)
}

type service struct {
	repo       Repository
	candidates candidate.Repository
	logs       audit.Repository
	blobs      blob.Storage
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(
	repo Repository,
	candidates candidate.Repository,
	logs audit.Repository,
	blobs blob.Storage,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) UseCase {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:       repo,
		candidates: candidates,
		logs:       logs,
		blobs:      blobs,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}
}

// Submit stores the uploaded documents and moves the candidate to SUBMITTED.
// Every required document type must be present in one call; resubmission is
// only possible while the candidate is not yet SUBMITTED or VERIFIED.
func (s *service) Submit(ctx context.Context, candidateID uuid.UUID, uploads []Upload) (SubmitResult, error) {
	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !cand.DocumentStatus.CanTransitionTo(candidate.DocsSubmitted) {
		return SubmitResult{}, ErrAlreadySubmitted
	}

	byType := make(map[Type]Upload, len(uploads))
	for _, up := range uploads {
		ext := strings.ToLower(filepath.Ext(up.Filename))
		if !allowedExtensions[ext] {
			return SubmitResult{}, ErrUnsupportedFile
		}
		if int64(len(up.Data)) > maxDocumentBytes {
			return SubmitResult{}, ErrFileTooLarge
		}
		byType[up.Type] = up
	}
	for _, required := range Required {
		if _, ok := byType[required]; !ok {
			return SubmitResult{}, fmt.Errorf("%w: %s", ErrMissingFile, strings.ToLower(string(required)))
		}
	}

	now := time.Now().UTC()
	stamp := now.Format("20060102_150405")
	docs := make([]Document, 0, len(Required))
	names := make([]string, 0, len(Required))
	for _, required := range Required {
		up := byType[required]
		ext := strings.ToLower(filepath.Ext(up.Filename))
		stored := fmt.Sprintf("%s_%s_%s%s", candidateID, required, stamp, ext)
		key := "documents/" + stored

		contentType := up.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(ext)
		}
		if err := s.blobs.Put(ctx, key, contentType, up.Data); err != nil {
			return SubmitResult{}, fmt.Errorf("store document: %w", err)
		}
		doc := Document{
			ID:               uuid.New(),
			CandidateID:      candidateID,
			Type:             required,
			Filename:         stored,
			OriginalFilename: up.Filename,
			Path:             key,
			ContentType:      contentType,
			SizeBytes:        int64(len(up.Data)),
			Verification:     VerificationPending,
			UploadedAt:       now,
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return SubmitResult{}, err
		}
		docs = append(docs, doc)
		names = append(names, stored)
	}

	if err := cand.TransitionDocuments(candidate.DocsSubmitted); err != nil {
		return SubmitResult{}, err
	}
	cand.DocumentsSubmittedAt = &now
	cand.UpdatedAt = now
	if err := s.candidates.Update(ctx, cand); err != nil {
		return SubmitResult{}, err
	}

	entry := audit.New(candidateID, audit.ActionDocumentsSubmitted, "api")
	entry.Input = map[string]any{"files": names}
	entry.Output = map[string]any{"documentStatus": string(cand.DocumentStatus)}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
	if err := s.publisher.Publish(ctx, events.DocumentsSubmitted, candidateID); err != nil {
		s.logger.Warn("event publish failed", "event", events.DocumentsSubmitted, "error", err)
	}
	s.metrics.RecordDocumentsSubmitted()

	return SubmitResult{Candidate: cand, Documents: docs}, nil
}

// Review records a reviewer verdict and recomputes the candidate workflow:
// all required types verified moves the candidate to VERIFIED, a rejection
// re-opens REQUESTED so the candidate can resubmit.
func (s *service) Review(ctx context.Context, documentID uuid.UUID, verdict VerificationStatus, note, reviewer string) (Document, error) {
	if verdict != VerificationVerified && verdict != VerificationRejected {
		return Document{}, ErrBadVerdict
	}
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	now := time.Now().UTC()
	doc.Verification = verdict
	doc.Note = strings.TrimSpace(note)
	doc.ReviewedAt = &now
	if err := s.repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}

	cand, err := s.candidates.GetByID(ctx, doc.CandidateID)
	if err != nil {
		return Document{}, err
	}
	all, err := s.repo.ListByCandidate(ctx, doc.CandidateID)
	if err != nil {
		return Document{}, err
	}
	verified := make(map[Type]bool)
	for _, d := range all {
		if d.Verification == VerificationVerified {
			verified[d.Type] = true
		}
	}
	allVerified := true
	for _, required := range Required {
		if !verified[required] {
			allVerified = false
			break
		}
	}

	switch {
	case allVerified && cand.DocumentStatus.CanTransitionTo(candidate.DocsVerified):
		if err := cand.TransitionDocuments(candidate.DocsVerified); err != nil {
			return Document{}, err
		}
		if err := s.publisher.Publish(ctx, events.CandidateVerified, cand.ID); err != nil {
			s.logger.Warn("event publish failed", "event", events.CandidateVerified, "error", err)
		}
	case verdict == VerificationRejected && cand.DocumentStatus == candidate.DocsSubmitted:
		if err := cand.TransitionDocuments(candidate.DocsRequested); err != nil {
			return Document{}, err
		}
	}
	cand.UpdatedAt = now
	if err := s.candidates.Update(ctx, cand); err != nil {
		return Document{}, err
	}

	entry := audit.New(cand.ID, audit.ActionDocumentReviewed, "api")
	entry.Input = map[string]any{
		"documentId": documentID.String(),
		"type":       string(doc.Type),
		"verdict":    string(verdict),
		"note":       doc.Note,
		"reviewer":   reviewer,
	}
	entry.Output = map[string]any{"documentStatus": string(cand.DocumentStatus)}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
	s.metrics.RecordDocumentReviewed(string(verdict))

	return doc, nil
}

func (s *service) Fetch(ctx context.Context, documentID uuid.UUID) (Document, []byte, string, error) {
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, nil, "", err
	}
	data, contentType, err := s.blobs.Get(ctx, doc.Path)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return Document{}, nil, "", ErrNotFound
		}
		return Document{}, nil, "", err
	}
	if doc.ContentType != "" {
		contentType = doc.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return doc, data, contentType, nil
}

func (s *service) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Document, error) {
	return s.repo.ListByCandidate(ctx, candidateID)
}
