package candidate

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/pkg/audit"
	"github.com/traqcheck/candidateverify/pkg/blob"
	"github.com/traqcheck/candidateverify/pkg/nlp"
)

// DetailsUpdate is a partial manual edit; nil fields stay untouched.
type DetailsUpdate struct {
	Name            *string  `json:"name"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	Company         *string  `json:"company"`
	Designation     *string  `json:"designation"`
	Skills          []string `json:"skills"`
	ExperienceYears *float64 `json:"experienceYears"`
}

// UseCase covers reads and manual corrections of candidates.
type UseCase interface {
	Get(ctx context.Context, id uuid.UUID) (Candidate, error)
	List(ctx context.Context, limit, offset int) ([]Candidate, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, upd DetailsUpdate, editor string) (Candidate, error)
	FetchResume(ctx context.Context, id uuid.UUID) (data []byte, filename, contentType string, err error)
	ListLogs(ctx context.Context, id uuid.UUID, limit, offset int) ([]audit.Entry, error)
}

type service struct {
	repo   Repository
	logs   audit.Repository
	blobs  blob.Storage
	logger *slog.Logger
}

func NewService(repo Repository, logs audit.Repository, blobs blob.Storage, logger *slog.Logger) UseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, logs: logs, blobs: blobs, logger: logger}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Candidate, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]Candidate, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateDetails applies a manual correction. Edited values count as reviewed
// by a human, so every confidence score is raised to 1.0 and the status is
// re-derived from the resulting fields.
func (s *service) UpdateDetails(ctx context.Context, id uuid.UUID, upd DetailsUpdate, editor string) (Candidate, error) {
	cand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Candidate{}, err
	}
	prev := cand.Status

	var edited []string
	setString := func(field string, dst *string, src *string, normalize func(string) string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if normalize != nil {
			v = normalize(v)
		}
		if v != *dst {
			*dst = v
			edited = append(edited, field)
		}
	}
	setString("name", &cand.Name, upd.Name, nil)
	setString("email", &cand.Email, upd.Email, NormalizeEmail)
	setString("phone", &cand.Phone, upd.Phone, nil)
	setString("company", &cand.Company, upd.Company, nil)
	setString("designation", &cand.Designation, upd.Designation, nil)
	if upd.Skills != nil {
		cand.Skills = nlp.CanonicalSkills(upd.Skills)
		edited = append(edited, "skills")
	}
	if upd.ExperienceYears != nil {
		cand.ExperienceYears = *upd.ExperienceYears
		edited = append(edited, "experienceYears")
	}

	if cand.Confidence == nil {
		cand.Confidence = ConfidenceScores{}
	}
	for field := range cand.Confidence {
		cand.Confidence[field] = 1.0
	}
	for _, field := range []string{"name", "email", "phone"} {
		cand.Confidence[field] = 1.0
	}

	v := Validate(Extraction{
		Name:       cand.Name,
		Email:      cand.Email,
		Phone:      cand.Phone,
		Confidence: cand.Confidence,
	})
	if !cand.Status.CanTransitionTo(v.Status) {
		return Candidate{}, ErrBadTransition
	}
	cand.Status = v.Status

	if err := s.repo.Update(ctx, cand); err != nil {
		return Candidate{}, err
	}

	entry := audit.New(cand.ID, audit.ActionDetailsEdited, "api")
	entry.Input = map[string]any{"fields": edited, "editor": editor}
	entry.Output = map[string]any{"status": string(cand.Status)}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
	if prev != cand.Status {
		change := audit.New(cand.ID, audit.ActionStatusChanged, "api")
		change.Input = map[string]any{"from": string(prev), "editor": editor}
		change.Output = map[string]any{"to": string(cand.Status)}
		if err := s.logs.Create(ctx, change); err != nil {
			s.logger.Warn("audit write failed", "action", change.Action, "error", err)
		}
	}
	return cand, nil
}

func (s *service) FetchResume(ctx context.Context, id uuid.UUID) ([]byte, string, string, error) {
	cand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	if cand.ResumePath == "" {
		return nil, "", "", ErrNotFound
	}
	data, contentType, err := s.blobs.Get(ctx, cand.ResumePath)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, "", "", ErrNotFound
		}
		return nil, "", "", err
	}
	filename := cand.ResumeFilename
	if filename == "" {
		filename = cand.ID.String() + filepath.Ext(cand.ResumePath)
	}
	return data, filename, contentType, nil
}

func (s *service) ListLogs(ctx context.Context, id uuid.UUID, limit, offset int) ([]audit.Entry, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.logs.ListByCandidate(ctx, id, limit, offset)
}
