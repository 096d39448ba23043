// Package memory holds in-memory repository implementations used in tests
// and local development. They favor clarity over performance.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/pkg/candidate"
)

type CandidateRepository struct {
	mu         sync.RWMutex
	candidates map[uuid.UUID]candidate.Candidate
}

func NewCandidateRepository() *CandidateRepository {
	return &CandidateRepository{candidates: make(map[uuid.UUID]candidate.Candidate)}
}

func (r *CandidateRepository) Create(_ context.Context, c candidate.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
		for _, other := range r.candidates {
			if strings.ToLower(other.Email) == email {
				return candidate.ErrDuplicateEmail
			}
		}
	}
	r.candidates[c.ID] = cloneCandidate(c)
	return nil
}

func (r *CandidateRepository) Update(_ context.Context, c candidate.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[c.ID]; !ok {
		return candidate.ErrNotFound
	}
	if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
		for id, other := range r.candidates {
			if id != c.ID && strings.ToLower(other.Email) == email {
				return candidate.ErrDuplicateEmail
			}
		}
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	r.candidates[c.ID] = cloneCandidate(c)
	return nil
}

func (r *CandidateRepository) GetByID(_ context.Context, id uuid.UUID) (candidate.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.candidates[id]; ok {
		return cloneCandidate(c), nil
	}
	return candidate.Candidate{}, candidate.ErrNotFound
}

func (r *CandidateRepository) GetByEmail(_ context.Context, email string) (candidate.Candidate, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return candidate.Candidate{}, candidate.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.candidates {
		if strings.ToLower(c.Email) == email {
			return cloneCandidate(c), nil
		}
	}
	return candidate.Candidate{}, candidate.ErrNotFound
}

func (r *CandidateRepository) List(_ context.Context, limit, offset int) ([]candidate.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	all := make([]candidate.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		all = append(all, cloneCandidate(c))
	}
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func cloneCandidate(c candidate.Candidate) candidate.Candidate {
	out := c
	if c.Skills != nil {
		out.Skills = append([]string(nil), c.Skills...)
	}
	if c.Confidence != nil {
		out.Confidence = make(candidate.ConfidenceScores, len(c.Confidence))
		for k, v := range c.Confidence {
			out.Confidence[k] = v
		}
	}
	if c.DocumentDeadline != nil {
		t := *c.DocumentDeadline
		out.DocumentDeadline = &t
	}
	if c.DocumentsSubmittedAt != nil {
		t := *c.DocumentsSubmittedAt
		out.DocumentsSubmittedAt = &t
	}
	return out
}
