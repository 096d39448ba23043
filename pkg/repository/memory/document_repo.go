package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/pkg/document"
)

type DocumentRepository struct {
	mu        sync.RWMutex
	documents map[uuid.UUID]document.Document
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{documents: make(map[uuid.UUID]document.Document)}
}

func (r *DocumentRepository) Create(_ context.Context, d document.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	r.documents[d.ID] = cloneDocument(d)
	return nil
}

func (r *DocumentRepository) Update(_ context.Context, d document.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.documents[d.ID]
	if !ok {
		return document.ErrNotFound
	}
	stored.Verification = d.Verification
	stored.Note = d.Note
	stored.ReviewedAt = d.ReviewedAt
	r.documents[d.ID] = cloneDocument(stored)
	return nil
}

func (r *DocumentRepository) GetByID(_ context.Context, id uuid.UUID) (document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.documents[id]; ok {
		return cloneDocument(d), nil
	}
	return document.Document{}, document.ErrNotFound
}

func (r *DocumentRepository) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]document.Document, error) {
	r.mu.RLock()
	var res []document.Document
	for _, d := range r.documents {
		if d.CandidateID == candidateID {
			res = append(res, cloneDocument(d))
		}
	}
	r.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].UploadedAt.After(res[j].UploadedAt) })
	return res, nil
}

func cloneDocument(d document.Document) document.Document {
	out := d
	if d.ReviewedAt != nil {
		t := *d.ReviewedAt
		out.ReviewedAt = &t
	}
	return out
}
