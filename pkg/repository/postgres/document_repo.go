package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/traqcheck/candidateverify/pkg/document"
)

// DocumentRepository implements document.Repository backed by PostgreSQL (pgx).
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) (*DocumentRepository, error) {
	r := &DocumentRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *DocumentRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	doc_type TEXT NOT NULL,
	filename TEXT NOT NULL,
	original_filename TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	size_bytes BIGINT NOT NULL DEFAULT 0,
	verification_status TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	uploaded_at TIMESTAMPTZ NOT NULL,
	reviewed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS documents_candidate_idx ON documents (candidate_id, uploaded_at DESC);
-- backfill for older schemas
ALTER TABLE documents ADD COLUMN IF NOT EXISTS note TEXT NOT NULL DEFAULT '';
`)
	return err
}

const documentColumns = `id, candidate_id, doc_type, filename, original_filename, path,
content_type, size_bytes, verification_status, note, uploaded_at, reviewed_at`

func (r *DocumentRepository) Create(ctx context.Context, d document.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`, d.ID, d.CandidateID, d.Type, d.Filename, d.OriginalFilename, d.Path,
		d.ContentType, d.SizeBytes, d.Verification, d.Note, d.UploadedAt, d.ReviewedAt)
	return err
}

func (r *DocumentRepository) Update(ctx context.Context, d document.Document) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE documents SET verification_status = $2, note = $3, reviewed_at = $4
WHERE id = $1
`, d.ID, d.Verification, d.Note, d.ReviewedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (document.Document, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+documentColumns+`
FROM documents WHERE id = $1
`, id)
	return scanDocument(row)
}

func (r *DocumentRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]document.Document, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+documentColumns+`
FROM documents WHERE candidate_id = $1
ORDER BY uploaded_at DESC
`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func scanDocument(row pgx.Row) (document.Document, error) {
	var d document.Document
	var uploaded time.Time
	err := row.Scan(&d.ID, &d.CandidateID, &d.Type, &d.Filename, &d.OriginalFilename, &d.Path,
		&d.ContentType, &d.SizeBytes, &d.Verification, &d.Note, &uploaded, &d.ReviewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, err
	}
	d.UploadedAt = uploaded.UTC()
	if d.ReviewedAt != nil {
		t := d.ReviewedAt.UTC()
		d.ReviewedAt = &t
	}
	return d, nil
}
