package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/traqcheck/candidateverify/pkg/candidate"
)

// CandidateRepository implements candidate.Repository backed by PostgreSQL (pgx).
type CandidateRepository struct {
	pool *pgxpool.Pool
}

func NewCandidateRepository(pool *pgxpool.Pool) (*CandidateRepository, error) {
	r := &CandidateRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CandidateRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS candidates (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	designation TEXT NOT NULL DEFAULT '',
	skills JSONB NOT NULL DEFAULT '[]',
	experience_years REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	document_status TEXT NOT NULL,
	confidence JSONB NOT NULL DEFAULT '{}',
	resume_path TEXT NOT NULL DEFAULT '',
	resume_filename TEXT NOT NULL DEFAULT '',
	upload_link TEXT NOT NULL DEFAULT '',
	document_deadline TIMESTAMPTZ,
	documents_submitted_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
-- one candidate row per e-mail; rows without an e-mail may repeat
CREATE UNIQUE INDEX IF NOT EXISTS candidates_email_key ON candidates (lower(email)) WHERE email <> '';
-- backfill for older schemas
ALTER TABLE candidates ADD COLUMN IF NOT EXISTS upload_link TEXT NOT NULL DEFAULT '';
ALTER TABLE candidates ADD COLUMN IF NOT EXISTS document_deadline TIMESTAMPTZ;
ALTER TABLE candidates ADD COLUMN IF NOT EXISTS documents_submitted_at TIMESTAMPTZ;
`)
	return err
}

const candidateColumns = `id, name, email, phone, company, designation, skills, experience_years,
status, document_status, confidence, resume_path, resume_filename, upload_link,
document_deadline, documents_submitted_at, created_at, updated_at`

func (r *CandidateRepository) Create(ctx context.Context, c candidate.Candidate) error {
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
	skillsJSON, err := json.Marshal(c.Skills)
	if err != nil {
		return err
	}
	confidenceJSON, err := json.Marshal(c.Confidence)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO candidates (`+candidateColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`, c.ID, c.Name, strings.ToLower(c.Email), c.Phone, c.Company, c.Designation, skillsJSON, c.ExperienceYears,
		c.Status, c.DocumentStatus, confidenceJSON, c.ResumePath, c.ResumeFilename, c.UploadLink,
		c.DocumentDeadline, c.DocumentsSubmittedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return candidate.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *CandidateRepository) Update(ctx context.Context, c candidate.Candidate) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	skillsJSON, err := json.Marshal(c.Skills)
	if err != nil {
		return err
	}
	confidenceJSON, err := json.Marshal(c.Confidence)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE candidates SET
	name = $2, email = $3, phone = $4, company = $5, designation = $6,
	skills = $7, experience_years = $8, status = $9, document_status = $10,
	confidence = $11, resume_path = $12, resume_filename = $13, upload_link = $14,
	document_deadline = $15, documents_submitted_at = $16, updated_at = $17
WHERE id = $1
`, c.ID, c.Name, strings.ToLower(c.Email), c.Phone, c.Company, c.Designation,
		skillsJSON, c.ExperienceYears, c.Status, c.DocumentStatus,
		confidenceJSON, c.ResumePath, c.ResumeFilename, c.UploadLink,
		c.DocumentDeadline, c.DocumentsSubmittedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return candidate.ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return candidate.ErrNotFound
	}
	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (candidate.Candidate, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+candidateColumns+`
FROM candidates WHERE id = $1
`, id)
	return scanCandidate(row)
}

func (r *CandidateRepository) GetByEmail(ctx context.Context, email string) (candidate.Candidate, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return candidate.Candidate{}, candidate.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
SELECT `+candidateColumns+`
FROM candidates WHERE lower(email) = $1
`, email)
	return scanCandidate(row)
}

func (r *CandidateRepository) List(ctx context.Context, limit, offset int) ([]candidate.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+candidateColumns+`
FROM candidates
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []candidate.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func scanCandidate(row pgx.Row) (candidate.Candidate, error) {
	var c candidate.Candidate
	var skillsBytes, confidenceBytes []byte
	var created, updated time.Time
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Designation,
		&skillsBytes, &c.ExperienceYears, &c.Status, &c.DocumentStatus, &confidenceBytes,
		&c.ResumePath, &c.ResumeFilename, &c.UploadLink,
		&c.DocumentDeadline, &c.DocumentsSubmittedAt, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return candidate.Candidate{}, candidate.ErrNotFound
		}
		return candidate.Candidate{}, err
	}
	_ = json.Unmarshal(skillsBytes, &c.Skills)
	_ = json.Unmarshal(confidenceBytes, &c.Confidence)
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.Confidence == nil {
		c.Confidence = candidate.ConfidenceScores{}
	}
	c.CreatedAt = created.UTC()
	c.UpdatedAt = updated.UTC()
	if c.DocumentDeadline != nil {
		t := c.DocumentDeadline.UTC()
		c.DocumentDeadline = &t
	}
	if c.DocumentsSubmittedAt != nil {
		t := c.DocumentsSubmittedAt.UTC()
		c.DocumentsSubmittedAt = &t
	}
	return c, nil
}
