package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/traqcheck/candidateverify/pkg/audit"
)

// AuditRepository implements audit.Repository backed by PostgreSQL (pgx).
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) (*AuditRepository, error) {
	r := &AuditRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *AuditRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS agent_logs (
	id UUID PRIMARY KEY,
	candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	action TEXT NOT NULL,
	tool TEXT NOT NULL DEFAULT '',
	input JSONB NOT NULL DEFAULT '{}',
	output JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS agent_logs_candidate_idx ON agent_logs (candidate_id, created_at DESC);
`)
	return err
}

func (r *AuditRepository) Create(ctx context.Context, e audit.Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	inputJSON, err := json.Marshal(e.Input)
	if err != nil {
		return err
	}
	outputJSON, err := json.Marshal(e.Output)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO agent_logs (id, candidate_id, action, tool, input, output, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, e.ID, e.CandidateID, e.Action, e.Tool, inputJSON, outputJSON, e.CreatedAt)
	return err
}

func (r *AuditRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit, offset int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, candidate_id, action, tool, input, output, created_at
FROM agent_logs WHERE candidate_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, candidateID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var inputBytes, outputBytes []byte
		var created time.Time
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Action, &e.Tool, &inputBytes, &outputBytes, &created); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(inputBytes, &e.Input)
		_ = json.Unmarshal(outputBytes, &e.Output)
		e.CreatedAt = created.UTC()
		res = append(res, e)
	}
	return res, rows.Err()
}
