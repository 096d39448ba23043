package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traqcheck/candidateverify/pkg/candidate"
)

func newCandidate(email string, createdAt time.Time) candidate.Candidate {
	return candidate.Candidate{
		ID:        uuid.New(),
		Name:      "Candidate " + email,
		Email:     email,
		Status:    candidate.StatusParsed,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestCandidateRepositoryDuplicateEmail(t *testing.T) {
	repo := NewCandidateRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newCandidate("priya@example.com", now)))

	err := repo.Create(ctx, newCandidate("PRIYA@example.com", now))
	require.ErrorIs(t, err, candidate.ErrDuplicateEmail, "matching is case-insensitive")

	// Candidates without an e-mail may repeat.
	require.NoError(t, repo.Create(ctx, newCandidate("", now)))
	require.NoError(t, repo.Create(ctx, newCandidate("", now)))
}

func TestCandidateRepositoryUpdate(t *testing.T) {
	repo := NewCandidateRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	one := newCandidate("one@example.com", now)
	two := newCandidate("two@example.com", now)
	require.NoError(t, repo.Create(ctx, one))
	require.NoError(t, repo.Create(ctx, two))

	// Updating a candidate onto its own e-mail is fine.
	one.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, one))

	// Stealing another candidate's e-mail is not.
	two.Email = "one@example.com"
	require.ErrorIs(t, repo.Update(ctx, two), candidate.ErrDuplicateEmail)

	missing := newCandidate("three@example.com", now)
	require.ErrorIs(t, repo.Update(ctx, missing), candidate.ErrNotFound)
}

func TestCandidateRepositoryGetByEmail(t *testing.T) {
	repo := NewCandidateRepository()
	ctx := context.Background()

	seeded := newCandidate("priya@example.com", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, seeded))

	got, err := repo.GetByEmail(ctx, "  PRIYA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "")
	require.ErrorIs(t, err, candidate.ErrNotFound, "empty e-mail never matches the empty-e-mail rows")
}

func TestCandidateRepositoryListOrdering(t *testing.T) {
	repo := NewCandidateRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	oldest := newCandidate("a@example.com", base.Add(-2*time.Hour))
	middle := newCandidate("b@example.com", base.Add(-time.Hour))
	newest := newCandidate("c@example.com", base)
	for _, c := range []candidate.Candidate{oldest, middle, newest} {
		require.NoError(t, repo.Create(ctx, c))
	}

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID, "newest first")
	assert.Equal(t, oldest.ID, all[2].ID)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, middle.ID, page[0].ID)

	empty, err := repo.List(ctx, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCandidateRepositoryClones(t *testing.T) {
	repo := NewCandidateRepository()
	ctx := context.Background()

	seeded := newCandidate("priya@example.com", time.Now().UTC())
	seeded.Skills = []string{"Go"}
	require.NoError(t, repo.Create(ctx, seeded))

	got, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	got.Skills[0] = "mutated"

	again, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, again.Skills, "reads must not share backing arrays")
}
