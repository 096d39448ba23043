package events

import (
	"context"

	"github.com/google/uuid"
)

// Candidate lifecycle events published for downstream consumers (routing keys
// on the topic exchange).
const (
	CandidateParsed    = "candidate.parsed"
	DocumentsRequested = "candidate.documents.requested"
	DocumentsSubmitted = "candidate.documents.submitted"
	CandidateVerified  = "candidate.verified"
)

// Publisher emits candidate lifecycle events. Implementations must be safe
// for concurrent use by request handlers.
type Publisher interface {
	Publish(ctx context.Context, event string, candidateID uuid.UUID) error
	Close() error
}

// Noop is wired when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, event string, candidateID uuid.UUID) error { return nil }

func (Noop) Close() error { return nil }
