package document_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/traqcheck/candidateverify/pkg/audit"
	"github.com/traqcheck/candidateverify/pkg/blob/local"
	"github.com/traqcheck/candidateverify/pkg/candidate"
	"github.com/traqcheck/candidateverify/pkg/document"
	"github.com/traqcheck/candidateverify/pkg/events"
	"github.com/traqcheck/candidateverify/pkg/repository/memory"
)

type capturePublisher struct {
	events []string
}

func (p *capturePublisher) Publish(_ context.Context, event string, _ uuid.UUID) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type SubmitSuite struct {
	suite.Suite

	candidates *memory.CandidateRepository
	documents  *memory.DocumentRepository
	logs       *memory.AuditRepository
	blobs      *local.Storage
	publisher  *capturePublisher
	svc        document.UseCase
}

func TestSubmitSuite(t *testing.T) {
	suite.Run(t, new(SubmitSuite))
}

func (s *SubmitSuite) SetupTest() {
	s.candidates = memory.NewCandidateRepository()
	s.documents = memory.NewDocumentRepository()
	s.logs = memory.NewAuditRepository()
	s.blobs = local.New(s.T().TempDir())
	s.publisher = &capturePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = document.NewService(s.documents, s.candidates, s.logs, s.blobs, s.publisher, nil, logger)
}

func (s *SubmitSuite) seed(docStatus candidate.DocumentStatus) candidate.Candidate {
	now := time.Now().UTC()
	c := candidate.Candidate{
		ID:             uuid.New(),
		Name:           "Priya Sharma",
		Email:          "priya@example.com",
		Phone:          "+919876543210",
		Status:         candidate.StatusValidated,
		DocumentStatus: docStatus,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Require().NoError(s.candidates.Create(context.Background(), c))
	return c
}

func bothUploads() []document.Upload {
	return []document.Upload{
		{Type: document.TypePAN, Filename: "pan.jpg", ContentType: "image/jpeg", Data: []byte("pan bytes")},
		{Type: document.TypeAadhaar, Filename: "aadhaar.pdf", ContentType: "application/pdf", Data: []byte("aadhaar bytes")},
	}
}

func (s *SubmitSuite) TestSubmit() {
	ctx := context.Background()
	cand := s.seed(candidate.DocsRequested)

	res, err := s.svc.Submit(ctx, cand.ID, bothUploads())
	s.Require().NoError(err)

	s.Equal(candidate.DocsSubmitted, res.Candidate.DocumentStatus)
	s.Require().NotNil(res.Candidate.DocumentsSubmittedAt)
	s.Require().Len(res.Documents, 2)

	pan := res.Documents[0]
	s.Equal(document.TypePAN, pan.Type)
	s.Equal(document.VerificationPending, pan.Verification)
	s.Equal("pan.jpg", pan.OriginalFilename)
	s.Equal(int64(len("pan bytes")), pan.SizeBytes)
	s.Regexp(regexp.MustCompile(fmt.Sprintf(`^%s_PAN_\d{8}_\d{6}\.jpg$`, cand.ID)), pan.Filename)
	s.Equal("documents/"+pan.Filename, pan.Path)

	data, _, err := s.blobs.Get(ctx, pan.Path)
	s.Require().NoError(err)
	s.Equal([]byte("pan bytes"), data)

	entries, err := s.logs.ListByCandidate(ctx, cand.ID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionDocumentsSubmitted, entries[0].Action)

	s.Equal([]string{events.DocumentsSubmitted}, s.publisher.events)
}

func (s *SubmitSuite) TestSubmitBeforeRequestAllowed() {
	// A candidate can submit through the link even if the status row was
	// never moved to REQUESTED (legacy rows, manual sends).
	cand := s.seed(candidate.DocsNotRequested)

	res, err := s.svc.Submit(context.Background(), cand.ID, bothUploads())
	s.Require().NoError(err)
	s.Equal(candidate.DocsSubmitted, res.Candidate.DocumentStatus)
}

func (s *SubmitSuite) TestResubmitBlocked() {
	cand := s.seed(candidate.DocsRequested)

	_, err := s.svc.Submit(context.Background(), cand.ID, bothUploads())
	s.Require().NoError(err)

	_, err = s.svc.Submit(context.Background(), cand.ID, bothUploads())
	s.ErrorIs(err, document.ErrAlreadySubmitted)
}

func (s *SubmitSuite) TestMissingRequiredFile() {
	cand := s.seed(candidate.DocsRequested)
	uploads := bothUploads()[:1] // PAN only

	_, err := s.svc.Submit(context.Background(), cand.ID, uploads)
	s.Require().ErrorIs(err, document.ErrMissingFile)
	s.Contains(err.Error(), "aadhaar")

	stored, err := s.candidates.GetByID(context.Background(), cand.ID)
	s.Require().NoError(err)
	s.Equal(candidate.DocsRequested, stored.DocumentStatus)
}

func (s *SubmitSuite) TestUnsupportedFile() {
	cand := s.seed(candidate.DocsRequested)
	uploads := bothUploads()
	uploads[0].Filename = "pan.gif"

	_, err := s.svc.Submit(context.Background(), cand.ID, uploads)
	s.ErrorIs(err, document.ErrUnsupportedFile)
}

func (s *SubmitSuite) TestFileTooLarge() {
	cand := s.seed(candidate.DocsRequested)
	uploads := bothUploads()
	uploads[1].Data = make([]byte, 10<<20+1)

	_, err := s.svc.Submit(context.Background(), cand.ID, uploads)
	s.ErrorIs(err, document.ErrFileTooLarge)
}

func (s *SubmitSuite) TestUnknownCandidate() {
	_, err := s.svc.Submit(context.Background(), uuid.New(), bothUploads())
	s.ErrorIs(err, candidate.ErrNotFound)
}

func (s *SubmitSuite) submitBoth(cand candidate.Candidate) []document.Document {
	res, err := s.svc.Submit(context.Background(), cand.ID, bothUploads())
	s.Require().NoError(err)
	return res.Documents
}

func (s *SubmitSuite) TestReviewVerifiesCandidate() {
	ctx := context.Background()
	cand := s.seed(candidate.DocsRequested)
	docs := s.submitBoth(cand)

	// One verified document is not enough.
	got, err := s.svc.Review(ctx, docs[0].ID, document.VerificationVerified, "", "admin@example.com")
	s.Require().NoError(err)
	s.Equal(document.VerificationVerified, got.Verification)
	s.Require().NotNil(got.ReviewedAt)

	stored, err := s.candidates.GetByID(ctx, cand.ID)
	s.Require().NoError(err)
	s.Equal(candidate.DocsSubmitted, stored.DocumentStatus)

	// The second one completes the verification.
	_, err = s.svc.Review(ctx, docs[1].ID, document.VerificationVerified, "all checks passed", "admin@example.com")
	s.Require().NoError(err)

	stored, err = s.candidates.GetByID(ctx, cand.ID)
	s.Require().NoError(err)
	s.Equal(candidate.DocsVerified, stored.DocumentStatus)

	s.Contains(s.publisher.events, events.CandidateVerified)
}

func (s *SubmitSuite) TestReviewRejectionReopensRequest() {
	ctx := context.Background()
	cand := s.seed(candidate.DocsRequested)
	docs := s.submitBoth(cand)

	got, err := s.svc.Review(ctx, docs[0].ID, document.VerificationRejected, "photo is unreadable", "admin@example.com")
	s.Require().NoError(err)
	s.Equal(document.VerificationRejected, got.Verification)
	s.Equal("photo is unreadable", got.Note)

	stored, err := s.candidates.GetByID(ctx, cand.ID)
	s.Require().NoError(err)
	s.Equal(candidate.DocsRequested, stored.DocumentStatus, "rejection re-opens the request for resubmission")
}

func (s *SubmitSuite) TestReviewBadVerdict() {
	cand := s.seed(candidate.DocsRequested)
	docs := s.submitBoth(cand)

	_, err := s.svc.Review(context.Background(), docs[0].ID, document.VerificationStatus("MAYBE"), "", "admin@example.com")
	s.ErrorIs(err, document.ErrBadVerdict)

	// PENDING is a state, not a verdict.
	_, err = s.svc.Review(context.Background(), docs[0].ID, document.VerificationPending, "", "admin@example.com")
	s.ErrorIs(err, document.ErrBadVerdict)
}

func (s *SubmitSuite) TestReviewUnknownDocument() {
	_, err := s.svc.Review(context.Background(), uuid.New(), document.VerificationVerified, "", "admin@example.com")
	s.ErrorIs(err, document.ErrNotFound)
}

func (s *SubmitSuite) TestFetch() {
	ctx := context.Background()
	cand := s.seed(candidate.DocsRequested)
	docs := s.submitBoth(cand)

	doc, data, contentType, err := s.svc.Fetch(ctx, docs[0].ID)
	s.Require().NoError(err)
	s.Equal(docs[0].ID, doc.ID)
	s.Equal([]byte("pan bytes"), data)
	s.Equal("image/jpeg", contentType)

	_, _, _, err = s.svc.Fetch(ctx, uuid.New())
	s.ErrorIs(err, document.ErrNotFound)
}

func (s *SubmitSuite) TestListByCandidate() {
	cand := s.seed(candidate.DocsRequested)
	s.submitBoth(cand)

	docs, err := s.svc.ListByCandidate(context.Background(), cand.ID)
	s.Require().NoError(err)
	s.Len(docs, 2)
}
