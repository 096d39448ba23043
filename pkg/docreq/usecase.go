package docreq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/pkg/audit"
	"github.com/traqcheck/candidateverify/pkg/candidate"
	"github.com/traqcheck/candidateverify/pkg/document"
	"github.com/traqcheck/candidateverify/pkg/events"
	"github.com/traqcheck/candidateverify/pkg/llm"
	"github.com/traqcheck/candidateverify/pkg/mail"
	"github.com/traqcheck/candidateverify/pkg/metrics"
)

// Common errors used by the request workflow
var (
	ErrNoEmail    = errors.New("candidate has no email on file")
	ErrSendFailed = errors.New("failed to send document request email")
)

// Result is returned to the recruiter after a request was sent.
type Result struct {
	Candidate  candidate.Candidate
	Subject    string
	UploadLink string
	Deadline   time.Time
}

// UseCase sends a document request e-mail and advances the workflow.
type UseCase interface {
	RequestDocuments(ctx context.Context, candidateID uuid.UUID) (Result, error)
}

type service struct {
	candidates   candidate.Repository
	logs         audit.Repository
	mailer       mail.Mailer
	llm          llm.ChatModel
	modelName    string
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	baseURL      string
	deadlineDays int
}

func NewService(
	candidates candidate.Repository,
	logs audit.Repository,
	mailer mail.Mailer,
	model llm.ChatModel,
	modelName string,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	baseURL string,
	deadlineDays int,
) UseCase {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if deadlineDays <= 0 {
		deadlineDays = 7
	}
	return &service{
		candidates:   candidates,
		logs:         logs,
		mailer:       mailer,
		llm:          model,
		modelName:    modelName,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		baseURL:      strings.TrimRight(baseURL, "/"),
		deadlineDays: deadlineDays,
	}
}

// RequestDocuments e-mails the candidate a personalized request with the
// public upload link and a deadline, then moves the workflow to REQUESTED.
// Repeating the call while still REQUESTED sends a reminder.
func (s *service) RequestDocuments(ctx context.Context, candidateID uuid.UUID) (Result, error) {
	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return Result{}, err
	}
	if cand.Email == "" {
		return Result{}, ErrNoEmail
	}
	if !cand.DocumentStatus.CanTransitionTo(candidate.DocsRequested) {
		return Result{}, candidate.ErrBadTransition
	}

	link := fmt.Sprintf("%s/upload/%s", s.baseURL, cand.ID)
	deadline := time.Now().UTC().AddDate(0, 0, s.deadlineDays)
	subject, body := s.composeEmail(ctx, cand, link, deadline)

	if err := s.mailer.Send(ctx, mail.Message{To: cand.Email, Subject: subject, Body: body}); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if err := cand.TransitionDocuments(candidate.DocsRequested); err != nil {
		return Result{}, err
	}
	cand.UploadLink = link
	cand.DocumentDeadline = &deadline
	cand.UpdatedAt = time.Now().UTC()
	if err := s.candidates.Update(ctx, cand); err != nil {
		return Result{}, err
	}

	entry := audit.New(cand.ID, audit.ActionDocumentRequestSent, "mail:smtp")
	entry.Input = map[string]any{
		"to":         cand.Email,
		"uploadLink": link,
		"deadline":   deadline.Format(time.RFC3339),
	}
	entry.Output = map[string]any{"subject": subject}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
	if err := s.publisher.Publish(ctx, events.DocumentsRequested, cand.ID); err != nil {
		s.logger.Warn("event publish failed", "event", events.DocumentsRequested, "error", err)
	}
	s.metrics.RecordDocumentRequestSent()

	return Result{Candidate: cand, Subject: subject, UploadLink: link, Deadline: deadline}, nil
}

// composeEmail asks the model to write the request. Any model problem falls
// back to the built-in template: a down LLM must never block the workflow.
func (s *service) composeEmail(ctx context.Context, cand candidate.Candidate, link string, deadline time.Time) (string, string) {
	subject, body := fallbackEmail(cand, link, deadline)
	if s.llm == nil {
		return subject, body
	}

	raw, err := s.llm.Ask(ctx, composeSystemPrompt, buildComposePrompt(cand, link, deadline))
	if err != nil {
		s.metrics.RecordLLMRequest("error")
		s.logger.Warn("email composition failed, using template", "error", err)
		return subject, body
	}
	s.metrics.RecordLLMRequest("ok")

	raw = llm.CleanJSON(raw)
	var out struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		if i := strings.Index(raw, "{"); i >= 0 {
			if j := strings.LastIndex(raw, "}"); j > i {
				_ = json.Unmarshal([]byte(raw[i:j+1]), &out)
			}
		}
	}
	if strings.TrimSpace(out.Subject) == "" || strings.TrimSpace(out.Body) == "" {
		return subject, body
	}
	subject, body = strings.TrimSpace(out.Subject), strings.TrimSpace(out.Body)
	if !strings.Contains(body, link) {
		body += "\n\nUpload your documents here: " + link
	}
	return subject, body
}

const composeSystemPrompt = "You write short professional e-mails for a background verification service. " +
	"Return STRICTLY one JSON object {\"subject\": string, \"body\": string} without markdown or code fences. " +
	"The body is plain text, friendly and concise."

func buildComposePrompt(cand candidate.Candidate, link string, deadline time.Time) string {
	var sb strings.Builder
	sb.WriteString("Write an e-mail asking a candidate to submit identity documents for background verification.\n\n")
	fmt.Fprintf(&sb, "Candidate name: %s\n", displayName(cand))
	if cand.Designation != "" {
		fmt.Fprintf(&sb, "Designation: %s\n", cand.Designation)
	}
	sb.WriteString("Documents needed:\n")
	for _, t := range document.Required {
		fmt.Fprintf(&sb, "- %s\n", documentLabel(t))
	}
	fmt.Fprintf(&sb, "Upload link (must appear in the body exactly as given): %s\n", link)
	fmt.Fprintf(&sb, "Deadline: %s\n\n", deadline.Format("Monday, 02 January 2006"))
	sb.WriteString("Rules:\n- Address the candidate by name\n- Keep it under 150 words\n- Plain text only, no placeholders left in\n")
	return sb.String()
}

func fallbackEmail(cand candidate.Candidate, link string, deadline time.Time) (string, string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", displayName(cand))
	sb.WriteString("As part of your background verification we need the following documents:\n")
	for _, t := range document.Required {
		fmt.Fprintf(&sb, "  - %s\n", documentLabel(t))
	}
	fmt.Fprintf(&sb, "\nPlease upload them using your secure link: %s\n", link)
	fmt.Fprintf(&sb, "Kindly complete this before %s.\n\n", deadline.Format("Monday, 02 January 2006"))
	sb.WriteString("If you have any questions, just reply to this e-mail.\n\nBest regards,\nTraqCheck Verification Team\n")
	return "Action required: documents for your background verification", sb.String()
}

func displayName(cand candidate.Candidate) string {
	if strings.TrimSpace(cand.Name) != "" {
		return cand.Name
	}
	return "Candidate"
}

func documentLabel(t document.Type) string {
	switch t {
	case document.TypePAN:
		return "PAN card"
	case document.TypeAadhaar:
		return "Aadhaar card"
	default:
		return string(t)
	}
}
