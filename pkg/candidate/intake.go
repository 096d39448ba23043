package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traqcheck/candidateverify/pkg/audit"
	"github.com/traqcheck/candidateverify/pkg/blob"
	"github.com/traqcheck/candidateverify/pkg/events"
	"github.com/traqcheck/candidateverify/pkg/llm"
	"github.com/traqcheck/candidateverify/pkg/metrics"
	"github.com/traqcheck/candidateverify/pkg/nlp"
	"github.com/traqcheck/candidateverify/pkg/resume"
)

// Intake errors mapped to HTTP statuses at the handler boundary.
var (
	ErrEmptyResume      = errors.New("could not extract text from resume")
	ErrModelOutput      = errors.New("model returned malformed output")
	ErrModelUnavailable = errors.New("language model request failed")
)

const minTextChars = 30

// IntakeResult is what the uploader gets back.
type IntakeResult struct {
	Candidate Candidate
	Updated   bool
	Issues    []string
}

// IntakeUseCase runs the resume pipeline: extract text, ask the model for
// structured fields, validate, store the file and upsert the candidate.
type IntakeUseCase interface {
	IntakeResume(ctx context.Context, filename string, data []byte) (IntakeResult, error)
}

type intakeService struct {
	repo      Repository
	logs      audit.Repository
	blobs     blob.Storage
	llm       llm.ChatModel
	modelName string
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	maxChars  int
}

func NewIntakeService(
	repo Repository,
	logs audit.Repository,
	blobs blob.Storage,
	model llm.ChatModel,
	modelName string,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) IntakeUseCase {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &intakeService{
		repo:      repo,
		logs:      logs,
		blobs:     blobs,
		llm:       model,
		modelName: modelName,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		maxChars:  12000,
	}
}

func (s *intakeService) IntakeResume(ctx context.Context, filename string, data []byte) (IntakeResult, error) {
	text, err := resume.ExtractText(filename, data)
	if err != nil {
		return IntakeResult{}, err
	}
	if len(strings.TrimSpace(text)) < minTextChars {
		return IntakeResult{}, ErrEmptyResume
	}
	if len(text) > s.maxChars {
		text = text[:s.maxChars]
	}

	raw, err := s.llm.Ask(ctx, extractionSystemPrompt, buildExtractionPrompt(text))
	if err != nil {
		s.metrics.RecordLLMRequest("error")
		return IntakeResult{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	s.metrics.RecordLLMRequest("ok")

	ex, err := decodeExtraction(raw)
	if err != nil {
		return IntakeResult{}, err
	}
	v := Validate(ex)
	if v.Issues == nil {
		v.Issues = []string{}
	}

	now := time.Now().UTC()
	cand := Candidate{
		Name:            strings.TrimSpace(ex.Name),
		Email:           NormalizeEmail(ex.Email),
		Phone:           strings.TrimSpace(ex.Phone),
		Company:         strings.TrimSpace(ex.CurrentCompany),
		Designation:     strings.TrimSpace(ex.Designation),
		Skills:          nlp.CanonicalSkills(ex.Skills),
		ExperienceYears: ex.TotalExperienceYears,
		Status:          StatusParsed,
		DocumentStatus:  DocsNotRequested,
		Confidence:      ex.Confidence,
		ResumeFilename:  filename,
	}

	updated := false
	if cand.Email != "" {
		existing, err := s.repo.GetByEmail(ctx, cand.Email)
		switch {
		case err == nil:
			// Re-parse: keep identity and the document workflow state.
			updated = true
			cand.ID = existing.ID
			cand.CreatedAt = existing.CreatedAt
			cand.DocumentStatus = existing.DocumentStatus
			cand.UploadLink = existing.UploadLink
			cand.DocumentDeadline = existing.DocumentDeadline
			cand.DocumentsSubmittedAt = existing.DocumentsSubmittedAt
		case errors.Is(err, ErrNotFound):
		default:
			return IntakeResult{}, err
		}
	}
	if cand.ID == uuid.Nil {
		cand.ID = uuid.New()
		cand.CreatedAt = now
	}
	cand.UpdatedAt = now
	if cand.Status.CanTransitionTo(v.Status) {
		cand.Status = v.Status
	}

	key := "resumes/" + cand.ID.String() + strings.ToLower(filepath.Ext(filename))
	if err := s.blobs.Put(ctx, key, guessContentType(filename), data); err != nil {
		return IntakeResult{}, fmt.Errorf("store resume: %w", err)
	}
	cand.ResumePath = key

	if updated {
		err = s.repo.Update(ctx, cand)
	} else {
		err = s.repo.Create(ctx, cand)
	}
	if err != nil {
		return IntakeResult{}, err
	}

	entry := audit.New(cand.ID, audit.ActionResumeParsed, "llm:"+s.modelName)
	entry.Input = map[string]any{"filename": filename, "chars": len(text)}
	entry.Output = map[string]any{
		"status":     string(cand.Status),
		"issues":     v.Issues,
		"updated":    updated,
		"confidence": v.OverallConfidence,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
	if err := s.publisher.Publish(ctx, events.CandidateParsed, cand.ID); err != nil {
		s.logger.Warn("event publish failed", "event", events.CandidateParsed, "error", err)
	}
	s.metrics.RecordResumeParsed(string(cand.Status))

	return IntakeResult{Candidate: cand, Updated: updated, Issues: v.Issues}, nil
}

const extractionSystemPrompt = "You are a recruitment data extraction engine. " +
	"Return the result STRICTLY as one JSON object without markdown, code fences or commentary. " +
	"Never invent facts: unknown values are empty strings, empty arrays or 0, with a low confidence score."

func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(
		"Resume text between the markers:\n<<<\n%s\n>>>\n\n"+
			"Return STRICTLY one JSON object with this schema:\n"+
			"{\n"+
			"  \"name\": string,\n"+
			"  \"email\": string,\n"+
			"  \"phone\": string,\n"+
			"  \"current_company\": string,\n"+
			"  \"designation\": string,\n"+
			"  \"skills\": string[],\n"+
			"  \"total_experience_years\": number,\n"+
			"  \"confidence\": {field name: number between 0.0 and 1.0 for every field above}\n"+
			"}\n\n"+
			"Rules:\n"+
			"- No additional fields\n"+
			"- No markdown\n"+
			"- Empty list is [], never null\n"+
			"- phone includes the country code when present in the text\n",
		text,
	)
}

func decodeExtraction(raw string) (Extraction, error) {
	raw = llm.CleanJSON(raw)
	var ex Extraction
	if err := json.Unmarshal([]byte(raw), &ex); err != nil {
		// Model wrapped the object in prose; try the outermost braces.
		decoded := false
		if i := strings.Index(raw, "{"); i >= 0 {
			if j := strings.LastIndex(raw, "}"); j > i {
				decoded = json.Unmarshal([]byte(raw[i:j+1]), &ex) == nil
			}
		}
		if !decoded {
			return Extraction{}, ErrModelOutput
		}
	}
	if ex.Skills == nil {
		ex.Skills = []string{}
	}
	if ex.Confidence == nil {
		ex.Confidence = map[string]float64{}
	}
	return ex, nil
}

func guessContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
