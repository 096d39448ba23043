package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	httpapi "github.com/traqcheck/candidateverify/api/http"
	"github.com/traqcheck/candidateverify/api/http/handlers"
	"github.com/traqcheck/candidateverify/pkg/auth"
	"github.com/traqcheck/candidateverify/pkg/blob/local"
	"github.com/traqcheck/candidateverify/pkg/candidate"
	"github.com/traqcheck/candidateverify/pkg/docreq"
	"github.com/traqcheck/candidateverify/pkg/document"
	"github.com/traqcheck/candidateverify/pkg/health"
	"github.com/traqcheck/candidateverify/pkg/mail"
	"github.com/traqcheck/candidateverify/pkg/repository/memory"
	"github.com/traqcheck/candidateverify/pkg/security/jwt"
)

const (
	testSecret  = "test-secret"
	testIssuer  = "candidateverify-test"
	testBaseURL = "http://localhost:3000"
)

const sampleResume = "Priya Sharma\n" +
	"Senior Software Engineer at Acme Corp\n" +
	"Email: priya.sharma@example.com\n" +
	"Phone: +91 98765 43210\n" +
	"Skills: Go, Postgres"

const extractionReply = `{
  "name": "Priya Sharma",
  "email": "priya.sharma@example.com",
  "phone": "+91 98765 43210",
  "current_company": "Acme Corp",
  "designation": "Senior Software Engineer",
  "skills": ["Go", "Postgres"],
  "total_experience_years": 6.5,
  "confidence": {"name": 0.98, "email": 0.96, "phone": 0.92, "skills": 0.95}
}`

type stubModel struct {
	reply string
	err   error
}

func (m *stubModel) Ask(context.Context, string, string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type captureMailer struct {
	sent []mail.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type APISuite struct {
	suite.Suite

	app        *fiber.App
	candidates *memory.CandidateRepository
	documents  *memory.DocumentRepository
	model      *stubModel
	mailer     *captureMailer

	adminToken     string
	recruiterToken string
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.candidates = memory.NewCandidateRepository()
	s.documents = memory.NewDocumentRepository()
	logs := memory.NewAuditRepository()
	users := memory.NewUserRepository()
	blobs := local.New(s.T().TempDir())
	s.model = &stubModel{reply: extractionReply}
	s.mailer = &captureMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := jwt.NewGenerator(testSecret, testIssuer, time.Hour)
	authUC := auth.NewAuthService(users, tokens, true)
	intakeUC := candidate.NewIntakeService(s.candidates, logs, blobs, s.model, "test-model", nil, nil, logger)
	candidateUC := candidate.NewService(s.candidates, logs, blobs, logger)
	documentUC := document.NewService(s.documents, s.candidates, logs, blobs, nil, nil, logger)
	docreqUC := docreq.NewService(s.candidates, logs, s.mailer, s.model, "test-model", nil, nil, logger, testBaseURL, 7)

	s.app = fiber.New(fiber.Config{BodyLimit: 32 << 20})
	httpapi.Register(
		s.app,
		handlers.NewAuthHandler(authUC),
		handlers.NewHealthHandler(health.NewService()),
		handlers.NewCandidateHandler(intakeUC, candidateUC, docreqUC, documentUC),
		handlers.NewDocumentHandler(documentUC),
		handlers.NewPublicHandler(candidateUC, documentUC),
		jwt.NewAuthMiddleware(testSecret, testIssuer),
		jwt.RequireAdmin(),
	)

	admin, err := authUC.Register(context.Background(), "admin@example.com", "s3cret")
	s.Require().NoError(err)
	s.Require().True(admin.User.IsAdmin)
	s.adminToken = admin.Token

	recruiter, err := authUC.Register(context.Background(), "recruiter@example.com", "s3cret")
	s.Require().NoError(err)
	s.recruiterToken = recruiter.Token
}

func (s *APISuite) do(method, path, token string, body io.Reader, contentType string) *http.Response {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) doJSON(method, path, token string, payload any) *http.Response {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)
	return s.do(method, path, token, bytes.NewReader(data), fiber.MIMEApplicationJSON)
}

// filePart is one multipart file field: name, filename and content.
type filePart struct {
	field, filename, content string
}

func (s *APISuite) doMultipart(path, token string, parts []filePart) *http.Response {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.filename)
		s.Require().NoError(err)
		_, err = fw.Write([]byte(p.content))
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())
	return s.do(http.MethodPost, path, token, &buf, w.FormDataContentType())
}

func (s *APISuite) readBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return data
}

func (s *APISuite) readMap(resp *http.Response) map[string]any {
	var m map[string]any
	s.Require().NoError(json.Unmarshal(s.readBody(resp), &m))
	return m
}

// uploadResume pushes a resume through the full pipeline and returns the
// created candidate id.
func (s *APISuite) uploadResume() uuid.UUID {
	resp := s.doMultipart("/api/v1/candidates/upload", s.recruiterToken, []filePart{
		{"resume", "priya.txt", sampleResume},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	body := s.readMap(resp)
	cand, ok := body["candidate"].(map[string]any)
	s.Require().True(ok)
	id, err := uuid.Parse(cand["id"].(string))
	s.Require().NoError(err)
	return id
}

func bothDocuments() []filePart {
	return []filePart{
		{"pan_card", "pan.jpg", "pan bytes"},
		{"aadhaar_card", "aadhaar.pdf", "aadhaar bytes"},
	}
}

func (s *APISuite) TestHealthAndReady() {
	resp := s.do(http.MethodGet, "/api/v1/health", "", nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/ready", "", nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestRegisterAndLogin() {
	resp := s.doJSON(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "new@example.com", "password": "s3cret",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	body := s.readMap(resp)
	s.NotEmpty(body["token"])
	s.Equal(false, body["isAdmin"], "admin bootstrap was already consumed")

	resp = s.doJSON(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "new@example.com", "password": "other",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp = s.doJSON(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "new@example.com", "password": "s3cret",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.doJSON(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "new@example.com", "password": "wrong",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestCandidateRoutesRequireAuth() {
	resp := s.do(http.MethodGet, "/api/v1/candidates", "", nil, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.doMultipart("/api/v1/candidates/upload", "", []filePart{{"resume", "priya.txt", sampleResume}})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestUploadAndList() {
	resp := s.doMultipart("/api/v1/candidates/upload", s.recruiterToken, []filePart{
		{"resume", "priya.txt", sampleResume},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	body := s.readMap(resp)
	s.Equal(false, body["updated"])
	s.Equal([]any{}, body["issues"])
	cand := body["candidate"].(map[string]any)
	s.Equal("VALIDATED", cand["status"])
	s.Equal("NOT_REQUESTED", cand["documentStatus"])
	s.Equal("priya.sharma@example.com", cand["email"])

	// Same e-mail again: the known candidate is updated, not duplicated.
	resp = s.doMultipart("/api/v1/candidates/upload", s.recruiterToken, []filePart{
		{"resume", "priya-v2.txt", sampleResume},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, s.readMap(resp)["updated"])

	resp = s.do(http.MethodGet, "/api/v1/candidates", s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list []map[string]any
	s.Require().NoError(json.Unmarshal(s.readBody(resp), &list))
	s.Len(list, 1)
}

func (s *APISuite) TestUploadRejectsBadFiles() {
	resp := s.doMultipart("/api/v1/candidates/upload", s.recruiterToken, []filePart{
		{"resume", "resume.exe", "MZ..."},
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.doMultipart("/api/v1/candidates/upload", s.recruiterToken, []filePart{
		{"resume", "resume.doc", "old word file"},
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	// Form field present but empty body: the text check rejects it later.
	resp = s.doMultipart("/api/v1/candidates/upload", s.recruiterToken, []filePart{
		{"resume", "empty.txt", "too short"},
	})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *APISuite) TestUploadModelDown() {
	s.model.err = errors.New("model offline")

	resp := s.doMultipart("/api/v1/candidates/upload", s.recruiterToken, []filePart{
		{"resume", "priya.txt", sampleResume},
	})
	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func (s *APISuite) TestGetAndUpdateCandidate() {
	id := s.uploadResume()

	resp := s.do(http.MethodGet, "/api/v1/candidates/"+id.String(), s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	got := s.readMap(resp)
	s.Equal([]any{}, got["documents"], "nothing submitted yet")
	cand := got["candidate"].(map[string]any)
	s.Equal("priya.sharma@example.com", cand["email"])

	resp = s.doJSON(http.MethodPut, "/api/v1/candidates/"+id.String(), s.recruiterToken, fiber.Map{
		"designation": "Staff Engineer",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := s.readMap(resp)
	s.Equal("Staff Engineer", body["designation"])

	resp = s.do(http.MethodGet, "/api/v1/candidates/"+uuid.NewString(), s.recruiterToken, nil, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestCandidateLogs() {
	id := s.uploadResume()

	resp := s.do(http.MethodGet, "/api/v1/candidates/"+id.String()+"/logs", s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var entries []map[string]any
	s.Require().NoError(json.Unmarshal(s.readBody(resp), &entries))
	s.Require().NotEmpty(entries)
	s.Equal("RESUME_PARSED", entries[0]["action"])
}

func (s *APISuite) TestResumeDownload() {
	id := s.uploadResume()

	resp := s.do(http.MethodGet, "/api/v1/candidates/"+id.String()+"/resume", s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get(fiber.HeaderContentDisposition), `attachment; filename="priya.txt"`)
	s.Equal(sampleResume, string(s.readBody(resp)))
}

func (s *APISuite) TestRequestDocumentsAndPublicLookup() {
	id := s.uploadResume()

	resp := s.do(http.MethodPost, "/api/v1/candidates/"+id.String()+"/request-documents", s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := s.readMap(resp)
	s.Equal(testBaseURL+"/upload/"+id.String(), body["uploadLink"])
	s.Require().Len(s.mailer.sent, 1)
	s.Equal("priya.sharma@example.com", s.mailer.sent[0].To)

	// The public page sees the workflow state but never contact details.
	resp = s.do(http.MethodGet, "/api/v1/public/candidates/"+id.String(), "", nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	raw := s.readBody(resp)
	var pub map[string]any
	s.Require().NoError(json.Unmarshal(raw, &pub))
	s.Equal("REQUESTED", pub["documentStatus"])
	s.Equal("Priya Sharma", pub["name"])
	s.NotContains(string(raw), "priya.sharma@example.com")
}

func (s *APISuite) TestRequestDocumentsMailerDown() {
	s.mailer.err = errors.New("smtp down")
	id := s.uploadResume()

	resp := s.do(http.MethodPost, "/api/v1/candidates/"+id.String()+"/request-documents", s.recruiterToken, nil, "")
	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func (s *APISuite) TestPublicLookupUnknown() {
	resp := s.do(http.MethodGet, "/api/v1/public/candidates/"+uuid.NewString(), "", nil, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/public/candidates/not-a-uuid", "", nil, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestPublicSubmitDocuments() {
	id := s.uploadResume()
	path := "/api/v1/public/candidates/" + id.String() + "/documents"

	resp := s.doMultipart(path, "", bothDocuments())
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	body := s.readMap(resp)
	s.Equal("SUBMITTED", body["documentStatus"])
	s.Len(body["documents"], 2)

	// Resubmission is blocked once SUBMITTED.
	resp = s.doMultipart(path, "", bothDocuments())
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *APISuite) TestPublicSubmitMissingFile() {
	id := s.uploadResume()
	path := "/api/v1/public/candidates/" + id.String() + "/documents"

	resp := s.doMultipart(path, "", bothDocuments()[:1])
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(s.readMap(resp)["message"], "aadhaar_card")
}

func (s *APISuite) TestReviewFlow() {
	ctx := context.Background()
	id := s.uploadResume()
	resp := s.doMultipart("/api/v1/public/candidates/"+id.String()+"/documents", "", bothDocuments())
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	docs, err := s.documents.ListByCandidate(ctx, id)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)

	// Review is the one admin-only route.
	resp = s.doJSON(http.MethodPost, "/api/v1/documents/"+docs[0].ID.String()+"/review", s.recruiterToken, fiber.Map{
		"verdict": "VERIFIED",
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.doJSON(http.MethodPost, "/api/v1/documents/"+docs[0].ID.String()+"/review", s.adminToken, fiber.Map{
		"verdict": "verified",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, "verdict is case-insensitive")

	resp = s.doJSON(http.MethodPost, "/api/v1/documents/"+docs[1].ID.String()+"/review", s.adminToken, fiber.Map{
		"verdict": "VERIFIED", "note": "all good",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	stored, err := s.candidates.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(candidate.DocsVerified, stored.DocumentStatus)

	resp = s.doJSON(http.MethodPost, "/api/v1/documents/"+docs[0].ID.String()+"/review", s.adminToken, fiber.Map{
		"verdict": "MAYBE",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.doJSON(http.MethodPost, "/api/v1/documents/"+uuid.NewString()+"/review", s.adminToken, fiber.Map{
		"verdict": "VERIFIED",
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestDocumentDownloadAndView() {
	id := s.uploadResume()
	resp := s.doMultipart("/api/v1/public/candidates/"+id.String()+"/documents", "", bothDocuments())
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	// The candidate endpoint hands out the routes the recruiter UI follows.
	resp = s.do(http.MethodGet, "/api/v1/candidates/"+id.String(), s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	docs := s.readMap(resp)["documents"].([]any)
	s.Require().Len(docs, 2)
	first := docs[0].(map[string]any)

	resp = s.do(http.MethodGet, first["downloadUrl"].(string), s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	resp = s.do(http.MethodGet, first["viewUrl"].(string), s.recruiterToken, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "inline")
}
