package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/traqcheck/candidateverify/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(
	app *fiber.App,
	auth *handlers.AuthHandler,
	health *handlers.HealthHandler,
	candidates *handlers.CandidateHandler,
	documents *handlers.DocumentHandler,
	public *handlers.PublicHandler,
	authMW fiber.Handler,
	adminMW fiber.Handler,
) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)

	// Candidate portal, reached through the e-mailed upload link. No auth:
	// the unguessable candidate UUID is the credential.
	pub := v1.Group("/public")
	pub.Get("/candidates/:id", public.GetCandidate)
	pub.Post("/candidates/:id/documents", public.SubmitDocuments)

	// Recruiter API
	cg := v1.Group("/candidates", authMW)
	cg.Post("/upload", candidates.Upload)
	cg.Get("/", candidates.List)
	cg.Get("/:id", candidates.Get)
	cg.Put("/:id", candidates.Update)
	cg.Get("/:id/logs", candidates.Logs)
	cg.Get("/:id/resume", candidates.DownloadResume)
	cg.Post("/:id/request-documents", candidates.RequestDocuments)

	dg := v1.Group("/documents", authMW)
	dg.Get("/:id/download", documents.Download)
	dg.Get("/:id/view", documents.View)
	dg.Post("/:id/review", adminMW, documents.Review)
}
