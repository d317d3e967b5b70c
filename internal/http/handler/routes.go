package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"conclusio/internal/config"
	"conclusio/internal/http/middleware"
	"conclusio/internal/service"
)

// Deps are the collaborators the HTTP routes are served from.
type Deps struct {
	DB          *sql.DB
	Session     config.SessionConfig
	Auth        service.AuthService
	Conclusions service.ConclusionService
	Pieces      service.PieceService
	Reference   service.ReferenceService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /api except /api/health requires a session.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/health", HealthCheck(d.DB))

	api.Use(middleware.Auth(d.Auth, d.Session.CookieName))

	api.Get("/auth/me", Me(d.Auth))
	api.Post("/auth/logout", Logout(d.Auth, d.Session))

	conclusionID := uuidParams("id")
	pieceID := uuidParams("id", "piece_id")

	api.Post("/conclusions", CreateConclusion(d.Conclusions))
	api.Get("/conclusions", ListConclusions(d.Conclusions))
	api.Get("/conclusions/:id", conclusionID, GetConclusion(d.Conclusions))
	api.Put("/conclusions/:id", conclusionID, UpdateConclusion(d.Conclusions))
	api.Delete("/conclusions/:id", conclusionID, DeleteConclusion(d.Conclusions))

	// The static reorder route must stay ahead of the :piece_id routes.
	api.Put("/conclusions/:id/pieces/reorder", conclusionID, ReorderPieces(d.Pieces))
	api.Post("/conclusions/:id/pieces", conclusionID, AttachPiece(d.Pieces))
	api.Get("/conclusions/:id/pieces", conclusionID, ListPieces(d.Pieces))
	api.Put("/conclusions/:id/pieces/:piece_id", pieceID, UpdatePiece(d.Pieces))
	api.Delete("/conclusions/:id/pieces/:piece_id", pieceID, DeletePiece(d.Pieces))
	api.Get("/pieces/:piece_id/download", uuidParams("piece_id"), DownloadPiece(d.Pieces))

	api.Get("/code-civil/search", SearchArticles(d.Reference))
	api.Get("/code-civil/articles", ListArticles(d.Reference))
	api.Get("/templates", ListTemplates(d.Reference))
	api.Get("/templates/:id", GetTemplate(d.Reference))
}
