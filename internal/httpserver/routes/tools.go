package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/mw"
)

func init() { Register("tools", registerTools) }

func registerTools(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMinute,
		MaxEntries:        10_000,
		TrustProxy:        d.TrustProxy,
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/tools", handlers.ListTools(d))
		r.Get("/categories", handlers.Categories(d))
		r.Get("/notifications", handlers.Notifications(d))
		r.Get("/tools/pending", handlers.PendingDelete(d))
		r.Get("/tools/{id}", handlers.GetTool(d))

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/tools", handlers.CreateTool(d))
			r.Post("/tools/undo", handlers.UndoDelete(d))
			r.Put("/tools/{id}", handlers.UpdateTool(d))
			r.Post("/tools/{id}/use", handlers.UseTool(d))
			r.Delete("/tools/{id}", handlers.DeleteTool(d))
		})
	})
}
