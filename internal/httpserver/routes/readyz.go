package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
)

func init() { Register(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
}
