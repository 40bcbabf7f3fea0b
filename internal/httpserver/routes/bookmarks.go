package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.Auth(d.Users, d.Logger))

		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetBookmark(d))
			r.Patch("/", handlers.PatchBookmark(d))
			r.Delete("/", handlers.DeleteBookmark(d))
		})
	})
}
