package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

func init() { Register(registerUsers) }

func registerUsers(r chi.Router, d deps.Deps) {
	r.Route("/api/users", func(r chi.Router) {
		// Brute-force protection on the credential endpoints.
		limited := r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             10,
			RefillPerIPPerMin: 30,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
		}))
		limited.Post("/registration", handlers.Registration(d))
		limited.Post("/login", handlers.Login(d))

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(d.Users, d.Logger))

			r.Post("/logout", handlers.Logout(d))
			r.Get("/", handlers.Profile(d))
			r.Patch("/", handlers.PatchProfile(d))
			r.Delete("/", handlers.DeleteAccount(d))
		})
	})
}
