package mw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// Authenticator resolves a bearer token key to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*domain.User, error)
}

type ctxKey int

const userKey ctxKey = iota

// UserFrom returns the authenticated user stored by Auth.
func UserFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok
}

// Auth requires a valid "Authorization: Bearer <key>" header and puts the
// resolved user in the request context.
func Auth(users Authenticator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := bearerKey(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			u, err := users.Authenticate(r.Context(), key)
			if err != nil {
				if !errors.Is(err, domain.ErrNoToken) {
					log.Error("token lookup failed", logger.Error(err))
				}
				unauthorized(w, "Invalid token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

func bearerKey(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	scheme, key, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	return key, true
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
