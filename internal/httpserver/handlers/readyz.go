package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool              `json:"ready"`
	Deps  map[string]string `json:"deps,omitempty"`
}

// Readyz reports readiness only when both backing stores answer.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := true
		probes := make(map[string]string, 2)

		if d.RedisClient != nil {
			if err := d.RedisClient.Ping(r.Context()).Err(); err != nil {
				ready = false
				probes["redis"] = err.Error()
			} else {
				probes["redis"] = "ok"
			}
		}

		if d.DB != nil {
			sqlDB, err := d.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(r.Context())
			}
			if err != nil {
				ready = false
				probes["database"] = err.Error()
			} else {
				probes["database"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready: ready,
			Deps:  probes,
		})
	}
}
