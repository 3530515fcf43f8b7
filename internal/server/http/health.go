package http

import (
	"encoding/json"
	"net/http"

	"github.com/1anshu-stack/backend/internal/server/health"
)

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

// HealthHandler serves readiness: 200 when every check passes, 503 otherwise.
func HealthHandler(c *health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks, ok := c.Run(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(healthResponse{
				Status:  "unhealthy",
				Checks:  checks,
				Message: "one or more checks failed",
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Checks: checks})
	}
}
