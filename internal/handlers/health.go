// Package handlers provides shared HTTP handler functions for all Roost services.
// P21.3.001: Health Check Handlers
//
// Two endpoints are defined:
//
//	GET /healthz  — liveness probe. Always 200 if the process is running.
//	              Used by Hetzner/Cloudflare health checks and load balancers.
//
//	GET /ready    — readiness probe. Runs the caller's named checks.
//	              Returns 200 {"status":"ok"} when all checks pass.
//	              Returns 503 {"status":"degraded"} when any check fails.
//
// Mount these early so they are reachable before auth middleware.
// They should never require authentication.
//
// Usage in a service main:
//
//	import "github.com/yourflock/roost/layoutengine/internal/handlers"
//
//	mux.HandleFunc("GET /healthz", handlers.Liveness)
//	mux.HandleFunc("GET /ready",   handlers.Readiness(map[string]func(context.Context) error{
//		"contexts": func(context.Context) error { return mgr.TryLockAll() },
//	}))
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// healthResponse is the JSON body for both probes.
type healthResponse struct {
	Status string            `json:"status"`           // "ok" | "degraded"
	Checks map[string]string `json:"checks,omitempty"` // only for /ready
}

// Liveness is a GET /healthz handler.
// It always returns 200 {"status":"ok"} as long as the process is running.
// No dependency checks — this is purely a process-alive probe.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Readiness returns a GET /ready handler that runs every named check and
// reports degraded if any returns an error. A service with no external
// dependency (the layout engine has neither a database nor a cache of its
// own) passes a single check against its own internal state, e.g. a
// mutex-map try-lock sweep instead of a ping.
func Readiness(checks map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		degraded := false

		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = "error: " + err.Error()
				degraded = true
			} else {
				results[name] = "ok"
			}
		}

		status := "ok"
		code := http.StatusOK
		if degraded {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, healthResponse{
			Status: status,
			Checks: results,
		})
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
