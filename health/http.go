package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// SnapshotFunc returns a point-in-time diagnostics payload.
type SnapshotFunc func() any

// StatusResponse is the JSON envelope for the diagnostics endpoint.
type StatusResponse struct {
	Timestamp string `json:"timestamp"`
	Providers any    `json:"providers"`
}

// StatusHandler returns an HTTP handler exposing the provider admission
// snapshot for an operations dashboard. Read-only.
func StatusHandler(snapshot SnapshotFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Providers: snapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// ReadinessHandler returns an HTTP handler that reports ready as long as at
// least one provider is admittable, and 503 otherwise.
func ReadinessHandler(available func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")

		if available() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNHEALTHY"))
	}
}
