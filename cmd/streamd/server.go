package main

import (
	"encoding/json"
	"net/http"

	"github.com/weanime/streamgate/health"
	"github.com/weanime/streamgate/provider"
	"github.com/weanime/streamgate/resolve"
)

// newMux wires the HTTP surface around the resolver.
func newMux(r *resolve.Resolver) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/resolve", resolveHandler(r))
	mux.HandleFunc("GET /v1/providers", health.StatusHandler(func() any {
		return r.ProviderStatus()
	}))
	mux.HandleFunc("GET /healthz", health.LivenessHandler())
	mux.HandleFunc("GET /readyz", health.ReadinessHandler(func() bool {
		for _, st := range r.ProviderStatus() {
			if st.Available {
				return true
			}
		}
		// No provider has been exercised yet; the chain is still usable.
		return len(r.ProviderStatus()) == 0
	}))

	return mux
}

func resolveHandler(r *resolve.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var in provider.Request
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}

		result := r.Resolve(req.Context(), in)
		writeJSON(w, statusFor(result), result)
	}
}

func statusFor(result resolve.Result) int {
	if result.OK() {
		return http.StatusOK
	}
	switch result.Reason {
	case resolve.ReasonInvalidRequest:
		return http.StatusBadRequest
	case resolve.ReasonAllProvidersUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
