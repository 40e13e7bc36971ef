package api

import "net/http"

// only restricts a handler to one method.
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	}
}

// exact rejects paths that only share the pattern's prefix.
func exact(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		h(w, r)
	}
}

func RegisterRoutes(mux *http.ServeMux, h *Handler) http.Handler {
	prefix := h.cfg.APIPrefix

	// Prediction APIs
	mux.HandleFunc(prefix+"/predict", only(http.MethodPost, h.Predict))
	mux.HandleFunc(prefix+"/schema", only(http.MethodGet, h.GetSchema))

	// Health APIs
	mux.HandleFunc("/", exact("/", only(http.MethodGet, h.GetInfo)))
	mux.HandleFunc("/health", only(http.MethodGet, h.GetHealth))
	if prefix != "" {
		mux.HandleFunc(prefix+"/health", only(http.MethodGet, h.GetHealth))
	}

	// Observability APIs
	mux.HandleFunc("/metrics", only(http.MethodGet, h.GetMetrics))

	// Admin APIs
	mux.HandleFunc("/admin/diagnostics", only(http.MethodGet, h.GetDiagnostics))
	mux.HandleFunc("/admin/logs", only(http.MethodGet, h.GetLogs))
	mux.HandleFunc("/admin/artifacts", only(http.MethodGet, h.GetArtifacts))

	// Middlewares
	return Chain(
		mux,
		RequestIDMiddleware,
		RecoveryMiddleware(h.logger, h.metrics),
		LoggingMiddleware(h.logger, h.metrics, h.cfg.SlowRequestThreshold),
		CORSMiddleware(h.cfg.CORSOrigins),
	)
}
