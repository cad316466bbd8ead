package backend

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SirPelzy/kays-laundry/backend/services"
)

// RouterDeps are the collaborators the router dispatches to.
type RouterDeps struct {
	Provider services.Provider
	BuildDir string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter registers the API routes ahead of the SPA catch-all.
func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/api/services", ServicesHandler(d.Provider)).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/api/health", HealthHandler(d.Provider)).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	r.PathPrefix("/").Handler(NewSPA(d.BuildDir)).Methods(http.MethodGet, http.MethodHead)
	return r
}

// NewHandler wraps the router in the middleware chain:
// logging, metrics, recover, CORS. Recover sits inside logging and metrics so
// a recovered panic is still logged and counted.
func NewHandler(cfg Config, d RouterDeps) http.Handler {
	router := NewRouter(d)
	return LoggingMiddleware(MetricsMiddleware(Recover(CORS(cfg.AllowedOrigin)(router))))
}
