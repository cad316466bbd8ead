package backend

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/SirPelzy/kays-laundry/backend/metrics"
	"github.com/SirPelzy/kays-laundry/backend/services"
)

const healthTimeout = 2 * time.Second

// ServicesHandler returns an http.Handler listing the service catalogue.
func ServicesHandler(p services.Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := p.ListServices(r.Context())
		if err != nil {
			log.Printf("services: error fetching services: %v", err)
			metrics.FetchErrors.Inc()
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgFetchServices})
			return
		}
		if list == nil {
			list = []services.Service{}
		}

		log.Printf("services: fetched %d services", len(list))
		writeJSON(w, http.StatusOK, list)
	})
}

// HealthHandler reports whether the provider's backing store is reachable.
func HealthHandler(p services.Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pinger, ok := p.(services.Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				log.Printf("health: store ping failed: %v", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
