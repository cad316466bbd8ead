package backend

import (
	"log"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/SirPelzy/kays-laundry/backend/metrics"
)

const requestIDHeader = "X-Request-ID"

// responseWriter records the status and whether anything has been sent.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// wrapWriter reuses w when it is already wrapped so every layer sees the
// same written state.
func wrapWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		if !rw.wroteHeader {
			rw.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Recover is the outermost handler. A panic before anything was written
// becomes a JSON 500; after that the connection is aborted instead.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := wrapWriter(w)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			log.Printf("recover: panic serving %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
			if rw.wroteHeader {
				panic(http.ErrAbortHandler)
			}
			writeJSON(rw, http.StatusInternalServerError, errorResponse{Error: msgInternal})
		}()
		next.ServeHTTP(rw, r)
	})
}

// LoggingMiddleware tags each request with an id and logs it.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		rw := wrapWriter(w)
		rw.Header().Set(requestIDHeader, id)

		log.Printf("http: request received: %s %s from origin %q id=%s", r.Method, r.URL.RequestURI(), r.Header.Get("Origin"), id)
		next.ServeHTTP(rw, r)
		log.Printf("http: %s %s -> %d in %s id=%s", r.Method, r.URL.Path, rw.status, time.Since(start), id)
	})
}

// MetricsMiddleware records request counts and latency per route group.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapWriter(w)
		next.ServeHTTP(rw, r)

		route := routeLabel(r.URL.Path)
		metrics.RequestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rw.status)).Inc()
	})
}

// routeLabel keeps metric cardinality bounded.
func routeLabel(p string) string {
	switch {
	case p == "/api/services", p == "/api/health", p == "/metrics":
		return p
	case strings.HasPrefix(p, "/api"):
		return "/api/other"
	default:
		return "spa"
	}
}

// CORS allows a single origin, or any origin when origin is "*".
func CORS(origin string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		AllowCredentials:     false,
		OptionsSuccessStatus: http.StatusNoContent,
	})
	return c.Handler
}
