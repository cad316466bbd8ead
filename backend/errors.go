package backend

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// ErrEntryDocumentMissing is returned when the SPA's index.html cannot be read.
var ErrEntryDocumentMissing = errors.New("entry document missing")

const (
	msgFetchServices = "Failed to fetch services"
	msgInternal      = "Something broke!"
)

type errorResponse struct {
	Error string `json:"error"`
}

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP turns a returned error into a 500, unless part of the response
// has already gone out.
func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw := wrapWriter(w)
	err := f(rw, r)
	if err == nil {
		return
	}

	log.Printf("http: error serving %s %s: %v", r.Method, r.URL.Path, err)
	if rw.wroteHeader {
		return
	}
	if errors.Is(err, ErrEntryDocumentMissing) {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(rw, http.StatusInternalServerError, errorResponse{Error: msgInternal})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}
