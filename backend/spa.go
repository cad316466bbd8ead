package backend

import (
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"
)

const entryDocument = "/index.html"

// SPA serves the compiled frontend. Requests that match no file get the
// entry document so the client-side router can resolve them.
type SPA struct {
	root http.Dir
}

// NewSPA serves files beneath buildDir.
func NewSPA(buildDir string) *SPA {
	return &SPA{root: http.Dir(buildDir)}
}

func (s *SPA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	HandlerFunc(s.serve).ServeHTTP(w, r)
}

func (s *SPA) serve(w http.ResponseWriter, r *http.Request) error {
	if s.serveAsset(w, r) {
		return nil
	}

	p := r.URL.Path
	if !strings.HasPrefix(p, "/api") && !strings.Contains(p, ".") {
		log.Printf("spa: fallback route hit for %s, serving index.html", p)
	}
	return s.serveEntry(w, r)
}

// serveAsset streams the file at the request path and reports whether one
// was found. Directories are served through their index.html.
func (s *SPA) serveAsset(w http.ResponseWriter, r *http.Request) bool {
	name := path.Clean("/" + r.URL.Path)
	if hasDotSegment(name) {
		return false
	}

	f, err := s.root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}
	if info.IsDir() {
		idx, err := s.root.Open(path.Join(name, "index.html"))
		if err != nil {
			return false
		}
		defer idx.Close()
		if info, err = idx.Stat(); err != nil || info.IsDir() {
			return false
		}
		f = idx
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

func (s *SPA) serveEntry(w http.ResponseWriter, r *http.Request) error {
	f, err := s.root.Open(entryDocument)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEntryDocumentMissing, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEntryDocumentMissing, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrEntryDocumentMissing, entryDocument)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, withoutPreconditions(r), info.Name(), info.ModTime(), f)
	return nil
}

// entryPreconditions would let ServeContent answer the fallback with a 206
// or 304 for a document the client never asked for by name.
var entryPreconditions = []string{
	"Range",
	"If-Range",
	"If-Match",
	"If-None-Match",
	"If-Modified-Since",
	"If-Unmodified-Since",
}

// withoutPreconditions returns a copy of r without range and conditional
// headers so the entry document always goes out whole with a 200.
func withoutPreconditions(r *http.Request) *http.Request {
	r2 := r.Clone(r.Context())
	for _, h := range entryPreconditions {
		r2.Header.Del(h)
	}
	return r2
}

// hasDotSegment reports whether any path element is a dotfile, which are
// never served.
func hasDotSegment(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
