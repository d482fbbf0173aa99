package server

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/skincare-intake/internal/report"
)

// formPage is the data for the intake form.
type formPage struct {
	Email    string
	Concerns string
	Error    string

	MaxImages     int
	MaxImageBytes int64
}

// resultsPage is the data for the recommendations page.
type resultsPage struct {
	ID         string
	Report     template.HTML
	ImageCount int
	Elapsed    time.Duration
}

var templateFuncs = template.FuncMap{
	"megabytes": func(n int64) int64 { return n >> 20 },
	"placeholder": func() string {
		return report.Placeholder
	},
}

func (s *Server) renderForm(w http.ResponseWriter, status int, page formPage) {
	page.MaxImages = s.limits.MaxImages
	page.MaxImageBytes = s.limits.MaxImageBytes
	s.renderPage(w, status, "form.html", page)
}

// renderPage executes into a buffer first so a template error never leaves
// a half-written page.
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, MsgInternalError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing %s: %v", name, err)
	}
}
