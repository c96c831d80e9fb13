package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vcniti/estimator/internal/estimate"
	"github.com/vcniti/estimator/internal/mailer"
	"github.com/vcniti/estimator/internal/report"
	"github.com/vcniti/estimator/internal/store"
)

// Server exposes the relay endpoints and the estimate API. The /api/estimate
// relay keeps provider credentials server-side: browsers post the built
// prompt and get back the raw completion text, shaped exactly like a direct
// provider call so the client pipeline treats both paths identically.
type Server struct {
	caller    estimate.ChatCaller
	generator *estimate.Generator
	estimates *store.EstimateStore
	mail      mailer.Client
	pdf       report.PDFRenderer
}

func New(caller estimate.ChatCaller, generator *estimate.Generator, estimates *store.EstimateStore, mail mailer.Client) http.Handler {
	return newServer(caller, generator, estimates, mail, report.NewChromiumPDFRenderer())
}

func newServer(caller estimate.ChatCaller, generator *estimate.Generator, estimates *store.EstimateStore, mail mailer.Client, pdf report.PDFRenderer) http.Handler {
	s := &Server{
		caller:    caller,
		generator: generator,
		estimates: estimates,
		mail:      mail,
		pdf:       pdf,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/estimate", s.handleEstimate)
	mux.HandleFunc("/api/contact", s.handleContact)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/estimates/", s.handleEstimateByID)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

type estimateRelayRequest struct {
	FormData *estimate.FormData `json:"formData,omitempty"`
	Prompt   string             `json:"prompt"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req estimateRelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	content, err := s.caller.Complete(r.Context(), req.Prompt)
	if err != nil {
		log.Printf("estimate relay upstream failure: %v", err)
		writeError(w, http.StatusInternalServerError, "AI estimation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

var contactFields = []string{"firstName", "lastName", "email", "subject", "message"}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var msg mailer.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	values := map[string]string{
		"firstName": msg.FirstName,
		"lastName":  msg.LastName,
		"email":     msg.Email,
		"subject":   msg.Subject,
		"message":   msg.Body,
	}
	var missing []string
	for _, field := range contactFields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "missing required fields",
			"fields": missing,
		})
		return
	}

	if err := s.mail.Send(r.Context(), msg); err != nil {
		log.Printf("contact delivery failure: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to deliver message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var form estimate.FormData
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if err := form.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.generator.Generate(r.Context(), form)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := store.StoredEstimate{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Source:    res.Source,
		Form:      form,
		Estimate:  res.Estimate,
	}
	if err := s.estimates.Save(r.Context(), rec); err != nil {
		log.Printf("save estimate %s: %v", rec.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to persist estimate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":          rec.ID,
		"source":      res.Source,
		"failureKind": res.FailureKind,
		"estimate":    res.Estimate,
	})
}

func (s *Server) handleEstimateByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/estimates/")
	if rest == "" {
		s.handleList(w, r)
		return
	}

	wantPDF := false
	if strings.HasSuffix(rest, "/pdf") {
		wantPDF = true
		rest = strings.TrimSuffix(rest, "/pdf")
	}
	id := strings.Trim(rest, "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	rec, err := s.estimates.Load(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "estimate not found")
		return
	}
	if err != nil {
		log.Printf("load estimate %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load estimate")
		return
	}

	if !wantPDF {
		writeJSON(w, http.StatusOK, rec)
		return
	}

	markdown := report.BuildMarkdown(rec.Form, rec.Estimate, rec.CreatedAt)
	pdf, err := s.pdf.Render(r.Context(), markdown)
	if err != nil {
		log.Printf("render estimate pdf %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "vcniti-construction-estimate.pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.estimates.List(r.Context(), 50)
	if err != nil {
		log.Printf("list estimates: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list estimates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"estimates": summaries})
}
