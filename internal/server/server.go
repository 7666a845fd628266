// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the review pipeline over HTTP: note extraction
// endpoints plus a streaming analyze-and-rank endpoint that re-emits each
// article with its authoritative client-side score.
// Implements: prd005-server (R1-R3);
//
//	docs/ARCHITECTURE § HTTP Surface.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/tumorboard/internal/notes"
	"github.com/pdiddy/tumorboard/internal/retrieval"
	"github.com/pdiddy/tumorboard/internal/review"
	"github.com/pdiddy/tumorboard/internal/scoring"
	"github.com/pdiddy/tumorboard/pkg/types"
)

// Server holds the handler dependencies.
type Server struct {
	Notes    notes.Backend
	Analyzer review.Analyzer
	Log      *logrus.Logger
}

// New builds a Server.
func New(backend notes.Backend, analyzer review.Analyzer, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Notes: backend, Analyzer: analyzer, Log: log}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/extract-disease", s.handleExtractDisease).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/extract-events", s.handleExtractEvents).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/analyze-articles", s.handleAnalyzeArticles).Methods(http.MethodPost)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("request handled")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}

type extractRequest struct {
	Text         string `json:"text"`
	Instructions string `json:"instructions,omitempty"`
}

func (s *Server) handleExtractDisease(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "missing text field", http.StatusBadRequest)
		return
	}

	disease, err := s.Notes.ExtractDisease(r.Context(), req.Text)
	if err != nil {
		s.Log.WithError(err).Error("disease extraction failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]string{"disease": disease})
}

func (s *Server) handleExtractEvents(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "missing text field", http.StatusBadRequest)
		return
	}

	events, err := s.Notes.ExtractEvents(r.Context(), req.Text, req.Instructions)
	if err != nil {
		s.Log.WithError(err).Error("event extraction failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string][]string{"actionable_events": events})
}

// analyzeRequest mirrors the upstream analysis request: events as newline-
// separated text plus optional methodology and disease context.
type analyzeRequest struct {
	EventsText  string `json:"events_text"`
	Methodology string `json:"methodology_content,omitempty"`
	Disease     string `json:"disease,omitempty"`
}

// handleAnalyzeArticles proxies the analysis stream, scoring each article
// before re-emitting it. The response is newline-delimited JSON in the same
// envelope shape the upstream service uses, so existing stream consumers
// work unchanged but see authoritative points.
func (s *Server) handleAnalyzeArticles(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.EventsText) == "" {
		http.Error(w, "missing events_text field", http.StatusBadRequest)
		return
	}

	patient := types.PatientContext{
		Disease:          req.Disease,
		ActionableEvents: splitEvents(req.EventsText),
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	enc := json.NewEncoder(w)
	emit := func(eventType retrieval.EventType, data any) {
		enc.Encode(map[string]any{"type": eventType, "data": data})
		if flusher != nil {
			flusher.Flush()
		}
	}

	err := s.Analyzer.Analyze(r.Context(), retrieval.Request{
		EventsText:  req.EventsText,
		Methodology: req.Methodology,
		Disease:     req.Disease,
	}, func(ev retrieval.Event) error {
		switch {
		case ev.Progress != nil:
			emit(retrieval.EventMetadata, ev.Progress)

		case ev.Article != nil:
			rec, err := scoring.Score(*ev.Article, patient)
			if err != nil {
				emit(retrieval.EventError, map[string]any{
					"message":        fmt.Sprintf("article %d: %v", ev.ArticleNumber, err),
					"article_number": ev.ArticleNumber,
				})
				return nil
			}
			emit(retrieval.EventArticleAnalysis, map[string]any{
				"progress": map[string]int{"article_number": ev.ArticleNumber},
				"analysis": map[string]any{"article_metadata": rec},
			})

		case ev.Failure != nil:
			emit(retrieval.EventError, map[string]string{"message": ev.Failure.Message})
		}
		return nil
	})
	if err != nil {
		s.Log.WithError(err).Warn("analysis stream ended early")
		emit(retrieval.EventError, map[string]string{"message": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// splitEvents parses the newline-separated events text into an ordered list,
// dropping blank lines.
func splitEvents(text string) []string {
	var events []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		events = append(events, strings.TrimSpace(line))
	}
	return events
}
