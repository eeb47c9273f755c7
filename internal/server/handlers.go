package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/careerstack/internal/db"
	"github.com/jonathan/careerstack/internal/llm"
	"github.com/jonathan/careerstack/internal/notion"
	"github.com/jonathan/careerstack/internal/pipeline"
	"github.com/jonathan/careerstack/internal/selectors"
	"github.com/jonathan/careerstack/internal/types"
)

// healthResponse reports which optional features this server can serve.
type healthResponse struct {
	Status  string `json:"status"`
	Analyze bool   `json:"analyze"`
	Save    bool   `json:"save"`
	History bool   `json:"history"`
	Auth    bool   `json:"auth"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Analyze: s.pipeline.Analyzer != nil && s.pipeline.Resume != "",
		Save:    s.pipeline.Saver != nil,
		History: s.history != nil,
		Auth:    s.tokens != nil,
	})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		case errors.Is(err, io.EOF):
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		default:
			return &ErrValidation{Field: "body", Message: err.Error()}
		}
	}
	return nil
}

// requireSteps fails when steps need a collaborator this server was started without.
func (s *Server) requireSteps(steps pipeline.Steps) error {
	if steps.Analyze {
		if s.pipeline.Analyzer == nil {
			return llm.ErrMissingAPIKey
		}
		if s.pipeline.Resume == "" {
			return llm.ErrMissingResume
		}
	}
	if steps.Save && s.pipeline.Saver == nil {
		return notion.ErrMissingSettings
	}
	return nil
}

// handleScrape scrapes one page. A request carrying HTML is scraped from that snapshot, which is
// how the extension sends the page the user is looking at.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req types.ScrapeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	steps := pipeline.Steps{Analyze: req.Analyze, Save: req.Save, Force: req.Force, Refresh: req.Refresh}
	if err := s.requireSteps(steps); err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.pipeline
	if req.HTML != "" {
		opts.Loader = pipeline.SnapshotLoader{HTML: req.HTML}
		opts.UseBrowser = false
		opts.BrowserFallback = false
	}

	res := pipeline.New(opts).Process(r.Context(), pipeline.Source{URL: req.URL}, steps)
	if res.Job == nil {
		s.writeError(w, res.Err)
		return
	}

	status := http.StatusOK
	if res.Err != nil {
		// the scrape succeeded but saving failed; the report still carries the job
		status = HTTPStatus(res.Err)
	}
	s.jsonResponse(w, status, pipeline.NewReport(res))
}

// handleScrapeStream scrapes several URLs, streaming progress events, one result event per URL
// in request order and a final complete event.
func (s *Server) handleScrapeStream(w http.ResponseWriter, r *http.Request) {
	var req types.BatchScrapeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	steps := pipeline.Steps{Analyze: req.Analyze, Save: req.Save, Force: req.Force, Refresh: req.Refresh}
	if err := s.requireSteps(steps); err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := s.pipeline
	opts.OnProgress = sse.WriteProgress

	sources := make([]pipeline.Source, len(req.URLs))
	for i, u := range req.URLs {
		sources[i] = pipeline.Source{URL: u}
	}

	results, err := pipeline.New(opts).Run(r.Context(), sources, steps)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
		if sse.Closed() {
			s.logger.Debug("client left the stream", zap.Int("delivered", i))
			return
		}
		sse.WriteResult(pipeline.NewReport(&results[i]))
	}
	sse.WriteComplete(pipeline.RunStatus(results), len(results), failed)
}

// handleAnalyze scores a description against the request's resume or the configured one.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if s.pipeline.Analyzer == nil {
		s.writeError(w, llm.ErrMissingAPIKey)
		return
	}

	resume := req.Resume
	if resume == "" {
		resume = s.pipeline.Resume
	}
	if resume == "" {
		s.writeError(w, llm.ErrMissingResume)
		return
	}

	analysis, err := s.pipeline.Analyzer.Analyze(r.Context(), resume, req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

// handleSave saves a prepared request. An already saved link answers 409 unless ?force=true.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req types.SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	force, err := queryBool(r, "force")
	if err != nil {
		s.writeError(w, err)
		return
	}

	outcome, err := pipeline.New(s.pipeline).SaveRequest(r.Context(), &req, force)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !outcome.Saved() {
		s.jsonResponse(w, http.StatusConflict, outcome)
		return
	}
	s.jsonResponse(w, http.StatusCreated, outcome)
}

// handleDuplicate reports whether ?url= is already saved, after canonicalizing it.
func (s *Server) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		s.writeError(w, &ErrValidation{Field: "url", Message: "required"})
		return
	}
	if s.pipeline.Saver == nil {
		s.writeError(w, notion.ErrMissingSettings)
		return
	}

	jobURL := pipeline.CanonicalJobURL(raw)
	result := s.pipeline.Saver.CheckDuplicate(r.Context(), jobURL)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"url":          jobURL,
		"is_duplicate": result.IsDuplicate,
		"existing_url": result.ExistingURL,
	})
}

// handleSelectors returns the effective selector document: the remote override merged onto the
// bundled one. X-Selector-Source names where the override came from.
func (s *Server) handleSelectors(w http.ResponseWriter, r *http.Request) {
	base := s.pipeline.Base
	if base == nil {
		base = selectors.Bundled()
	}
	source := selectors.SourceBundled
	doc := base
	if s.selectors != nil {
		var override *selectors.Document
		override, source = s.selectors.Get(r.Context())
		doc = selectors.Merge(base, override)
	}
	w.Header().Set("X-Selector-Source", string(source))
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleRefreshSelectors fetches the remote selector document now.
func (s *Server) handleRefreshSelectors(w http.ResponseWriter, r *http.Request) {
	if s.selectors == nil {
		s.writeError(w, &ErrNotConfigured{Feature: "remote selectors", Hint: "set selectors.sources"})
		return
	}
	doc, err := s.selectors.Refresh(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) requireHistory(w http.ResponseWriter) bool {
	if s.history == nil {
		s.writeError(w, &ErrNotConfigured{Feature: "save history", Hint: "set database_url"})
		return false
	}
	return true
}

// handleListHistory lists saved jobs. Filters: company, platform, min_score, run, limit.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	q := r.URL.Query()
	filters := db.SavedJobFilters{
		Company:  q.Get("company"),
		Platform: q.Get("platform"),
	}

	var err error
	if filters.MinScore, err = queryInt(r, "min_score"); err != nil {
		s.writeError(w, err)
		return
	}
	if filters.Limit, err = queryInt(r, "limit"); err != nil {
		s.writeError(w, err)
		return
	}
	if run := q.Get("run"); run != "" {
		if filters.RunID, err = uuid.Parse(run); err != nil {
			s.writeError(w, &ErrValidation{Field: "run", Message: "must be a UUID"})
			return
		}
	}

	jobs, err := s.history.ListSavedJobs(r.Context(), filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if jobs == nil {
		jobs = []db.SavedJob{}
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

// handleListRuns lists recent runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, err)
		return
	}
	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, runs)
}

// handleDeleteHistory removes one saved job record. The workspace page is left alone.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}
	if err := s.history.DeleteSavedJob(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ErrValidation{Field: name, Message: "must be true or false"}
	}
	return b, nil
}
