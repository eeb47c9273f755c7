// Package pipeline provides the high-level orchestration from a job page to a saved workspace page:
// load, scrape, sanitize, analyze, de-duplicate, save and record.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/careerstack/internal/db"
	"github.com/jonathan/careerstack/internal/extraction"
	"github.com/jonathan/careerstack/internal/fetch"
	"github.com/jonathan/careerstack/internal/notion"
	"github.com/jonathan/careerstack/internal/scrapers"
	"github.com/jonathan/careerstack/internal/selectors"
	"github.com/jonathan/careerstack/internal/types"
)

// UnsupportedWarning is attached to pages no scraper handles.
const UnsupportedWarning = "This site is not supported. Use a LinkedIn or Indeed job page."

// DefaultConcurrency bounds how many sources a batch scrapes at once.
const DefaultConcurrency = 4

// Step names reported in progress events
const (
	StepLoad      = "load"
	StepScrape    = "scrape"
	StepAnalyze   = "analyze"
	StepDuplicate = "duplicate"
	StepSave      = "save"
	StepRecord    = "record"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// SelectorSource supplies the current remote selector document. A nil document means the
// bundled selectors apply.
type SelectorSource interface {
	Get(ctx context.Context) (*selectors.Document, selectors.Source)
}

// Analyzer scores a description against the resume.
type Analyzer interface {
	Analyze(ctx context.Context, resume, description string) (*types.AnalysisResult, error)
}

// Saver writes jobs to the workspace.
type Saver interface {
	CheckDuplicate(ctx context.Context, jobURL string) notion.DuplicateResult
	Save(ctx context.Context, req *types.SaveRequest) (string, error)
}

// History records runs and saved jobs.
type History interface {
	CreateRun(ctx context.Context, sourceCount int) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
	SaveJob(ctx context.Context, input *db.SavedJobInput) (*db.SavedJob, error)
}

// Options holds the collaborators and settings for a Runner. Only Loader is required.
type Options struct {
	Loader    PageLoader
	Selectors SelectorSource
	// Base is the selector document overrides apply to. Nil means the bundled document.
	Base     *selectors.Document
	Analyzer Analyzer
	Resume   string
	Saver    Saver
	History  History
	Cache    *JobCache

	// UseBrowser renders every URL in headless Chrome.
	UseBrowser bool
	// BrowserFallback re-renders a statically fetched page whose description looks truncated.
	BrowserFallback bool
	Concurrency     int
	OnProgress      ProgressCallback
	Logger          *zap.Logger
}

// Steps selects the optional stages of a run.
type Steps struct {
	Analyze bool
	Save    bool
	// Force saves even when the job is already in the workspace.
	Force bool
	// Refresh ignores cached scrape results.
	Refresh bool
}

// Result is the outcome for one source.
type Result struct {
	Source      Source
	Job         *types.JobData
	Analysis    *types.AnalysisResult
	AnalysisErr error
	Duplicate   notion.DuplicateResult
	PageURL     string
	FromCache   bool
	Err         error
}

// Saved reports whether the job was written to the workspace.
func (r *Result) Saved() bool {
	return r.PageURL != ""
}

// Runner executes the pipeline.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Runner{opts: opts, logger: logger}
}

func (r *Runner) emit(step string, src Source, format string, args ...any) {
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{Step: step, Source: src.String(), Message: fmt.Sprintf(format, args...)})
	}
}

func (r *Runner) override(ctx context.Context) *selectors.Document {
	if r.opts.Selectors == nil {
		return nil
	}
	doc, source := r.opts.Selectors.Get(ctx)
	r.logger.Debug("selector document", zap.String("source", string(source)))
	return doc
}

// Scrape loads src and returns the sanitized job data with warnings for missing fields.
func (r *Runner) Scrape(ctx context.Context, src Source) (*types.JobData, error) {
	if r.opts.Loader == nil {
		return nil, fmt.Errorf("pipeline has no page loader")
	}
	override := r.override(ctx)

	r.emit(StepLoad, src, "Loading page")
	page, err := r.opts.Loader.Load(ctx, src, r.opts.UseBrowser)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", src, err)
	}

	job := r.scrapePage(page, override)

	if r.needsRender(src, job) {
		r.emit(StepLoad, src, "Description looks incomplete, rendering in browser")
		rendered, err := r.opts.Loader.Load(ctx, src, true)
		if err != nil {
			r.logger.Warn("browser render failed, keeping static scrape",
				zap.String("url", src.URL), zap.Error(err))
		} else {
			job = r.scrapePage(rendered, override)
		}
	}

	Finalize(job)
	r.emit(StepScrape, src, "Scraped %s at %s", orUnknown(job.Position), orUnknown(job.Company))
	return job, nil
}

func (r *Runner) needsRender(src Source, job *types.JobData) bool {
	return r.opts.BrowserFallback && !r.opts.UseBrowser && src.Path == "" &&
		job.Platform != types.PlatformOther && fetch.ShouldUseBrowser(job.Description)
}

func (r *Runner) scrapePage(page *scrapers.Page, override *selectors.Document) *types.JobData {
	scraper, err := scrapers.ForURL(page.URL, scrapers.Options{Base: r.opts.Base, Logger: r.logger})
	if err != nil {
		job := types.NewJobData(page.URL)
		job.AddWarning(UnsupportedWarning)
		return job
	}
	return scraper.Scrape(page, override)
}

// Finalize strips markup from the scalar fields and warns about missing critical fields.
func Finalize(job *types.JobData) {
	job.Company = extraction.SanitizeText(job.Company)
	job.Position = extraction.SanitizeText(job.Position)
	job.Salary = extraction.SanitizeText(job.Salary)

	if missing := job.MissingCriticalFields(); len(missing) > 0 {
		job.AddWarning(MissingFieldsWarning(missing))
	}
}

// MissingFieldsWarning names fields the scrape left empty.
func MissingFieldsWarning(fields []string) string {
	return fmt.Sprintf("Could not find %s on this page. Fill in the missing details before saving.",
		strings.Join(fields, ", "))
}

// Process runs the pipeline for one source outside of a recorded run.
func (r *Runner) Process(ctx context.Context, src Source, steps Steps) *Result {
	return r.process(ctx, src, steps, uuid.Nil)
}

func (r *Runner) process(ctx context.Context, src Source, steps Steps, runID uuid.UUID) *Result {
	result := &Result{Source: src}
	logger := r.logger.With(zap.String("source", src.String()))

	if cached, ok := r.cached(ctx, src, steps); ok {
		result.Job = cached.Job
		result.Analysis = cached.Analysis
		result.FromCache = true
		r.emit(StepScrape, src, "Restored from cache")
	} else {
		job, err := r.Scrape(ctx, src)
		if err != nil {
			result.Err = err
			return result
		}
		result.Job = job
	}

	analyzed := false
	if steps.Analyze && result.Analysis == nil && r.opts.Analyzer != nil {
		r.emit(StepAnalyze, src, "Analyzing match")
		analysis, err := r.opts.Analyzer.Analyze(ctx, r.opts.Resume, result.Job.Description)
		if err != nil {
			logger.Warn("analysis failed", zap.Error(err))
			result.AnalysisErr = err
		} else {
			result.Analysis = analysis
			analyzed = true
		}
	}

	if r.opts.Cache != nil && src.Path == "" && src.URL != "" && (!result.FromCache || analyzed) {
		if err := r.opts.Cache.Put(ctx, src.URL, result.Job, result.Analysis); err != nil {
			logger.Debug("job cache write failed", zap.Error(err))
		}
	}

	if steps.Save {
		r.save(ctx, result, steps, runID, logger)
	}
	return result
}

// cached looks up an earlier scrape of src. A page snapshot is always scraped, since it is
// what the user is looking at; its result then replaces the cached entry.
func (r *Runner) cached(ctx context.Context, src Source, steps Steps) (*CachedJob, bool) {
	if r.opts.Cache == nil || steps.Refresh || src.Path != "" || src.URL == "" {
		return nil, false
	}
	if _, snapshot := r.opts.Loader.(SnapshotLoader); snapshot {
		return nil, false
	}
	return r.opts.Cache.Get(ctx, src.URL)
}

func (r *Runner) save(ctx context.Context, result *Result, steps Steps, runID uuid.UUID, logger *zap.Logger) {
	req := types.NewSaveRequest(result.Job, result.Analysis)
	outcome, err := r.saveRequest(ctx, result.Source, req, steps.Force, runID, logger)
	result.Duplicate = outcome.Duplicate
	result.PageURL = outcome.PageURL
	result.Err = err
}

// SaveOutcome is what saving a prepared request did.
type SaveOutcome struct {
	Duplicate notion.DuplicateResult `json:"duplicate"`
	PageURL   string                 `json:"page_url,omitempty"`
}

// Saved reports whether the request was written to the workspace.
func (o SaveOutcome) Saved() bool {
	return o.PageURL != ""
}

// SaveRequest writes an already prepared request to the workspace, skipping it when its link is
// already saved unless force is set, and records it in the history.
func (r *Runner) SaveRequest(ctx context.Context, req *types.SaveRequest, force bool) (SaveOutcome, error) {
	return r.saveRequest(ctx, Source{URL: req.Link}, req, force, uuid.Nil, r.logger)
}

func (r *Runner) saveRequest(ctx context.Context, src Source, req *types.SaveRequest, force bool, runID uuid.UUID, logger *zap.Logger) (SaveOutcome, error) {
	var outcome SaveOutcome
	if r.opts.Saver == nil {
		return outcome, notion.ErrMissingSettings
	}

	if req.Link != "" {
		r.emit(StepDuplicate, src, "Checking for duplicates")
		outcome.Duplicate = r.opts.Saver.CheckDuplicate(ctx, req.Link)
		if outcome.Duplicate.IsDuplicate && !force {
			r.emit(StepDuplicate, src, "Already saved: %s", outcome.Duplicate.ExistingURL)
			return outcome, nil
		}
	}

	r.emit(StepSave, src, "Saving to Notion")
	pageURL, err := r.opts.Saver.Save(ctx, req)
	if err != nil {
		return outcome, err
	}
	outcome.PageURL = pageURL
	r.emit(StepSave, src, "Saved: %s", pageURL)

	if r.opts.History != nil {
		if _, err := r.opts.History.SaveJob(ctx, db.NewSavedJobInput(req, pageURL, runID)); err != nil {
			logger.Warn("failed to record saved job", zap.Error(err))
		} else {
			r.emit(StepRecord, src, "Recorded in history")
		}
	}
	return outcome, nil
}

// Run processes sources concurrently, bounded by Options.Concurrency. Results are returned in
// source order; a failure in one source does not stop the others.
func (r *Runner) Run(ctx context.Context, sources []Source, steps Steps) ([]Result, error) {
	runID := uuid.Nil
	if r.opts.History != nil && steps.Save {
		id, err := r.opts.History.CreateRun(ctx, len(sources))
		if err != nil {
			r.logger.Warn("failed to create run record", zap.Error(err))
		} else {
			runID = id
		}
	}

	results := make([]Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = *r.process(gctx, src, steps, runID)
			return nil
		})
	}
	_ = g.Wait()

	if runID != uuid.Nil {
		if err := r.opts.History.CompleteRun(ctx, runID, RunStatus(results)); err != nil {
			r.logger.Warn("failed to complete run record", zap.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// RunStatus summarizes results as a db run status.
func RunStatus(results []Result) string {
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return db.RunStatusCompleted
	case failed == len(results):
		return db.RunStatusFailed
	default:
		return db.RunStatusPartial
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
