// Package orchestrator owns the scan job lifecycle. Submission returns
// immediately; the pipeline runs in a goroutine and drives the project from
// processing to completed or failed. Terminal states never change again.
package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/artifacts"
	"github.com/zengent/codelens/internal/catalog"
	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/inputs"
	"github.com/zengent/codelens/internal/merge"
	"github.com/zengent/codelens/internal/ml"
	"github.com/zengent/codelens/internal/reference"
	"github.com/zengent/codelens/internal/report"
	"github.com/zengent/codelens/internal/scan"
	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/errors"
)

// SubmitRequest describes one scan job.
type SubmitRequest struct {
	Source        inputs.Source
	ReferencePath string        // optional reference spreadsheet (xlsx or csv)
	Timeout       time.Duration // overrides scan.timeout when set
}

// StatusResponse is the poller's view of a project.
type StatusResponse struct {
	Status        Status                        `json:"status"`
	FailureReason string                        `json:"failure_reason,omitempty"`
	Warnings      []string                      `json:"warnings,omitempty"`
	Counts        Counts                        `json:"counts"`
	Analysis      *findings.CanonicalFindingSet `json:"analysis,omitempty"`
}

// Orchestrator coordinates input resolution, the scan strategies, the
// classification fallback, merge, rendering and persistence for every
// submitted project.
type Orchestrator struct {
	cfg       *config.Config
	logger    hclog.Logger
	store     ProjectStore
	catalog   *catalog.Catalog
	resolver  *inputs.Resolver
	merger    *merge.Merger
	generator *report.Generator
	artifacts *artifacts.Store
	ambiguous map[string]bool

	mu   sync.Mutex
	done map[string]chan struct{}
}

// New builds an orchestrator from the application configuration. The pattern
// catalog is loaded once here; a broken catalog fails startup, not individual
// jobs.
func New(cfg *config.Config, store ProjectStore, logger hclog.Logger) (*Orchestrator, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.Scan.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.Scan.CatalogPath)
	} else {
		cat, err = catalog.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern catalog: %w", err)
	}

	return &Orchestrator{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		catalog:   cat,
		resolver:  inputs.NewResolver(cfg, logger.Named("inputs")),
		merger:    merge.NewMerger(cat, logger.Named("merge")),
		generator: report.NewGenerator(logger.Named("report")),
		artifacts: artifacts.NewStore(cfg, logger.Named("artifacts")),
		ambiguous: ml.AmbiguousSet(cfg.Scan.AmbiguousCategories),
		done:      make(map[string]chan struct{}),
	}, nil
}

// Catalog exposes the loaded pattern catalog.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// Submit registers a new project and starts its pipeline. It returns the
// project ID as soon as the project is persisted; scanning happens in the
// background.
func (o *Orchestrator) Submit(ctx context.Context, request SubmitRequest) (string, error) {
	project := &Project{
		ID:          uuid.NewString(),
		Source:      request.Source,
		Status:      StatusProcessing,
		SubmittedAt: time.Now().UTC(),
	}
	if err := o.store.Create(project); err != nil {
		return "", fmt.Errorf("failed to create project: %w", err)
	}

	finished := make(chan struct{})
	o.mu.Lock()
	o.done[project.ID] = finished
	o.mu.Unlock()

	go func() {
		// the registry entry is dropped before the close so that a waiter
		// arriving afterwards falls back to the store, where the project is
		// already terminal
		defer func() {
			o.mu.Lock()
			delete(o.done, project.ID)
			o.mu.Unlock()
			close(finished)
		}()
		o.run(ctx, project, request)
	}()

	o.logger.Info("project submitted", "project", project.ID, "source", request.Source.Describe())
	return project.ID, nil
}

// Status returns a snapshot of the project.
func (o *Orchestrator) Status(projectID string) (*StatusResponse, error) {
	project, err := o.store.Get(projectID)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{
		Status:        project.Status,
		FailureReason: project.FailureReason,
		Warnings:      project.Warnings,
		Counts:        project.Counts,
		Analysis:      project.Analysis,
	}, nil
}

// FetchReport renders the persisted analysis in the requested format. The
// project must have completed; polling before that yields a NotReadyError.
func (o *Orchestrator) FetchReport(projectID string, format report.Format) ([]byte, error) {
	if _, err := report.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	project, err := o.store.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != StatusCompleted {
		return nil, errors.NewNotReadyError(projectID, string(project.Status))
	}

	meta := report.Meta{
		ProjectID:   project.ID,
		Source:      project.Source.Describe(),
		GeneratedAt: project.CompletedAt,
		Warnings:    project.Warnings,
	}
	return o.generator.Render(format, meta, project.Analysis)
}

// Wait blocks until the project reaches a terminal state.
func (o *Orchestrator) Wait(projectID string) error {
	o.mu.Lock()
	finished, ok := o.done[projectID]
	o.mu.Unlock()
	if !ok {
		if _, err := o.store.Get(projectID); err != nil {
			return err
		}
		return nil
	}
	<-finished
	return nil
}

// run executes the scan pipeline for one project. Every exit path leaves the
// project in a terminal state.
func (o *Orchestrator) run(parent context.Context, project *Project, request SubmitRequest) {
	timeout := config.SetThen(request.Timeout, config.SetThen(o.cfg.Scan.Timeout, config.DefaultScanTimeout))
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	logger := o.logger.Named("pipeline").With("project", project.ID)
	started := time.Now()

	sourceFiles, resolveWarnings, err := o.resolver.Resolve(ctx, project.Source)
	if err != nil {
		o.fail(ctx, project, err, "failed to resolve inputs")
		return
	}
	project.Warnings = append(project.Warnings, resolveWarnings...)
	project.Counts.FilesScanned = len(sourceFiles)
	project.Counts.FilesSkipped = len(resolveWarnings)

	strategies, err := o.buildStrategies(request)
	if err != nil {
		o.fail(ctx, project, err, "failed to prepare scan strategies")
		return
	}

	raw, scanWarnings, err := o.runStrategies(ctx, strategies, sourceFiles)
	if err != nil {
		o.fail(ctx, project, err, "scan failed")
		return
	}
	project.Warnings = append(project.Warnings, scanWarnings...)

	raw = o.classify(ctx, project, raw, logger)
	if ctx.Err() != nil {
		o.fail(ctx, project, ctx.Err(), "scan failed")
		return
	}

	// merge runs only after every strategy branch and the classifier have
	// terminated
	set := o.merger.Merge(raw)
	set.Summary.FilesScanned = project.Counts.FilesScanned
	set.Summary.FilesSkipped = project.Counts.FilesSkipped

	meta := report.Meta{
		ProjectID:   project.ID,
		Source:      project.Source.Describe(),
		GeneratedAt: time.Now().UTC(),
		Warnings:    project.Warnings,
	}
	analysisPath, err := o.artifacts.SaveAnalysis(project.ID, meta, set)
	if err != nil {
		o.fail(ctx, project, err, "failed to persist analysis")
		return
	}

	format := report.Format(config.SetThen(o.cfg.Report.DefaultFormat, string(report.FormatJSON)))
	rendered, err := o.generator.Render(format, meta, set)
	if err != nil {
		o.fail(ctx, project, err, "failed to render report")
		return
	}
	reportPath, err := o.artifacts.SaveReport(project.ID, format, rendered)
	if err != nil {
		o.fail(ctx, project, err, "failed to persist report")
		return
	}

	project.Status = StatusCompleted
	project.Analysis = set
	project.AnalysisPath = analysisPath
	project.ReportPath = reportPath
	project.Counts.Findings = set.Summary.Total
	project.Counts.ByTier = set.Summary.ByTier
	project.CompletedAt = time.Now().UTC()
	if err := o.store.Update(project); err != nil {
		logger.Error("failed to persist completed project", "error", err)
		return
	}

	logger.Info("project completed",
		"findings", set.Summary.Total,
		"files", project.Counts.FilesScanned,
		"duration", time.Since(started).Round(time.Millisecond))
}

// buildStrategies assembles the strategy branches for one request. The regex
// strategy always runs; the exact-match strategy joins when reference data
// was supplied.
func (o *Orchestrator) buildStrategies(request SubmitRequest) ([]scan.Strategy, error) {
	strategies := []scan.Strategy{scan.NewRegexStrategy(o.catalog, o.logger.Named("regex"))}

	if request.ReferencePath != "" {
		entries, err := reference.ParseFile(request.ReferencePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reference data: %w", err)
		}
		exact, err := scan.NewExactStrategy(entries, o.catalog, o.logger.Named("exact-match"))
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, exact)
	}
	return strategies, nil
}

// runStrategies executes all strategy branches concurrently and joins their
// results. Each branch fans its file set out over scan.jobs goroutines. The
// first strategy error wins; partial results are discarded.
func (o *Orchestrator) runStrategies(ctx context.Context, strategies []scan.Strategy, sourceFiles []inputs.SourceFile) ([]findings.Finding, []string, error) {
	type result struct {
		items    []findings.Finding
		warnings []string
		err      error
	}

	jobs := config.SetThen(o.cfg.Scan.Jobs, config.DefaultScanJobs)
	results := make([]result, len(strategies))
	var wg sync.WaitGroup
	for i, strategy := range strategies {
		wg.Add(1)
		go func(i int, strategy scan.Strategy) {
			defer wg.Done()
			items, warnings, err := scanChunked(ctx, strategy, sourceFiles, jobs)
			results[i] = result{items: items, warnings: warnings, err: err}
		}(i, strategy)
	}
	wg.Wait()

	var (
		combined []findings.Finding
		warnings []string
	)
	for i, r := range results {
		if r.err != nil {
			return nil, nil, fmt.Errorf("strategy %s: %w", strategies[i].Name(), r.err)
		}
		combined = append(combined, r.items...)
		warnings = append(warnings, r.warnings...)
	}
	return combined, warnings, nil
}

// scanChunked splits the file set across at most jobs goroutines for one
// strategy and rejoins the output in canonical order. Strategies work
// per-file, so chunking does not change what they find.
func scanChunked(ctx context.Context, strategy scan.Strategy, sourceFiles []inputs.SourceFile, jobs int) ([]findings.Finding, []string, error) {
	if jobs <= 1 || len(sourceFiles) <= 1 {
		return strategy.Scan(ctx, sourceFiles)
	}
	if jobs > len(sourceFiles) {
		jobs = len(sourceFiles)
	}

	chunkSize := (len(sourceFiles) + jobs - 1) / jobs
	var chunks [][]inputs.SourceFile
	for start := 0; start < len(sourceFiles); start += chunkSize {
		end := start + chunkSize
		if end > len(sourceFiles) {
			end = len(sourceFiles)
		}
		chunks = append(chunks, sourceFiles[start:end])
	}

	type chunkResult struct {
		items    []findings.Finding
		warnings []string
		err      error
	}

	results := make([]chunkResult, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []inputs.SourceFile) {
			defer wg.Done()
			items, warnings, err := strategy.Scan(ctx, chunk)
			results[i] = chunkResult{items: items, warnings: warnings, err: err}
		}(i, chunk)
	}
	wg.Wait()

	var (
		combined []findings.Finding
		warnings []string
	)
	for _, r := range results {
		if r.err != nil {
			return nil, nil, r.err
		}
		combined = append(combined, r.items...)
		warnings = append(warnings, r.warnings...)
	}
	findings.SortCanonical(combined)
	return combined, warnings, nil
}

// classify runs the ML fallback over ambiguous heuristic findings. A broken
// classifier degrades the job: candidates keep their heuristic tier and the
// project records a warning. It never fails the pipeline.
func (o *Orchestrator) classify(ctx context.Context, project *Project, raw []findings.Finding, logger hclog.Logger) []findings.Finding {
	if !config.GetBoolValue(o.cfg, "ML.Enabled", true) {
		return raw
	}

	candidates, rest := ml.Partition(raw, o.ambiguous)
	if len(candidates) == 0 {
		return raw
	}

	classifier, err := ml.NewFromConfig(o.cfg, o.catalog, logger.Named("ml"))
	if err != nil {
		project.Warnings = append(project.Warnings,
			fmt.Sprintf("classifier unavailable (%v), findings kept at heuristic tier", err))
		return raw
	}

	batchSize := config.SetThen(o.cfg.ML.BatchSize, config.DefaultMLBatchSize)
	labeled := make([]findings.Finding, 0, len(candidates))
	for start := 0; start < len(candidates); start += batchSize {
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		batch, err := classifier.Classify(ctx, candidates[start:end])
		if err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
				return raw
			}
			var unavailable *errors.ClassifierUnavailableError
			if stderrors.As(err, &unavailable) {
				logger.Warn("classifier unavailable, degrading to heuristic tier", "backend", unavailable.Backend, "error", err)
				project.Warnings = append(project.Warnings,
					fmt.Sprintf("classifier %q unavailable, findings kept at heuristic tier", unavailable.Backend))
				return raw
			}
			logger.Warn("classification failed, degrading to heuristic tier", "error", err)
			project.Warnings = append(project.Warnings, "classification failed, findings kept at heuristic tier")
			return raw
		}
		labeled = append(labeled, batch...)
	}

	return append(rest, labeled...)
}

// fail drives the project to the failed state. A deadline expiry is reported
// as a plain "timeout" and any partial findings are discarded.
func (o *Orchestrator) fail(ctx context.Context, project *Project, cause error, reason string) {
	if stderrors.Is(cause, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		project.FailureReason = "timeout"
		cause = errors.NewTimeoutError(project.ID)
	} else {
		project.FailureReason = fmt.Sprintf("%s: %v", reason, cause)
	}

	project.Status = StatusFailed
	project.Analysis = nil
	project.CompletedAt = time.Now().UTC()
	if err := o.store.Update(project); err != nil {
		o.logger.Error("failed to persist failed project", "project", project.ID, "error", err)
		return
	}
	o.logger.Error("project failed", "project", project.ID, "reason", project.FailureReason, "error", cause)
}
