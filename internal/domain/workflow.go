// Package domain holds the shader optimization pipeline and the workflows built on it.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"shadeopt.dev/pkg/shadeopt/internal/adapter"
	"shadeopt.dev/pkg/shadeopt/internal/controller"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// ErrNoSources is returned when the path patterns match no shader file.
var ErrNoSources = errors.New("no shader sources found")

const outputFileMode = 0o644

// OptimizeArgs contains the arguments for optimizing a single shader.
type OptimizeArgs struct {
	Input   m.Path
	Output  m.Path // empty: the caller prints Result.Code
	Options Options
}

// RunArgs contains the arguments for a batch run.
type RunArgs struct {
	Paths      []m.Path
	Exclude    []string
	Extensions []string
	OutDir     m.Path // empty: nothing is written, only reported
	Reports    m.Path // empty: no report is saved
	Threads    int
	// Incremental reuses the saved report of every file whose hash and output
	// are unchanged since the last run. Option changes are not detected.
	Incremental bool
	// ShardIndex and ShardCount split the sorted sources round-robin across
	// independent runs. Each shard saves its reports under Reports/shard_<index>.
	ShardIndex int
	ShardCount int
	Options    Options
}

// ListArgs contains the arguments for listing shader sources.
type ListArgs struct {
	Paths      []m.Path
	Exclude    []string
	Extensions []string
}

// DiffArgs contains the arguments for diffing a shader against its optimized form.
type DiffArgs struct {
	Input   m.Path
	Options Options
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Reports m.Path
}

// MergeArgs contains the arguments for merging sharded reports.
type MergeArgs struct {
	Reports m.Path
}

// Workflow defines the user-facing operations of the optimizer.
type Workflow interface {
	Optimize(ctx context.Context, args OptimizeArgs) (m.Result, error)
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	Diff(ctx context.Context, args DiffArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	newOptimizer OptimizerFactory
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
// A nil factory selects NewOptimizer.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	factory OptimizerFactory,
) Workflow {
	if factory == nil {
		factory = NewOptimizer
	}

	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		newOptimizer:    factory,
	}
}

func (w *workflow) Optimize(ctx context.Context, args OptimizeArgs) (m.Result, error) {
	content, err := w.ReadFile(args.Input)
	if err != nil {
		slog.Error("Failed to read shader", "path", args.Input, "error", err)
		return m.Result{}, fmt.Errorf("read %s: %w", args.Input, err)
	}

	result, err := w.newOptimizer(args.Options).Optimize(ctx, content)
	if err != nil {
		slog.Error("Failed to optimize shader", "path", args.Input, "error", err)
		return m.Result{}, fmt.Errorf("optimize %s: %w", args.Input, err)
	}

	slog.Info("Optimized shader", "path", args.Input, "initial", result.Stats.InitialSize,
		"optimized", result.Stats.OptimizedSize, "boost", result.Stats.Boost)

	if args.Output == "" {
		return result, nil
	}

	if err := w.WriteFile(args.Output, []byte(result.Code), outputFileMode); err != nil {
		slog.Error("Failed to write optimized shader", "path", args.Output, "error", err)
		return m.Result{}, fmt.Errorf("write %s: %w", args.Output, err)
	}

	return result, nil
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	sources, err := w.Get(ctx, args.Paths, args.Extensions, args.Exclude)
	if err != nil {
		slog.Error("Failed to discover sources", "error", err)
		return fmt.Errorf("get sources: %w", err)
	}

	if len(sources) == 0 {
		return ErrNoSources
	}

	reportsDir := args.Reports

	if args.ShardCount > 1 {
		sources = shardSources(sources, args.ShardIndex, args.ShardCount)
		slog.Info("Running shard", "index", args.ShardIndex, "count", args.ShardCount, "files", len(sources))

		if reportsDir != "" {
			reportsDir = adapter.ShardDir(reportsDir, args.ShardIndex)
		}
	}

	if args.OutDir != "" {
		for i := range sources {
			sources[i].Output = w.JoinPath(string(args.OutDir), string(sources[i].Origin.ShortPath))
		}
	}

	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	var cached []m.Report
	if args.Incremental && reportsDir != "" {
		cached, sources = w.splitUnchanged(ctx, reportsDir, sources)
		slog.Info("Reusing unchanged shaders", "cached", len(cached), "pending", len(sources))
	}

	if err := w.Start(ctx, controller.WithRunMode(len(sources))); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	w.DisplayConcurrencyInfo(ctx, threads, len(sources))

	reports, err := w.optimizeAll(ctx, sources, w.newOptimizer(args.Options), threads)
	if err != nil {
		slog.Error("Batch run interrupted", "error", err)
		return fmt.Errorf("run: %w", err)
	}

	if len(cached) > 0 {
		reports = append(reports, cached...)
		sortReports(reports)
	}

	summary := Summarize(reports)

	if err := w.DisplaySummary(ctx, summary, reports); err != nil {
		slog.Error("Failed to display summary", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	if reportsDir != "" {
		if err := w.SaveReports(ctx, reportsDir, reports); err != nil {
			slog.Error("Failed to save reports", "error", err)
			return fmt.Errorf("save reports: %w", err)
		}
	}

	w.Wait(ctx)

	return failures(reports, summary)
}

// optimizeAll processes sources with at most threads concurrent workers.
// Per-file failures land in the reports; only cancellation stops the batch.
func (w *workflow) optimizeAll(ctx context.Context, sources []m.Source, optimizer Optimizer, threads int) ([]m.Report, error) {
	var (
		group   errgroup.Group
		mu      sync.Mutex
		reports = make([]m.Report, 0, len(sources))
		workers = make(chan int, threads)
	)

	group.SetLimit(threads)

	for id := range threads {
		workers <- id
	}

	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			workerID := <-workers
			defer func() { workers <- workerID }()

			report := w.optimizeSource(ctx, optimizer, source, workerID)

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortReports(reports)

	return reports, nil
}

// shardSources keeps the sources at positions congruent to index modulo count.
func shardSources(sources []m.Source, index, count int) []m.Source {
	shard := make([]m.Source, 0, len(sources)/count+1)

	for i, source := range sources {
		if i%count == index {
			shard = append(shard, source)
		}
	}

	return shard
}

func sortReports(reports []m.Report) {
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Source < reports[j].Source
	})
}

// splitUnchanged separates sources whose last saved report still holds from
// the ones that need optimizing. Unreadable reports make every source pending.
func (w *workflow) splitUnchanged(ctx context.Context, reportsDir m.Path, sources []m.Source) ([]m.Report, []m.Source) {
	previous, err := w.LoadReports(ctx, reportsDir)
	if err != nil {
		if !errors.Is(err, adapter.ErrNoReports) {
			slog.Warn("Ignoring unreadable reports", "path", reportsDir, "error", err)
		}

		return nil, sources
	}

	bySource := make(map[m.Path]m.Report, len(previous))
	for _, report := range previous {
		bySource[report.Source] = report
	}

	var cached []m.Report

	pending := make([]m.Source, 0, len(sources))

	for _, source := range sources {
		if report, ok := bySource[source.Origin.FullPath]; ok && w.unchanged(report, source) {
			cached = append(cached, report)
			continue
		}

		pending = append(pending, source)
	}

	return cached, pending
}

func (w *workflow) unchanged(report m.Report, source m.Source) bool {
	if report.Failed() || report.Hash != source.Origin.Hash || report.Output != source.Output {
		return false
	}

	if source.Output == "" {
		return true
	}

	_, err := w.FileInfo(source.Output)

	return err == nil
}

func (w *workflow) optimizeSource(ctx context.Context, optimizer Optimizer, source m.Source, workerID int) m.Report {
	w.DisplayStartingFile(ctx, source, workerID)

	report := m.Report{
		Source: source.Origin.FullPath,
		Output: source.Output,
		Hash:   source.Origin.Hash,
	}

	defer func() { w.DisplayCompletedFile(ctx, report) }()

	content, err := w.ReadFile(source.Origin.FullPath)
	if err != nil {
		slog.Error("Failed to read shader", "path", source.Origin.FullPath, "error", err)
		report.Error = err.Error()

		return report
	}

	result, err := optimizer.Optimize(ctx, content)
	if err != nil {
		slog.Error("Failed to optimize shader", "path", source.Origin.FullPath, "error", err)
		report.Error = err.Error()

		return report
	}

	report.Stats = result.Stats
	report.Stages = result.Stages

	if source.Output == "" {
		return report
	}

	if err := w.WriteFile(source.Output, []byte(result.Code), outputFileMode); err != nil {
		slog.Error("Failed to write optimized shader", "path", source.Output, "error", err)
		report.Error = err.Error()
	}

	return report
}

func failures(reports []m.Report, summary m.Summary) error {
	if summary.Failed == 0 {
		return nil
	}

	errs := make([]error, 0, summary.Failed)

	for _, report := range reports {
		if report.Failed() {
			errs = append(errs, fmt.Errorf("%s: %s", report.Source, report.Error))
		}
	}

	return fmt.Errorf("%d of %d files failed: %w", summary.Failed, summary.Files, errors.Join(errs...))
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	sources, err := w.Get(ctx, args.Paths, args.Extensions, args.Exclude)
	if err != nil {
		slog.Error("Failed to discover sources", "error", err)
		return fmt.Errorf("get sources: %w", err)
	}

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	if err := w.DisplaySources(ctx, sources); err != nil {
		slog.Error("Failed to display sources", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) Diff(ctx context.Context, args DiffArgs) error {
	content, err := w.ReadFile(args.Input)
	if err != nil {
		slog.Error("Failed to read shader", "path", args.Input, "error", err)
		return fmt.Errorf("read %s: %w", args.Input, err)
	}

	result, err := w.newOptimizer(args.Options).Optimize(ctx, content)
	if err != nil {
		slog.Error("Failed to optimize shader", "path", args.Input, "error", err)
		return fmt.Errorf("optimize %s: %w", args.Input, err)
	}

	diff, err := UnifiedDiff(string(args.Input), string(content), result.Code)
	if err != nil {
		return err
	}

	return w.DisplayDiff(ctx, args.Input, diff)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.LoadReports(ctx, args.Reports)
	if err != nil {
		slog.Error("Failed to load reports", "path", args.Reports, "error", err)
		return fmt.Errorf("load reports: %w", err)
	}

	return w.showReports(ctx, reports)
}

// Merge combines the reports of every shard under args.Reports into a single
// report saved in args.Reports. A source seen in several shards keeps the entry
// of the last shard in name order.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	dirs, err := w.ShardDirs(ctx, args.Reports)
	if err != nil {
		slog.Error("Failed to list shards", "path", args.Reports, "error", err)
		return fmt.Errorf("list shards: %w", err)
	}

	if len(dirs) == 0 {
		return fmt.Errorf("%s: no shard reports: %w", args.Reports, adapter.ErrNoReports)
	}

	bySource := make(map[m.Path]m.Report)

	for _, dir := range dirs {
		reports, err := w.LoadReports(ctx, dir)
		if err != nil {
			slog.Error("Failed to load shard reports", "path", dir, "error", err)
			return fmt.Errorf("load %s: %w", dir, err)
		}

		for _, report := range reports {
			bySource[report.Source] = report
		}
	}

	merged := make([]m.Report, 0, len(bySource))
	for _, report := range bySource {
		merged = append(merged, report)
	}

	sortReports(merged)

	if err := w.SaveReports(ctx, args.Reports, merged); err != nil {
		slog.Error("Failed to save merged reports", "path", args.Reports, "error", err)
		return fmt.Errorf("save reports: %w", err)
	}

	slog.Info("Merged shard reports", "shards", len(dirs), "reports", len(merged))

	return w.showReports(ctx, merged)
}

func (w *workflow) showReports(ctx context.Context, reports []m.Report) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	if err := w.DisplaySummary(ctx, Summarize(reports), reports); err != nil {
		slog.Error("Failed to display summary", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}
