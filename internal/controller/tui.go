package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

const (
	defaultPageSize = 10
	// header box, title, pagination footer and margins
	reservedLines = 12
	maxRecent     = 5
	progressWidth = 48
)

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2).
			Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Faint(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// TUIOption configures a TUI.
type TUIOption func(*TUI)

// WithInterrupt registers the function called when the user presses ctrl+c
// while a batch is running.
func WithInterrupt(cancel context.CancelFunc) TUIOption {
	return func(t *TUI) {
		t.interrupt = cancel
	}
}

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output    io.Writer
	interrupt context.CancelFunc

	mu      sync.Mutex
	mode    StartMode
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer, options ...TUIOption) *TUI {
	t := &TUI{output: output}
	for _, option := range options {
		option(t)
	}

	return t
}

// Start launches the progress screen in run mode. Other modes render lazily.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = cfg.mode

	if cfg.mode != ModeRun {
		return nil
	}

	program := tea.NewProgram(
		newRunModel(cfg.total),
		tea.WithOutput(t.output),
		tea.WithContext(ctx),
	)

	t.program = program
	t.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			if errors.Is(err, tea.ErrInterrupted) && t.interrupt != nil {
				t.interrupt()
				return
			}

			if !errors.Is(err, tea.ErrProgramKilled) {
				slog.Error("TUI program failed", "error", err)
			}
		}
	}(t.done)

	return nil
}

// Close stops the progress screen if it is still running.
func (t *TUI) Close(_ context.Context) {
	program, done := t.running()
	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the progress screen exits or ctx is done.
func (t *TUI) Wait(ctx context.Context) {
	_, done := t.running()
	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (t *TUI) running() (*tea.Program, chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program, t.done
}

func (t *TUI) send(msg tea.Msg) {
	if program, _ := t.running(); program != nil {
		program.Send(msg)
	}
}

// DisplaySources lists the discovered shader files.
func (t *TUI) DisplaySources(ctx context.Context, sources []m.Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(sources) == 0 {
		return t.page(newPagerModel("Shader sources", nil, []string{"No shader sources found"}))
	}

	lines := splitLines(renderSourcesTable(sources))

	return t.page(newPagerModel(fmt.Sprintf("Shader sources (%d)", len(sources)), lines, nil))
}

// DisplayConcurrencyInfo shows concurrency settings.
func (t *TUI) DisplayConcurrencyInfo(_ context.Context, threads int, files int) {
	t.send(concurrencyMsg{threads: threads, files: files})
}

// DisplayStartingFile marks a worker as busy with source.
func (t *TUI) DisplayStartingFile(_ context.Context, source m.Source, workerID int) {
	if source.Origin == nil {
		return
	}

	t.send(startedMsg{workerID: workerID, path: source.Origin.FullPath})
}

// DisplayCompletedFile advances the progress bar.
func (t *TUI) DisplayCompletedFile(_ context.Context, report m.Report) {
	t.send(completedMsg{report: report})
}

// DisplaySummary ends the progress screen with the summary table in run mode,
// and pages it otherwise.
func (t *TUI) DisplaySummary(ctx context.Context, summary m.Summary, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if program, _ := t.running(); program != nil {
		program.Send(summaryMsg{summary: summary, reports: reports})
		return nil
	}

	lines := splitLines(renderSummaryTable(summary, reports))

	var footer []string
	if summary.Failed > 0 {
		footer = append(footer, failedStyle.Render(fmt.Sprintf("%d of %d file(s) failed", summary.Failed, summary.Files)))
	}

	return t.page(newPagerModel("Optimization report", lines, footer))
}

// DisplayDiff pages a colored unified diff.
func (t *TUI) DisplayDiff(ctx context.Context, path m.Path, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := fmt.Sprintf("Diff %s", path)

	if diff == "" {
		return t.page(newPagerModel(title, nil, []string{"No changes"}))
	}

	return t.page(newPagerModel(title, colorDiff(splitLines(diff)), nil))
}

// page prints short content directly and runs a scrollable pager otherwise.
func (t *TUI) page(model pagerModel) error {
	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func renderBanner() string {
	return bannerStyle.Render("shadeopt - GLSL shader optimizer") + "\n\n"
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

func colorDiff(lines []string) []string {
	colored := make([]string, len(lines))

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			colored[i] = titleStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			colored[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			colored[i] = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			colored[i] = removedStyle.Render(line)
		default:
			colored[i] = line
		}
	}

	return colored
}

type (
	concurrencyMsg struct {
		threads int
		files   int
	}
	startedMsg struct {
		workerID int
		path     m.Path
	}
	completedMsg struct {
		report m.Report
	}
	summaryMsg struct {
		summary m.Summary
		reports []m.Report
	}
)

// runModel renders batch progress: a bar, the busy workers and the latest results.
type runModel struct {
	total    int
	threads  int
	done     int
	failed   int
	active   map[int]m.Path
	recent   []string
	bar      progress.Model
	summary  string
	finished bool
}

func newRunModel(total int) runModel {
	return runModel{
		total:  total,
		active: make(map[int]m.Path),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > progressWidth {
			width = progressWidth
		}

		if width > 0 {
			rm.bar.Width = width
		}

		return rm, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return rm, tea.Interrupt
		}

		return rm, nil

	case concurrencyMsg:
		rm.threads = msg.threads
		rm.total = msg.files

		return rm, nil

	case startedMsg:
		rm.active = cloneActive(rm.active)
		rm.active[msg.workerID] = msg.path

		return rm, nil

	case completedMsg:
		return rm.complete(msg.report), nil

	case summaryMsg:
		rm.summary = renderSummaryTable(msg.summary, msg.reports)
		rm.finished = true

		return rm, tea.Quit
	}

	return rm, nil
}

func (rm runModel) complete(report m.Report) runModel {
	rm.done++

	rm.active = cloneActive(rm.active)
	for id, path := range rm.active {
		if path == report.Source {
			delete(rm.active, id)
			break
		}
	}

	line := fmt.Sprintf("%s %s %d -> %d bytes (%.2f %%)",
		okStyle.Render(statusOK), report.Source, report.Stats.InitialSize, report.Stats.OptimizedSize, report.Stats.Boost)

	if report.Failed() {
		rm.failed++
		line = fmt.Sprintf("%s %s: %s", failedStyle.Render(statusFailed), report.Source, report.Error)
	}

	rm.recent = append(append([]string(nil), rm.recent...), line)
	if len(rm.recent) > maxRecent {
		rm.recent = rm.recent[len(rm.recent)-maxRecent:]
	}

	return rm
}

// cloneActive keeps value-receiver models from sharing the map.
func cloneActive(active map[int]m.Path) map[int]m.Path {
	clone := make(map[int]m.Path, len(active)+1)
	for id, path := range active {
		clone[id] = path
	}

	return clone
}

func (rm runModel) percent() float64 {
	if rm.total == 0 {
		return 0
	}

	return float64(rm.done) / float64(rm.total)
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(renderBanner())

	if rm.finished {
		b.WriteString(rm.summary)
		return b.String()
	}

	fmt.Fprintf(&b, "  Optimizing %d shader(s) with %d worker(s)\n\n", rm.total, rm.threads)
	fmt.Fprintf(&b, "  %s %d/%d", rm.bar.ViewAs(rm.percent()), rm.done, rm.total)

	if rm.failed > 0 {
		fmt.Fprintf(&b, " %s", failedStyle.Render(fmt.Sprintf("(%d failed)", rm.failed)))
	}

	b.WriteString("\n\n")

	ids := make([]int, 0, len(rm.active))
	for id := range rm.active {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	for _, id := range ids {
		fmt.Fprintf(&b, "  [%d] %s\n", id, rm.active[id])
	}

	if len(rm.recent) > 0 {
		b.WriteString("\n")
	}

	for _, line := range rm.recent {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	b.WriteString("\n" + hintStyle.Render("  ctrl+c: abort") + "\n")

	return b.String()
}

// pagerModel shows a titled block of lines, scrolling when it exceeds the terminal height.
type pagerModel struct {
	title    string
	lines    []string
	footer   []string
	height   int
	width    int
	offset   int
	quitting bool
}

func newPagerModel(title string, lines []string, footer []string) pagerModel {
	return pagerModel{
		title:  title,
		lines:  lines,
		footer: footer,
	}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.height = msg.Height
		pm.width = msg.Width
		pm.offset = min(pm.offset, pm.maxOffset())

		return pm, nil

	case tea.KeyMsg:
		return pm.handleKeyPress(msg)
	}

	return pm, nil
}

//nolint:cyclop,exhaustive // Key handling requires multiple cases for UI navigation
func (pm pagerModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		pm.quitting = true
		return pm, tea.Quit
	default:
	}

	switch msg.String() {
	case "q":
		pm.quitting = true
		return pm, tea.Quit

	case "down", "j":
		pm.offset = min(pm.offset+1, pm.maxOffset())

	case "up", "k":
		pm.offset = max(pm.offset-1, 0)

	case "g", "home":
		pm.offset = 0

	case "G", "end":
		pm.offset = pm.maxOffset()

	case "d", "pgdown":
		pm.offset = min(pm.offset+pm.itemsPerPage(), pm.maxOffset())

	case "u", "pgup":
		pm.offset = max(pm.offset-pm.itemsPerPage(), 0)
	}

	return pm, nil
}

// itemsPerPage calculates how many lines fit on screen.
func (pm pagerModel) itemsPerPage() int {
	if pm.height == 0 {
		return defaultPageSize
	}

	available := pm.height - reservedLines - len(pm.footer)
	if available < 1 {
		return 1
	}

	return available
}

func (pm pagerModel) maxOffset() int {
	return max(len(pm.lines)-pm.itemsPerPage(), 0)
}

// needsPagination returns true if the content is too large to fit on screen.
func (pm pagerModel) needsPagination() bool {
	if len(pm.lines) == 0 || pm.height == 0 {
		return false
	}

	return len(pm.lines) > pm.itemsPerPage()
}

func (pm pagerModel) View() string {
	var b strings.Builder

	b.WriteString(renderBanner())
	b.WriteString("  " + titleStyle.Render(pm.title) + "\n\n")

	paginate := pm.needsPagination()

	start, end := 0, len(pm.lines)
	if paginate {
		start = min(pm.offset, pm.maxOffset())
		end = min(start+pm.itemsPerPage(), len(pm.lines))
	}

	for _, line := range pm.lines[start:end] {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	if len(pm.footer) > 0 {
		b.WriteString("\n")
	}

	for _, line := range pm.footer {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	if paginate {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Lines %d-%d of %d\n", start+1, end, len(pm.lines))
		b.WriteString(hintStyle.Render("  ↑/k: up | ↓/j: down | d/u: page | g: top | G: bottom | q: quit") + "\n")
	}

	return b.String()
}
