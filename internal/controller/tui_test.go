package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

func TestTUI_DisplaySources_Empty(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	if err := tui.DisplaySources(context.Background(), nil); err != nil {
		t.Fatalf("DisplaySources() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "shadeopt - GLSL shader optimizer") {
		t.Error("Output should contain header")
	}

	if !strings.Contains(output, "No shader sources found") {
		t.Errorf("Expected empty message, got: %s", output)
	}
}

func TestTUI_DisplaySources_SmallList(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	sources := []m.Source{
		{Origin: &m.File{FullPath: "main.frag", Size: 10}},
		{Origin: &m.File{FullPath: "helper.glsl", Size: 5}},
	}

	if err := tui.DisplaySources(context.Background(), sources); err != nil {
		t.Fatalf("DisplaySources() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Shader sources (2)", "main.frag", "helper.glsl", "TOTAL FILES 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got: %s", want, output)
		}
	}
}

func TestTUI_DisplaySummary_ViewMode(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)
	ctx := context.Background()

	if err := tui.Start(ctx, WithViewMode()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	reports := []m.Report{
		{Source: "a.frag", Stats: m.Stats{InitialSize: 100, OptimizedSize: 90, Boost: 10}},
		{Source: "b.frag", Error: "boom"},
	}

	err := tui.DisplaySummary(ctx, m.Summary{Files: 2, Failed: 1, InitialSize: 100, OptimizedSize: 90, Boost: 10}, reports)
	if err != nil {
		t.Fatalf("DisplaySummary() error = %v", err)
	}

	tui.Wait(ctx)
	tui.Close(ctx)

	output := buf.String()
	for _, want := range []string{"Optimization report", "a.frag", "10.00 %", "b.frag", "failed", "1 of 2 file(s) failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got: %s", want, output)
		}
	}
}

func TestTUI_DisplayDiff(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	diff := "--- a.frag\n+++ a.frag (optimized)\n@@ -1,2 +1 @@\n-int a;\n-int b;\n+ int a, b;\n"

	if err := tui.DisplayDiff(context.Background(), "a.frag", diff); err != nil {
		t.Fatalf("DisplayDiff() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Diff a.frag", "@@ -1,2 +1 @@", "-int a;", "+ int a, b;"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got: %s", want, output)
		}
	}
}

func TestTUI_DisplayDiff_NoChanges(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	if err := tui.DisplayDiff(context.Background(), "a.frag", ""); err != nil {
		t.Fatalf("DisplayDiff() error = %v", err)
	}

	if !strings.Contains(buf.String(), "No changes") {
		t.Errorf("Expected no changes message, got: %s", buf.String())
	}
}

func TestTUI_RunEventsWithoutProgram(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)
	ctx := context.Background()

	// no program started: progress events are dropped
	tui.DisplayConcurrencyInfo(ctx, 2, 1)
	tui.DisplayStartingFile(ctx, m.Source{Origin: &m.File{FullPath: "a.frag"}}, 0)
	tui.DisplayCompletedFile(ctx, m.Report{Source: "a.frag"})
	tui.Wait(ctx)
	tui.Close(ctx)

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestTUI_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	tui := NewTUI(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tui.Start(ctx, WithRunMode(1)); err == nil {
		t.Error("Start() should fail on a cancelled context")
	}

	if err := tui.DisplayDiff(ctx, "a.frag", "x"); err == nil {
		t.Error("DisplayDiff() should fail on a cancelled context")
	}
}

func TestRunModel_Progress(t *testing.T) {
	var model tea.Model = newRunModel(2)

	model, _ = model.Update(concurrencyMsg{threads: 2, files: 2})
	model, _ = model.Update(startedMsg{workerID: 0, path: "a.frag"})
	model, _ = model.Update(startedMsg{workerID: 1, path: "b.frag"})

	view := model.View()
	if !strings.Contains(view, "Optimizing 2 shader(s) with 2 worker(s)") {
		t.Errorf("View should show concurrency, got: %s", view)
	}

	if !strings.Contains(view, "[0] a.frag") || !strings.Contains(view, "[1] b.frag") {
		t.Errorf("View should list active workers, got: %s", view)
	}

	model, _ = model.Update(completedMsg{report: m.Report{Source: "a.frag", Stats: m.Stats{InitialSize: 10, OptimizedSize: 8, Boost: 20}}})
	model, _ = model.Update(completedMsg{report: m.Report{Source: "b.frag", Error: "boom"}})

	rm := model.(runModel)
	if rm.done != 2 || rm.failed != 1 {
		t.Errorf("done = %d, failed = %d, want 2 and 1", rm.done, rm.failed)
	}

	if len(rm.active) != 0 {
		t.Errorf("active workers = %v, want none", rm.active)
	}

	if rm.percent() != 1 {
		t.Errorf("percent() = %v, want 1", rm.percent())
	}

	view = rm.View()
	for _, want := range []string{"2/2", "(1 failed)", "a.frag 10 -> 8 bytes (20.00 %)", "b.frag: boom"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q, got: %s", want, view)
		}
	}
}

func TestRunModel_RecentIsBounded(t *testing.T) {
	var model tea.Model = newRunModel(maxRecent + 3)

	for i := range maxRecent + 3 {
		model, _ = model.Update(completedMsg{report: m.Report{Source: m.Path(fmt.Sprintf("f%d.frag", i))}})
	}

	rm := model.(runModel)
	if len(rm.recent) != maxRecent {
		t.Fatalf("len(recent) = %d, want %d", len(rm.recent), maxRecent)
	}

	if !strings.Contains(rm.recent[0], "f3.frag") {
		t.Errorf("oldest kept line = %q, want f3.frag", rm.recent[0])
	}
}

func TestRunModel_SummaryQuits(t *testing.T) {
	model := newRunModel(1)

	updated, cmd := model.Update(summaryMsg{
		summary: m.Summary{Files: 1, InitialSize: 10, OptimizedSize: 5, Boost: 50},
		reports: []m.Report{{Source: "a.frag", Stats: m.Stats{InitialSize: 10, OptimizedSize: 5, Boost: 50}}},
	})

	if cmd == nil {
		t.Fatal("summary should return a quit command")
	}

	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}

	view := updated.View()
	if !strings.Contains(view, "a.frag") || !strings.Contains(view, "50.00 %") {
		t.Errorf("final view should hold the summary table, got: %s", view)
	}

	if strings.Contains(view, "ctrl+c") {
		t.Errorf("final view should drop the key hint, got: %s", view)
	}
}

func TestRunModel_CtrlCInterrupts(t *testing.T) {
	model := newRunModel(1)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}

	if _, ok := cmd().(tea.InterruptMsg); !ok {
		t.Errorf("cmd() = %T, want tea.InterruptMsg", cmd())
	}
}

func TestRunModel_WindowResizeShrinksBar(t *testing.T) {
	model := newRunModel(1)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	if got := updated.(runModel).bar.Width; got != 16 {
		t.Errorf("bar width = %d, want 16", got)
	}

	updated, _ = model.Update(tea.WindowSizeMsg{Width: 200, Height: 10})
	if got := updated.(runModel).bar.Width; got != progressWidth {
		t.Errorf("bar width = %d, want %d", got, progressWidth)
	}
}

func testLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}

	return lines
}

func TestPagerModel_Pagination(t *testing.T) {
	model := newPagerModel("Title", testLines(30), nil)

	if model.needsPagination() {
		t.Error("unknown height should not paginate")
	}

	model.height = 22
	if got := model.itemsPerPage(); got != 10 {
		t.Errorf("itemsPerPage() = %d, want 10", got)
	}

	if !model.needsPagination() {
		t.Error("30 lines in 10 rows should paginate")
	}

	if got := model.maxOffset(); got != 20 {
		t.Errorf("maxOffset() = %d, want 20", got)
	}

	view := model.View()
	if !strings.Contains(view, "line 9") || strings.Contains(view, "line 10") {
		t.Errorf("first page should end at line 9, got: %s", view)
	}

	if !strings.Contains(view, "Lines 1-10 of 30") {
		t.Errorf("View should show the position, got: %s", view)
	}
}

func TestPagerModel_FooterReservesRows(t *testing.T) {
	model := newPagerModel("Title", testLines(5), []string{"one", "two"})
	model.height = 20

	if got := model.itemsPerPage(); got != 6 {
		t.Errorf("itemsPerPage() = %d, want 6", got)
	}

	model.height = 5
	if got := model.itemsPerPage(); got != 1 {
		t.Errorf("itemsPerPage() = %d, want 1", got)
	}
}

func TestPagerModel_Navigation(t *testing.T) {
	var model tea.Model = pagerModel{title: "Title", lines: testLines(30), height: 22}

	press := func(key string) {
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	}

	offset := func() int { return model.(pagerModel).offset }

	press("j")
	if offset() != 1 {
		t.Errorf("after j offset = %d, want 1", offset())
	}

	press("k")
	press("k")
	if offset() != 0 {
		t.Errorf("offset should not go below 0, got %d", offset())
	}

	press("d")
	if offset() != 10 {
		t.Errorf("after d offset = %d, want 10", offset())
	}

	press("d")
	press("d")
	if offset() != 20 {
		t.Errorf("offset should clamp to 20, got %d", offset())
	}

	press("u")
	if offset() != 10 {
		t.Errorf("after u offset = %d, want 10", offset())
	}

	press("G")
	if offset() != 20 {
		t.Errorf("after G offset = %d, want 20", offset())
	}

	press("g")
	if offset() != 0 {
		t.Errorf("after g offset = %d, want 0", offset())
	}

	var cmd tea.Cmd

	model, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || !model.(pagerModel).quitting {
		t.Error("q should quit")
	}
}

func TestPagerModel_EscQuits(t *testing.T) {
	model := newPagerModel("Title", testLines(3), nil)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || !updated.(pagerModel).quitting {
		t.Error("esc should quit")
	}
}

func TestPagerModel_ResizeClampsOffset(t *testing.T) {
	var model tea.Model = pagerModel{title: "Title", lines: testLines(30), height: 22, offset: 20}

	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if got := model.(pagerModel).offset; got != 2 {
		t.Errorf("offset = %d, want 2", got)
	}
}

func TestColorDiff_KeepsText(t *testing.T) {
	lines := []string{"--- a", "+++ b", "@@ -1 +1 @@", "-x", "+y", " z"}

	colored := colorDiff(lines)
	for i, line := range lines {
		if !strings.Contains(colored[i], line) {
			t.Errorf("colored[%d] = %q, want it to contain %q", i, colored[i], line)
		}
	}
}

func TestSplitLines(t *testing.T) {
	if got := splitLines(""); got != nil {
		t.Errorf("splitLines(\"\") = %v, want nil", got)
	}

	if got := splitLines("a\nb\n\n"); len(got) != 2 {
		t.Errorf("splitLines() = %v, want 2 lines", got)
	}
}
