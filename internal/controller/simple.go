package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

const (
	statusOK     = "ok"
	statusFailed = "failed"
	hashPrefix   = 12
)

var (
	okColor     = color.New(color.FgGreen)
	failedColor = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.Faint)
)

// SimpleUI implements UI by printing to the cobra command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait returns immediately; SimpleUI never blocks.
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplaySources prints the discovered shader files as a table.
func (s *SimpleUI) DisplaySources(ctx context.Context, sources []m.Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(sources) == 0 {
		s.printf("No shader sources found\n")
		return nil
	}

	s.printf("\n%s", renderSourcesTable(sources))

	return nil
}

func renderSourcesTable(sources []m.Source) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Bytes", "Hash"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	var totalBytes int64

	for _, source := range sources {
		if source.Origin == nil {
			continue
		}

		table.Append([]string{
			string(source.Origin.FullPath),
			strconv.FormatInt(source.Origin.Size, 10),
			shortHash(source.Origin.Hash),
		})

		totalBytes += source.Origin.Size
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(sources)),
		strconv.FormatInt(totalBytes, 10),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayConcurrencyInfo shows concurrency settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads int, files int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Optimizing %d shader(s) with %d worker(s)\n", files, threads)
}

// DisplayStartingFile announces a file picked up by a worker.
func (s *SimpleUI) DisplayStartingFile(ctx context.Context, source m.Source, workerID int) {
	if ctx.Err() != nil || source.Origin == nil {
		return
	}

	s.printf("%s [%d] %s\n", dimColor.Sprint("start"), workerID, source.Origin.FullPath)
}

// DisplayCompletedFile prints one status line per file.
func (s *SimpleUI) DisplayCompletedFile(ctx context.Context, report m.Report) {
	if ctx.Err() != nil {
		return
	}

	if report.Failed() {
		s.printf("%s %s: %s\n", failedColor.Sprint(statusFailed), report.Source, report.Error)
		return
	}

	s.printf("%s %s: %d -> %d bytes (%.2f %%)\n",
		okColor.Sprint(statusOK), report.Source, report.Stats.InitialSize, report.Stats.OptimizedSize, report.Stats.Boost)
}

// DisplaySummary prints the per-file table and the batch totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(summary, reports))

	if summary.Failed > 0 {
		s.printf("%s\n", failedColor.Sprintf("%d of %d file(s) failed", summary.Failed, summary.Files))
	}

	return nil
}

func renderSummaryTable(summary m.Summary, reports []m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Initial", "Optimized", "Boost", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})

	for _, report := range reports {
		if report.Failed() {
			table.Append([]string{string(report.Source), "-", "-", "-", statusFailed})
			continue
		}

		table.Append([]string{
			string(report.Source),
			strconv.Itoa(report.Stats.InitialSize),
			strconv.Itoa(report.Stats.OptimizedSize),
			formatBoost(report.Stats.Boost),
			statusOK,
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", summary.Files),
		strconv.Itoa(summary.InitialSize),
		strconv.Itoa(summary.OptimizedSize),
		formatBoost(summary.Boost),
		fmt.Sprintf("%d failed", summary.Failed),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayDiff prints a unified diff.
func (s *SimpleUI) DisplayDiff(ctx context.Context, path m.Path, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if diff == "" {
		s.printf("No changes for %s\n", path)
		return nil
	}

	s.printf("%s", diff)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func formatBoost(boost float64) string {
	return fmt.Sprintf("%.2f %%", boost)
}

func shortHash(hash string) string {
	if len(hash) <= hashPrefix {
		return hash
	}

	return hash[:hashPrefix]
}
