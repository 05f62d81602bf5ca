// Package controller provides the output adapters that render optimizer progress and results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeList
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	total int
}

// WithRunMode sets the UI to batch optimization mode over total files.
func WithRunMode(total int) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
		c.total = total
	}
}

// WithListMode sets the UI to source listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithViewMode sets the UI to saved report viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// UI renders workflow progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
//
//nolint:interfacebloat // One method per workflow event.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplaySources(ctx context.Context, sources []m.Source) error
	DisplayConcurrencyInfo(ctx context.Context, threads int, files int)
	DisplayStartingFile(ctx context.Context, source m.Source, workerID int)
	DisplayCompletedFile(ctx context.Context, report m.Report)
	DisplaySummary(ctx context.Context, summary m.Summary, reports []m.Report) error
	DisplayDiff(ctx context.Context, path m.Path, diff string) error
}

// NewUI returns the interactive TUI when attached to a terminal and SimpleUI otherwise.
// Options apply only to the TUI.
func NewUI(cmd *cobra.Command, isTTY bool, options ...TUIOption) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout(), options...)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
