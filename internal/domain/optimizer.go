package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shadeopt.dev/pkg/shadeopt/internal/domain/stages"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// DefaultMaxInputSize is the largest shader accepted by default (8 MiB).
const DefaultMaxInputSize = 8 << 20

// ErrInputTooLarge is returned for inputs above Options.MaxInputSize.
var ErrInputTooLarge = errors.New("input too large")

// Options configures an Optimizer.
type Options struct {
	Stages       stages.Config
	MaxInputSize int           // 0 disables the limit
	Timeout      time.Duration // 0 disables the deadline
}

// DefaultOptions returns the baseline optimizer options.
func DefaultOptions() Options {
	return Options{
		Stages:       stages.DefaultConfig(),
		MaxInputSize: DefaultMaxInputSize,
	}
}

// Optimizer runs the rewrite pipeline over one shader buffer.
type Optimizer interface {
	Optimize(ctx context.Context, src []byte) (m.Result, error)
}

// OptimizerFactory builds an Optimizer for a set of options.
type OptimizerFactory func(opts Options) Optimizer

type optimizer struct {
	pipeline     []stages.Stage
	maxInputSize int
	timeout      time.Duration
}

// NewOptimizer constructs an Optimizer running the stages configured by opts.
func NewOptimizer(opts Options) Optimizer {
	return &optimizer{
		pipeline:     stages.Pipeline(opts.Stages),
		maxInputSize: opts.MaxInputSize,
		timeout:      opts.Timeout,
	}
}

// Optimize applies every stage in order. The context is checked before each
// stage; a stage itself always runs to completion.
func (o *optimizer) Optimize(ctx context.Context, src []byte) (m.Result, error) {
	start := time.Now()

	if o.maxInputSize > 0 && len(src) > o.maxInputSize {
		err := fmt.Errorf("%d bytes exceeds the %d byte limit: %w", len(src), o.maxInputSize, ErrInputTooLarge)
		slog.Error("Rejected shader input", "size", len(src), "limit", o.maxInputSize)

		return m.Result{}, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	code := string(src)
	stageStats := make([]m.StageStat, 0, len(o.pipeline))

	for _, stage := range o.pipeline {
		if err := ctx.Err(); err != nil {
			slog.Error("Optimization aborted", "stage", stage.Name(), "error", err)
			return m.Result{}, fmt.Errorf("before stage %s: %w", stage.Name(), err)
		}

		stageStart := time.Now()
		out := stage.Apply(code)

		stat := m.StageStat{
			Name:    stage.Name(),
			InSize:  len(code),
			OutSize: len(out),
			Elapsed: time.Since(stageStart),
		}
		stageStats = append(stageStats, stat)

		slog.Debug("Applied stage", "stage", stat.Name, "in", stat.InSize, "out", stat.OutSize, "elapsed", stat.Elapsed)

		code = out
	}

	return m.Result{
		Code: code,
		Stats: m.Stats{
			InitialSize:   len(src),
			OptimizedSize: len(code),
			Boost:         BoostPercentage(len(src), len(code)),
			Elapsed:       time.Since(start),
		},
		Stages: stageStats,
	}, nil
}
