package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shadeopt.dev/pkg/shadeopt/internal/domain"
	"shadeopt.dev/pkg/shadeopt/internal/domain/stages"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

var sampleResult = m.Result{
	Code: "float u_time = 0.0;\n",
	Stats: m.Stats{
		InitialSize:   21,
		OptimizedSize: 20,
		Boost:         4.76,
		Elapsed:       1500 * time.Millisecond,
	},
}

const sampleMetrics = "Initial shader code size: 21 bytes\n" +
	"Optimized shader code size: 20 bytes\n" +
	"Approximate percentage boost: 4.76 %\n" +
	"Optimization time: 1.50 seconds\n"

func TestOptimizeCmd_WritesFileAndPrintsMetrics(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Optimize(mock.Anything, mock.MatchedBy(func(args domain.OptimizeArgs) bool {
			return args.Input == "in.frag" && args.Output == "out.frag"
		})).
		Return(sampleResult, nil)

	stdout, stderr, err := executeCmd(t, newOptimizeCmd(), "optimize", "in.frag", "out.frag")
	require.NoError(t, err)

	assert.Equal(t, sampleMetrics, stdout)
	assert.Empty(t, stderr)
}

func TestOptimizeCmd_StdoutGetsCodeAndStderrGetsMetrics(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Optimize(mock.Anything, mock.MatchedBy(func(args domain.OptimizeArgs) bool {
			return args.Input == "in.frag" && args.Output == ""
		})).
		Return(sampleResult, nil)

	stdout, stderr, err := executeCmd(t, newOptimizeCmd(), "optimize", "in.frag")
	require.NoError(t, err)

	assert.Equal(t, sampleResult.Code, stdout)
	assert.Equal(t, sampleMetrics, stderr)
}

func TestOptimizeCmd_WorkflowError(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Optimize(mock.Anything, mock.Anything).
		Return(m.Result{}, errors.New("read missing.frag: no such file"))

	stdout, _, err := executeCmd(t, newOptimizeCmd(), "optimize", "missing.frag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.frag")
	assert.NotContains(t, stdout, "Initial shader code size")
}

func TestOptimizeCmd_ArgCount(t *testing.T) {
	withMockWorkflow(t)

	_, _, err := executeCmd(t, newOptimizeCmd(), "optimize")
	require.Error(t, err)

	_, _, err = executeCmd(t, newOptimizeCmd(), "optimize", "a", "b", "c")
	require.Error(t, err)
}

func TestOptimizeCmd_DefaultOptions(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Optimize(mock.Anything, mock.MatchedBy(func(args domain.OptimizeArgs) bool {
			opts := args.Options
			value, known := opts.Stages.Uniforms.Lookup("u_time")

			return opts.Stages.InlineThreshold == stages.DefaultInlineThreshold &&
				opts.Stages.UnrollThreshold == stages.DefaultUnrollThreshold &&
				opts.Stages.UnrollMode == stages.UnrollLiteral &&
				opts.Stages.MaxUnroll == stages.DefaultMaxUnroll &&
				!opts.Stages.KeepUnknownUniforms &&
				opts.Stages.TextureRewriter("texture(s, uv, 0.0)") == "texture(s, uv, 0.0)" &&
				known && value == "0.0" &&
				opts.MaxInputSize == domain.DefaultMaxInputSize &&
				opts.Timeout == 0
		})).
		Return(sampleResult, nil)

	_, _, err := executeCmd(t, newOptimizeCmd(), "optimize", "in.frag", "out.frag")
	require.NoError(t, err)
}

func TestOptimizeCmd_FlagsTuneOptions(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Optimize(mock.Anything, mock.MatchedBy(func(args domain.OptimizeArgs) bool {
			opts := args.Options
			scale, hasScale := opts.Stages.Uniforms.Lookup("u_scale")
			tint, hasTint := opts.Stages.Uniforms.Lookup("u_tint")
			_, hasTime := opts.Stages.Uniforms.Lookup("u_time")

			return opts.Stages.InlineThreshold == 10 &&
				opts.Stages.UnrollThreshold == 80 &&
				opts.Stages.UnrollMode == stages.UnrollTripCount &&
				opts.Stages.MaxUnroll == 4 &&
				opts.Stages.KeepUnknownUniforms &&
				opts.Stages.TextureRewriter("texture(s, uv, 0.0)") == "texture(s, uv)" &&
				hasScale && scale == "2.0" &&
				hasTint && tint == "vec3(1.0, 0.5, 0.0)" &&
				hasTime &&
				opts.MaxInputSize == 1024 &&
				opts.Timeout == 3*time.Second
		})).
		Return(sampleResult, nil)

	_, _, err := executeCmd(t, newOptimizeCmd(), "optimize", "in.frag", "out.frag",
		"--inline-threshold", "10",
		"--unroll-threshold", "80",
		"--unroll-mode", "trip-count",
		"--max-unroll", "4",
		"--keep-unknown-uniforms",
		"--drop-zero-bias",
		"--uniform", "u_scale=2.0",
		"--uniform", "u_tint=vec3(1.0, 0.5, 0.0)",
		"--max-input-size", "1024",
		"--stage-timeout", "3",
	)
	require.NoError(t, err)
}

func TestOptimizeCmd_EnvTunesOptions(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)
	t.Setenv("SHADEOPT_OPTIMIZE_INLINE_THRESHOLD", "7")

	mockWorkflow.EXPECT().
		Optimize(mock.Anything, mock.MatchedBy(func(args domain.OptimizeArgs) bool {
			return args.Options.Stages.InlineThreshold == 7
		})).
		Return(sampleResult, nil)

	_, _, err := executeCmd(t, newOptimizeCmd(), "optimize", "in.frag", "out.frag")
	require.NoError(t, err)
}

func TestOptimizeCmd_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown unroll mode", []string{"--unroll-mode", "always"}},
		{"uniform without value", []string{"--uniform", "u_scale"}},
		{"uniform with bad name", []string{"--uniform", "u-scale=1.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withMockWorkflow(t)

			args := append([]string{"optimize", "in.frag"}, tt.args...)
			_, _, err := executeCmd(t, newOptimizeCmd(), args...)
			require.Error(t, err)
		})
	}
}
