package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shadeopt.dev/pkg/shadeopt/internal/adapter"
	"shadeopt.dev/pkg/shadeopt/internal/domain"
	"shadeopt.dev/pkg/shadeopt/internal/domain/stages"
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

func TestRunCmd_Defaults(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
			return len(args.Paths) == 0 &&
				args.Threads == defaultRunParallel &&
				args.OutDir == m.Path(defaultOutDir) &&
				args.Reports == m.Path(defaultReportsDir) &&
				assert.ObjectsAreEqual(adapter.DefaultExtensions, args.Extensions) &&
				len(args.Exclude) == 0 &&
				args.Options.Stages.UnrollMode == stages.UnrollLiteral
		})).
		Return(nil)

	_, _, err := executeCmd(t, newRunCmd(), "run")
	require.NoError(t, err)
}

func TestRunCmd_ParallelAndOutDir(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
			return args.Threads == 4 && args.OutDir == "dist/shaders" && args.Reports == "out/reports"
		})).
		Return(nil)

	_, _, err := executeCmd(t, newRunCmd(), "run", "-p", "4", "--out-dir", "dist/shaders", "-r", "out/reports", "./...")
	require.NoError(t, err)
}

func TestRunCmd_MultiplePaths(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
			return len(args.Paths) == 3 &&
				args.Paths[0] == m.Path("./fx/...") &&
				args.Paths[1] == m.Path("./post") &&
				args.Paths[2] == m.Path("./main.frag")
		})).
		Return(nil)

	_, _, err := executeCmd(t, newRunCmd(), "run", "./fx/...", "./post", "./main.frag")
	require.NoError(t, err)
}

func TestRunCmd_WithExcludePatternsAndExtensions(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
			return assert.ObjectsAreEqual([]string{"^generated_", `_test\.frag$`}, args.Exclude) &&
				assert.ObjectsAreEqual([]string{".frag", ".vert"}, args.Extensions)
		})).
		Return(nil)

	_, _, err := executeCmd(t, newRunCmd(), "run", "-x", "^generated_", "-x", `_test\.frag$`, "--ext", ".frag,.vert", "./...")
	require.NoError(t, err)
}

func TestRunCmd_OptimizerFlags(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
			return args.Options.Stages.UnrollMode == stages.UnrollTripCount &&
				args.Options.Stages.InlineThreshold == 20
		})).
		Return(nil)

	_, _, err := executeCmd(t, newRunCmd(), "run", "--unroll-mode", "trip-count", "--inline-threshold", "20")
	require.NoError(t, err)
}

func TestRunCmd_PropagatesFailure(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().Run(mock.Anything, mock.Anything).Return(domain.ErrNoSources)

	_, _, err := executeCmd(t, newRunCmd(), "run", "./empty/...")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoSources))
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()

	assert.Equal(t, "run [paths...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, runLongDescription, cmd.Long)

	parallelFlag := cmd.Flags().Lookup(runParallelFlagName)
	require.NotNil(t, parallelFlag)
	assert.Equal(t, "p", parallelFlag.Shorthand)
	assert.NotNil(t, cmd.Flags().Lookup(runOutDirFlagName))
	assert.NotNil(t, cmd.Flags().Lookup(unrollModeFlagName))
}

func TestRunCmd_Incremental(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
			return args.Incremental
		})).
		Return(nil)

	_, _, err := executeCmd(t, newRunCmd(), "run", "--incremental")
	require.NoError(t, err)
}

func TestRunCmd_Shard(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.EXPECT().
		Run(mock.Anything, mock.MatchedBy(func(args domain.RunArgs) bool {
			return args.ShardIndex == 2 && args.ShardCount == 3
		})).
		Return(nil)

	_, _, err := executeCmd(t, newRunCmd(), "run", "--shard", "2/3")
	require.NoError(t, err)
}

func TestRunCmd_InvalidShard(t *testing.T) {
	withMockWorkflow(t)

	_, _, err := executeCmd(t, newRunCmd(), "run", "-s", "3/3")
	require.Error(t, err)
}

func TestParseShardFlag(t *testing.T) {
	tests := []struct {
		shard     string
		wantIndex int
		wantTotal int
		wantErr   bool
	}{
		{shard: "", wantIndex: 0, wantTotal: 1},
		{shard: "0/3", wantIndex: 0, wantTotal: 3},
		{shard: "2/3", wantIndex: 2, wantTotal: 3},
		{shard: "3/3", wantErr: true},
		{shard: "-1/3", wantErr: true},
		{shard: "1/0", wantErr: true},
		{shard: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.shard, func(t *testing.T) {
			index, total, err := parseShardFlag(tt.shard)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, index)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}
