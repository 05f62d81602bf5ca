package controller

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartConfig(t *testing.T) {
	assert.Equal(t, StartConfig{mode: ModeRun}, newStartConfig(nil))
	assert.Equal(t, StartConfig{mode: ModeRun, total: 3}, newStartConfig([]StartOption{WithRunMode(3)}))
	assert.Equal(t, ModeList, newStartConfig([]StartOption{WithListMode()}).mode)
	assert.Equal(t, ModeView, newStartConfig([]StartOption{WithViewMode()}).mode)

	// Last option wins.
	cfg := newStartConfig([]StartOption{WithRunMode(5), WithViewMode()})
	assert.Equal(t, ModeView, cfg.mode)
	assert.Equal(t, 5, cfg.total)
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	_, isSimple := NewUI(cmd, false).(*SimpleUI)
	assert.True(t, isSimple)

	_, isTUI := NewUI(cmd, true).(*TUI)
	assert.True(t, isTUI)
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.False(t, IsTTY(f))
}
