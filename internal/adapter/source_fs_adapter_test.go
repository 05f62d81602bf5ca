package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

func TestLocalSourceFSAdapter_Get(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "main.frag"), "void main() {}\n")
	writeTestFile(t, filepath.Join(root, "notes.txt"), "not a shader\n")
	writeTestFile(t, filepath.Join(root, "nested", "blur.glsl"), "void blur() {}\n")
	writeTestFile(t, filepath.Join(root, ".cache", "hidden.frag"), "void h() {}\n")
	writeTestFile(t, filepath.Join(root, "vendor", "lib.frag"), "void v() {}\n")

	adapter := NewLocalSourceFSAdapter()

	t.Run("directory is not walked recursively", func(t *testing.T) {
		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root)}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, []m.Path{"main.frag"}, shortPaths(sources))
	})

	t.Run("recursive pattern descends and skips hidden and vendor dirs", func(t *testing.T) {
		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root + "/...")}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, []m.Path{"main.frag", "nested/blur.glsl"}, shortPaths(sources))
	})

	t.Run("explicit file is taken as is", func(t *testing.T) {
		file := filepath.Join(root, "notes.txt")

		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(file)}, nil, nil)
		require.NoError(t, err)
		require.Len(t, sources, 1)

		assert.Equal(t, m.Path(file), sources[0].Origin.FullPath)
		assert.Equal(t, int64(len("not a shader\n")), sources[0].Origin.Size)
	})

	t.Run("custom extensions", func(t *testing.T) {
		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root + "/...")}, []string{".glsl"}, nil)
		require.NoError(t, err)

		assert.Equal(t, []m.Path{"nested/blur.glsl"}, shortPaths(sources))
	})

	t.Run("exclude matches relative path or base name", func(t *testing.T) {
		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root + "/...")}, nil, []string{"^main\\."})
		require.NoError(t, err)
		assert.Equal(t, []m.Path{"nested/blur.glsl"}, shortPaths(sources))

		sources, err = adapter.Get(context.Background(), []m.Path{m.Path(root + "/...")}, nil, []string{"^nested/"})
		require.NoError(t, err)
		assert.Equal(t, []m.Path{"main.frag"}, shortPaths(sources))
	})

	t.Run("overlapping patterns are deduplicated", func(t *testing.T) {
		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root), m.Path(root + "/...")}, nil, nil)
		require.NoError(t, err)

		assert.Len(t, sources, 2)
	})

	t.Run("sources carry a content hash", func(t *testing.T) {
		sources, err := adapter.Get(context.Background(), []m.Path{m.Path(root)}, nil, nil)
		require.NoError(t, err)
		require.Len(t, sources, 1)

		want := fmt.Sprintf("%x", sha256.Sum256([]byte("void main() {}\n")))
		assert.Equal(t, want, sources[0].Origin.Hash)
	})

	t.Run("invalid exclude pattern", func(t *testing.T) {
		_, err := adapter.Get(context.Background(), []m.Path{m.Path(root)}, nil, []string{"("})
		require.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := adapter.Get(context.Background(), []m.Path{m.Path(filepath.Join(root, "missing"))}, nil, nil)
		require.Error(t, err)
		assert.True(t, IsNotExist(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := adapter.Get(ctx, []m.Path{m.Path(root)}, nil, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern   string
		root      string
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"/...", ".", true},
		{"shaders/...", "shaders", true},
		{"shaders", "shaders", false},
		{"a.frag", "a.frag", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			root, recursive := splitPattern(tt.pattern)
			assert.Equal(t, filepath.FromSlash(tt.root), root)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "main.frag")
	content := "void main() {\n}\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestLocalSourceFSAdapter_WriteFileCreatesParents(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "out", "deep", "main.frag")
	require.NoError(t, adapter.WriteFile(m.Path(path), []byte("x"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))

	require.NoError(t, adapter.WriteFile(m.Path(path), []byte("y"), 0o644))

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "y", string(got))
}

func TestLocalSourceFSAdapter_HashFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "main.frag")
	content := []byte("void main() {}\n")
	writeTestBytes(t, path, content)

	hash, err := adapter.HashFile(m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%x", sha256.Sum256(content)), hash)

	_, err = adapter.HashFile(m.Path(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.frag")
	writeTestFile(t, path, "void main() {}\n")

	info, err := adapter.FileInfo(m.Path(path))
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	info, err = adapter.FileInfo(m.Path(root))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalSourceFSAdapter_PathHelpers(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	base := filepath.Join("root", "dir")
	target := filepath.Join(base, "sub", "file.frag")

	rel, err := adapter.RelPath(m.Path(base), m.Path(target))
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join("sub", "file.frag")), rel)

	assert.Equal(t, m.Path(filepath.Join("a", "b", "c.frag")), adapter.JoinPath("a", "b", "c.frag"))
}

func shortPaths(sources []m.Source) []m.Path {
	paths := make([]m.Path, 0, len(sources))
	for _, source := range sources {
		paths = append(paths, source.Origin.ShortPath)
	}

	return paths
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	require.NoError(t, os.WriteFile(path, contents, 0o644))
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}
