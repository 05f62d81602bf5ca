// Package adapter contains the infrastructure adapters used by the shadeopt domain layer.
package adapter

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// recursiveSuffix marks a path pattern that descends into subdirectories.
const recursiveSuffix = "/..."

// DefaultExtensions lists the file extensions treated as shader sources.
var DefaultExtensions = []string{".glsl", ".frag", ".vert", ".fs", ".vs", ".comp", ".geom", ".tesc", ".tese"}

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning shader trees, so the workflow can be tested without
// touching the disk.
type SourceFSAdapter interface {
	// Get resolves path patterns into shader sources sorted by path.
	// A pattern ending in "/..." is walked recursively; a directory is scanned
	// without descending; a file is taken as is.
	Get(ctx context.Context, paths []m.Path, extensions []string, exclude []string) ([]m.Source, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to path, creating missing parent directories.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// HashFile returns the SHA-256 fingerprint of the file at path.
	HashFile(path m.Path) (string, error)

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalSourceFSAdapter implements SourceFSAdapter on top of the local filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get implements SourceFSAdapter.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, paths []m.Path, extensions []string, exclude []string) ([]m.Source, error) {
	excludes, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	if len(paths) == 0 {
		paths = []m.Path{"." + recursiveSuffix}
	}

	seen := make(map[m.Path]struct{})

	var sources []m.Source

	collect := func(full, short string) error {
		if excluded(excludes, short) {
			return nil
		}

		if _, ok := seen[m.Path(full)]; ok {
			return nil
		}

		seen[m.Path(full)] = struct{}{}

		file, err := a.describe(full, short)
		if err != nil {
			return err
		}

		sources = append(sources, m.Source{Origin: file})

		return nil
	}

	for _, pattern := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, recursive := splitPattern(string(pattern))

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if err := collect(root, filepath.Base(root)); err != nil {
				return nil, err
			}

			continue
		}

		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if err := ctx.Err(); err != nil {
				return err
			}

			if entry.IsDir() {
				if path == root {
					return nil
				}

				if !recursive || skipDir(entry.Name()) {
					return filepath.SkipDir
				}

				return nil
			}

			if !hasExtension(path, extensions) {
				return nil
			}

			short, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			return collect(path, short)
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Origin.FullPath < sources[j].Origin.FullPath
	})

	return sources, nil
}

func (a *LocalSourceFSAdapter) describe(full, short string) (*m.File, error) {
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}

	hash, err := a.HashFile(m.Path(full))
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", full, err)
	}

	return &m.File{
		FullPath:  m.Path(full),
		ShortPath: m.Path(filepath.ToSlash(short)),
		Hash:      hash,
		Size:      info.Size(),
	}, nil
}

func splitPattern(pattern string) (string, bool) {
	pattern = filepath.ToSlash(pattern)

	if pattern == "..." {
		return ".", true
	}

	if root, ok := strings.CutSuffix(pattern, recursiveSuffix); ok {
		if root == "" {
			root = "."
		}

		return filepath.FromSlash(root), true
	}

	return filepath.FromSlash(pattern), false
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules"
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	for _, want := range extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}

	return false
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

// excluded matches against the relative path and the base name.
func excluded(patterns []*regexp.Regexp, short string) bool {
	short = filepath.ToSlash(short)
	base := filepath.Base(short)

	for _, re := range patterns {
		if re.MatchString(short) || re.MatchString(base) {
			return true
		}
	}

	return false
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to path, creating parent directories as needed.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}

	return os.WriteFile(string(path), content, perm)
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

// IsNotExist reports whether err says a path does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
