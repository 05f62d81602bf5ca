package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// ReportFileName is the file written inside the reports directory.
const ReportFileName = "report.yaml"

// ShardDirPrefix names the per-shard subdirectories of a reports directory.
const ShardDirPrefix = "shard_"

// ErrNoReports is returned by LoadReports when the directory holds no report.
var ErrNoReports = errors.New("no saved reports")

// ReportStore persists batch reports between runs.
type ReportStore interface {
	SaveReports(ctx context.Context, dir m.Path, reports []m.Report) error
	LoadReports(ctx context.Context, dir m.Path) ([]m.Report, error)
	ShardDirs(ctx context.Context, dir m.Path) ([]m.Path, error)
}

// ShardDir returns the reports directory of shard index under dir.
func ShardDir(dir m.Path, index int) m.Path {
	return m.Path(filepath.Join(string(dir), fmt.Sprintf("%s%d", ShardDirPrefix, index)))
}

type reportDocument struct {
	Version int        `yaml:"version"`
	Reports []m.Report `yaml:"reports"`
}

const reportDocumentVersion = 1

// YAMLReportStore keeps reports in <dir>/report.yaml.
type YAMLReportStore struct{}

// NewReportStore creates a ReportStore backed by YAML files.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReports writes reports, replacing any earlier file.
func (s *YAMLReportStore) SaveReports(ctx context.Context, dir m.Path, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	data, err := yaml.Marshal(reportDocument{Version: reportDocumentVersion, Reports: reports})
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	path := filepath.Join(string(dir), ReportFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// LoadReports reads the reports saved by SaveReports.
func (s *YAMLReportStore) LoadReports(ctx context.Context, dir m.Path) ([]m.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(string(dir), ReportFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNoReports)
		}

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc reportDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return doc.Reports, nil
}

// ShardDirs lists the shard subdirectories of dir that hold a saved report, in name order.
func (s *YAMLReportStore) ShardDirs(ctx context.Context, dir m.Path) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(string(dir), ShardDirPrefix+"*", ReportFileName))
	if err != nil {
		return nil, fmt.Errorf("list shards in %s: %w", dir, err)
	}

	dirs := make([]m.Path, 0, len(matches))
	for _, match := range matches {
		dirs = append(dirs, m.Path(filepath.Dir(match)))
	}

	return dirs, nil
}
