package model

import "time"

// Stats describes the size change of a single optimization run.
type Stats struct {
	InitialSize   int           `yaml:"initial_size"`
	OptimizedSize int           `yaml:"optimized_size"`
	Boost         float64       `yaml:"boost"`
	Elapsed       time.Duration `yaml:"elapsed"`
}

// StageStat records what one pipeline stage did to the buffer.
type StageStat struct {
	Name    string        `yaml:"name"`
	InSize  int           `yaml:"in_size"`
	OutSize int           `yaml:"out_size"`
	Elapsed time.Duration `yaml:"elapsed"`
}

// Result is the outcome of running the pipeline over one buffer.
type Result struct {
	Code   string
	Stats  Stats
	Stages []StageStat
}

// Report is the persisted outcome for one source file.
type Report struct {
	Source Path        `yaml:"source"`
	Output Path        `yaml:"output,omitempty"`
	Hash   string      `yaml:"hash,omitempty"`
	Stats  Stats       `yaml:"stats"`
	Stages []StageStat `yaml:"stages,omitempty"`
	Error  string      `yaml:"error,omitempty"`
}

// Failed reports whether the file could not be optimized.
func (r Report) Failed() bool {
	return r.Error != ""
}

// Summary aggregates the reports of one batch run.
type Summary struct {
	Files         int           `yaml:"files"`
	Failed        int           `yaml:"failed"`
	InitialSize   int           `yaml:"initial_size"`
	OptimizedSize int           `yaml:"optimized_size"`
	Boost         float64       `yaml:"boost"`
	Elapsed       time.Duration `yaml:"elapsed"`
}
