// Package model defines the data structures shared by the optimizer layers.
package model

// Path represents a file system path.
type Path string

// File represents a shader file on disk.
type File struct {
	FullPath  Path
	ShortPath Path // relative to the root it was discovered from
	Hash      string
	Size      int64
}

// Source pairs an input shader with the path its optimized text is written to.
type Source struct {
	Origin *File
	Output Path
}
