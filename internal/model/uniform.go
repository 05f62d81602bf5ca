package model

import (
	"sort"
	"sync"
)

// UniformTable maps uniform names to literal replacement expressions.
// It is immutable once built and safe for concurrent use.
type UniformTable struct {
	values map[string]string
}

// NewUniformTable copies values into a new table.
func NewUniformTable(values map[string]string) UniformTable {
	copied := make(map[string]string, len(values))
	for name, value := range values {
		copied[name] = value
	}

	return UniformTable{values: copied}
}

var defaultUniforms = sync.OnceValue(func() UniformTable {
	return NewUniformTable(map[string]string{
		"u_time":       "0.0",
		"u_resolution": "vec2(1024.0, 768.0)",
	})
})

// DefaultUniforms returns the built-in table of known uniform values.
func DefaultUniforms() UniformTable {
	return defaultUniforms()
}

// With returns a new table holding t's entries overlaid with extra.
func (t UniformTable) With(extra map[string]string) UniformTable {
	merged := make(map[string]string, len(t.values)+len(extra))
	for name, value := range t.values {
		merged[name] = value
	}

	for name, value := range extra {
		merged[name] = value
	}

	return UniformTable{values: merged}
}

// Lookup returns the literal for name, if known.
func (t UniformTable) Lookup(name string) (string, bool) {
	value, ok := t.values[name]
	return value, ok
}

// Len returns the number of known uniforms.
func (t UniformTable) Len() int {
	return len(t.values)
}

// Names returns the known uniform names in sorted order.
func (t UniformTable) Names() []string {
	names := make([]string, 0, len(t.values))
	for name := range t.values {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
