package stages

import (
	"regexp"
	"strings"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

var uniformPattern = regexp.MustCompile(`\buniform\s+(\w+)\s+(\w+)\s*\[?\s*(\d*)\s*\]?\s*;`)

// UniformFolder turns uniform declarations with a known value into constant
// initializers. Declarations of unknown uniforms are deleted unless KeepUnknown is set.
type UniformFolder struct {
	Table       m.UniformTable
	KeepUnknown bool
}

// NewUniformFolder creates a UniformFolder over table.
func NewUniformFolder(table m.UniformTable, keepUnknown bool) *UniformFolder {
	return &UniformFolder{Table: table, KeepUnknown: keepUnknown}
}

// Name implements Stage.
func (f *UniformFolder) Name() string { return NameFoldUniforms }

// Apply implements Stage.
func (f *UniformFolder) Apply(src string) string {
	var b strings.Builder

	b.Grow(len(src))

	cursor := 0

	for _, mt := range findMatches(uniformPattern, src) {
		b.WriteString(src[cursor:mt.Start])

		typ, name := mt.Group(0), mt.Group(1)

		if value, ok := f.Table.Lookup(name); ok {
			b.WriteString(typ + " " + name + " = " + value + ";")
		} else if f.KeepUnknown {
			b.WriteString(src[mt.Start:mt.End])
		}

		cursor = mt.End
	}

	b.WriteString(src[cursor:])

	return b.String()
}
