package stages

import (
	"regexp"
	"strings"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// declarationPattern matches "type name;" and "type name[N];".
var declarationPattern = regexp.MustCompile(`\b(\w+)\s+(\w+)\s*\[?\s*(\d*)\s*\]?\s*;`)

func declarationOf(mt m.Match) (m.DeclarationKey, string) {
	return m.DeclarationKey{Type: mt.Group(0), Name: mt.Group(1)}, mt.Group(2)
}

// DedupDeclarations overwrites every repeated declaration of the same
// (type, name) with the text of its first occurrence. Repeats keep their
// position; they are not removed.
func DedupDeclarations(src string) string {
	matches := findMatches(declarationPattern, src)
	if len(matches) == 0 {
		return src
	}

	first := make(map[m.DeclarationKey]string, len(matches))

	var b strings.Builder

	b.Grow(len(src))

	cursor := 0

	for _, mt := range matches {
		key, _ := declarationOf(mt)
		text := src[mt.Start:mt.End]

		if original, ok := first[key]; ok {
			text = original
		} else {
			first[key] = text
		}

		b.WriteString(src[cursor:mt.Start])
		b.WriteString(text)

		cursor = mt.End
	}

	b.WriteString(src[cursor:])

	return b.String()
}

// MergeDeclarations folds consecutive declarations of one type into a single
// "type a, b;" line. The text between declarations is kept, in order, ahead of
// the merged block, and the text after the last declaration follows it.
func MergeDeclarations(src string) string {
	matches := findMatches(declarationPattern, src)
	if len(matches) == 0 {
		return src
	}

	var (
		gaps   strings.Builder
		merged []string
		group  m.DeclarationGroup
	)

	cursor := 0

	for _, mt := range matches {
		key, size := declarationOf(mt)

		if !group.Accepts(key.Type) {
			merged = append(merged, group.String())
			group.Reset()
		}

		group.Add(key.Type, key.Name, size)
		gaps.WriteString(src[cursor:mt.Start])

		cursor = mt.End
	}

	merged = append(merged, group.String())

	return gaps.String() + strings.Join(merged, "\n") + "\n" + src[cursor:]
}
