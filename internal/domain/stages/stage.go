// Package stages implements the text rewrites that make up the shader
// optimization pipeline. Every stage is a pure function of its input text.
package stages

import (
	"regexp"

	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// Stage names, in pipeline order.
const (
	NameRemoveComments       = "remove-comments"
	NameNormalizeWhitespace  = "normalize-whitespace"
	NameDedupDeclarations    = "dedup-declarations"
	NameMergeDeclarations    = "merge-declarations"
	NameRemoveBlankLines     = "remove-blank-lines"
	NameInlineCallables      = "inline-callables"
	NameUnrollLoops          = "unroll-loops"
	NameFoldUniforms         = "fold-uniforms"
	NameOptimizeTextureCalls = "optimize-texture-calls"
)

// Stage rewrites shader text. Implementations must not keep state between calls.
type Stage interface {
	Name() string
	Apply(src string) string
}

// StageFunc adapts a named function to the Stage interface.
type StageFunc struct {
	N string
	F func(string) string
}

// Name implements Stage.
func (s StageFunc) Name() string { return s.N }

// Apply implements Stage.
func (s StageFunc) Apply(src string) string { return s.F(src) }

// Chain composes stages left-to-right into a single Stage.
func Chain(stages ...Stage) Stage {
	return StageFunc{
		N: "chain",
		F: func(src string) string {
			for _, stage := range stages {
				src = stage.Apply(src)
			}

			return src
		},
	}
}

// findMatches returns every non-overlapping match of re in src, left to right.
func findMatches(re *regexp.Regexp, src string) []m.Match {
	locs := re.FindAllStringSubmatchIndex(src, -1)
	matches := make([]m.Match, 0, len(locs))

	for _, loc := range locs {
		groups := make([]string, 0, len(loc)/2-1)

		for g := 2; g+1 < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, "")
				continue
			}

			groups = append(groups, src[loc[g]:loc[g+1]])
		}

		matches = append(matches, m.Match{Start: loc[0], End: loc[1], Groups: groups})
	}

	return matches
}
