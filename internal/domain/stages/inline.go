package stages

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultInlineThreshold is the body length, in characters, below which a
// callable is inlined.
const DefaultInlineThreshold = 50

var callablePattern = regexp.MustCompile(`\b(\w+)\s+(\w+)\s*\([^)]*\)\s*\{`)

// Inliner unwraps small callables: a definition whose body is shorter than
// Threshold characters is replaced by the bare body. Call sites are left as
// they are.
type Inliner struct {
	Threshold int
}

// NewInliner creates an Inliner; a non-positive threshold selects the default.
func NewInliner(threshold int) *Inliner {
	if threshold <= 0 {
		threshold = DefaultInlineThreshold
	}

	return &Inliner{Threshold: threshold}
}

// Name implements Stage.
func (in *Inliner) Name() string { return NameInlineCallables }

// Apply implements Stage.
func (in *Inliner) Apply(src string) string {
	var b strings.Builder

	b.Grow(len(src))

	cursor := 0

	for _, mt := range findMatches(callablePattern, src) {
		// Inside a definition that was already unwrapped.
		if mt.Start < cursor {
			continue
		}

		body, err := FindBody(src, mt.End)
		if err != nil {
			if errors.Is(err, ErrUnbalancedBraces) {
				slog.Warn("Skipping callable with unbalanced braces", "callable", mt.Group(1), "offset", mt.Start)
			}

			continue
		}

		if utf8.RuneCountInString(body) >= in.Threshold {
			continue
		}

		b.WriteString(src[cursor:mt.Start])
		b.WriteString(body)

		cursor = mt.End + len(body) + 1
	}

	b.WriteString(src[cursor:])

	return b.String()
}
