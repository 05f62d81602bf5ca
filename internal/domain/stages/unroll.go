package stages

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultUnrollThreshold is the body length, in characters, below which a
// loop is handed to the unroll transform.
const DefaultUnrollThreshold = 50

// DefaultMaxUnroll caps the trip count unrolled in UnrollTripCount mode.
const DefaultMaxUnroll = 8

// LiteralLoopHeader is the only header rewritten in UnrollLiteral mode.
const LiteralLoopHeader = "for (int i = 0; i < 10; i++)"

// UnrolledPlaceholder replaces LiteralLoopHeader in UnrollLiteral mode.
const UnrolledPlaceholder = `
        {
            // Unrolled loop body
        }
    `

// UnrollMode selects how short loops are rewritten.
type UnrollMode string

const (
	// UnrollLiteral only rewrites LiteralLoopHeader.
	UnrollLiteral UnrollMode = "literal"
	// UnrollTripCount expands loops with literal integer bounds into copies of the body.
	UnrollTripCount UnrollMode = "trip-count"
)

// ParseUnrollMode validates a mode name; "" selects UnrollLiteral.
func ParseUnrollMode(value string) (UnrollMode, error) {
	switch mode := UnrollMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", UnrollLiteral:
		return UnrollLiteral, nil
	case UnrollTripCount:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown unroll mode %q (want %q or %q)", value, UnrollLiteral, UnrollTripCount)
	}
}

var (
	loopPattern = regexp.MustCompile(`\bfor\s*\(([^)]*)\)\s*\{`)

	// int v = A; v < B; v++   (also <= and ++v)
	tripClausePattern = regexp.MustCompile(
		`^\s*int\s+(\w+)\s*=\s*(-?\d+)\s*;\s*(\w+)\s*(<=|<)\s*(-?\d+)\s*;\s*(?:(\w+)\s*\+\+|\+\+\s*(\w+))\s*$`)

	loopExitPattern = regexp.MustCompile(`\b(?:break|continue|return|discard)\b`)
)

// Unroller rewrites loops whose body is shorter than Threshold characters.
type Unroller struct {
	Threshold int
	Mode      UnrollMode
	MaxTrips  int
}

// NewUnroller creates an Unroller; non-positive values select the defaults.
func NewUnroller(threshold int, mode UnrollMode, maxTrips int) *Unroller {
	if threshold <= 0 {
		threshold = DefaultUnrollThreshold
	}

	if mode == "" {
		mode = UnrollLiteral
	}

	if maxTrips <= 0 {
		maxTrips = DefaultMaxUnroll
	}

	return &Unroller{Threshold: threshold, Mode: mode, MaxTrips: maxTrips}
}

// Name implements Stage.
func (u *Unroller) Name() string { return NameUnrollLoops }

// Apply implements Stage.
func (u *Unroller) Apply(src string) string {
	var b strings.Builder

	b.Grow(len(src))

	cursor := 0

	for _, mt := range findMatches(loopPattern, src) {
		if mt.Start < cursor {
			continue
		}

		body, err := FindBody(src, mt.End)
		if err != nil {
			if errors.Is(err, ErrUnbalancedBraces) {
				slog.Warn("Skipping loop with unbalanced braces", "offset", mt.Start)
			}

			continue
		}

		if utf8.RuneCountInString(body) >= u.Threshold {
			continue
		}

		end := mt.End + len(body) + 1

		b.WriteString(src[cursor:mt.Start])
		b.WriteString(u.unroll(src[mt.Start:end], mt.Group(0), body))

		cursor = end
	}

	b.WriteString(src[cursor:])

	return b.String()
}

func (u *Unroller) unroll(loop, clause, body string) string {
	if u.Mode == UnrollTripCount {
		if expanded, ok := u.expand(clause, body); ok {
			return expanded
		}
	}

	return strings.ReplaceAll(loop, LiteralLoopHeader, UnrolledPlaceholder)
}

// expand emits one braced copy of body per iteration, each declaring the
// induction variable with its literal value.
func (u *Unroller) expand(clause, body string) (string, bool) {
	parts := tripClausePattern.FindStringSubmatch(clause)
	if parts == nil {
		return "", false
	}

	variable := parts[1]
	step := parts[6]

	if step == "" {
		step = parts[7]
	}

	if parts[3] != variable || step != variable {
		return "", false
	}

	from, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", false
	}

	to, err := strconv.Atoi(parts[5])
	if err != nil {
		return "", false
	}

	if parts[4] == "<=" {
		to++
	}

	trips := to - from
	if trips <= 0 || trips > u.MaxTrips {
		return "", false
	}

	if loopExitPattern.MatchString(body) || assigns(body, variable) {
		return "", false
	}

	var b strings.Builder

	for k := from; k < to; k++ {
		fmt.Fprintf(&b, "{ int %s = %d;%s}", variable, k, body)
	}

	return b.String(), true
}

// assigns reports whether body writes to variable.
func assigns(body, variable string) bool {
	name := regexp.QuoteMeta(variable)
	write := regexp.MustCompile(`\b` + name + `\s*(?:(?:<<|>>|[-+*/%&|^])?=[^=]|\+\+|--)|(?:\+\+|--)\s*` + name + `\b`)

	return write.MatchString(body)
}
