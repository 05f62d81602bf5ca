package stages

import (
	"regexp"
	"strings"
	"unicode"
)

// whitespaceClass matches what unicode.IsSpace accepts plus the ASCII
// information separators U+001C..U+001F.
const whitespaceClass = `[\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}]`

var (
	// Line comments stop before the newline; block comments end at the first "*/".
	commentPattern    = regexp.MustCompile(`//[^\n]*|/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`)
	whitespacePattern = regexp.MustCompile(whitespaceClass + `+`)
	blankLinePattern  = regexp.MustCompile(`\n` + whitespaceClass + `*\n`)
)

// RemoveComments deletes line and block comments in a left-to-right scan.
// The scan is repeated until the text stops changing, so the result never
// holds a removable comment.
func RemoveComments(src string) string {
	for {
		out := commentPattern.ReplaceAllLiteralString(src, "")
		if out == src {
			return out
		}

		src = out
	}
}

// NormalizeWhitespace trims the buffer and collapses every whitespace run,
// newlines included, into a single space.
func NormalizeWhitespace(src string) string {
	return whitespacePattern.ReplaceAllLiteralString(strings.TrimFunc(src, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// RemoveBlankLines folds runs of empty lines into a single newline.
func RemoveBlankLines(src string) string {
	return blankLinePattern.ReplaceAllLiteralString(src, "\n")
}

// Strip removes comments and normalizes whitespace. Strip(Strip(s)) == Strip(s).
func Strip(src string) string {
	return NormalizeWhitespace(RemoveComments(src))
}
