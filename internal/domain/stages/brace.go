package stages

import (
	"errors"
	"fmt"
)

// ErrUnbalancedBraces is returned when a body never closes before the end of the text.
var ErrUnbalancedBraces = errors.New("unbalanced braces")

// FindBody returns the text between an opening brace and its matching closing
// brace. start must point just past the opening '{'; the closing '}' is not
// part of the result. When the depth never returns to zero the remainder of
// src is returned together with ErrUnbalancedBraces.
func FindBody(src string, start int) (string, error) {
	if start < 0 || start > len(src) {
		return "", fmt.Errorf("body offset %d outside [0, %d]: %w", start, len(src), ErrUnbalancedBraces)
	}

	depth := 1

	for i := start; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start:i], nil
			}
		}
	}

	return src[start:], fmt.Errorf("body at offset %d: %w", start, ErrUnbalancedBraces)
}
