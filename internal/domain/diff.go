package domain

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders a unified diff between a shader and its optimized form.
// It returns "" when both texts are equal.
func UnifiedDiff(name, original, optimized string) (string, error) {
	if original == optimized {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(optimized),
		FromFile: name,
		ToFile:   name + " (optimized)",
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("render diff: %w", err)
	}

	return text, nil
}
