package model

// Match is a single non-overlapping pattern hit inside a buffer.
// Groups holds the captured substrings in order, excluding the whole match.
type Match struct {
	Start  int
	End    int
	Groups []string
}

// Group returns the i-th capture or "" when it does not exist.
func (mt Match) Group(i int) string {
	if i < 0 || i >= len(mt.Groups) {
		return ""
	}

	return mt.Groups[i]
}
