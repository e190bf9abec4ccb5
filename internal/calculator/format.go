package calculator

import (
	"math"
	"strconv"
	"strings"
)

// DisplayWidth is how many trailing input characters the display shows.
const DisplayWidth = 10

// FormatNumber renders f in shortest round-trip form, always with a decimal
// point or exponent ("50.0", "0.25", "1e+16").
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Display is the text shown in the input panel: the tail of the current
// input (or "0"), prefixed by the stored operand while an operation is
// pending.
func (s State) Display() string {
	text := "0"
	if s.Input != "" {
		text = s.Input
		if len(text) > DisplayWidth {
			text = text[len(text)-DisplayWidth:]
		}
	}
	if s.Operator != None {
		text = FormatNumber(s.Stored) + " " + string(s.Operator) + " " + text
	}
	return text
}

// RecentHistory returns up to n of the newest history entries, oldest first.
func (s State) RecentHistory(n int) []string {
	if n <= 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
