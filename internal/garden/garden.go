// Package garden grows tiny flower beds: short runs of flower symbols wrapped
// into fixed-width lines.
package garden

import (
	"strings"
)

// MaxSymbols caps the length of a flower bed regardless of the requested limit.
const MaxSymbols = 16

// Alphabet is the fixed set of symbols a flower bed is drawn from. Repeated
// entries are drawn more often.
var Alphabet = []string{"🌻", "🌱", "🌸", "🌷", "💮", "🌺", "🌹", "🌼", "🌿", "🌿", "🌷"}

// Source is satisfied by *math/rand/v2.Rand.
type Source interface {
	IntN(n int) int
}

// Generate draws min(limit, MaxSymbols) symbols from Alphabet and wraps them
// into lines of symbolsPerLine symbols. There is no trailing newline.
func Generate(src Source, limit, symbolsPerLine int) string {
	n := min(limit, MaxSymbols)
	if n <= 0 {
		return ""
	}

	symbols := make([]string, n)
	for i := range symbols {
		symbols[i] = Alphabet[src.IntN(len(Alphabet))]
	}

	return Wrap(symbols, symbolsPerLine)
}

// Wrap joins symbols into lines of width symbols each.
func Wrap(symbols []string, width int) string {
	if width <= 0 || width >= len(symbols) {
		return strings.Join(symbols, "")
	}

	lines := make([]string, 0, (len(symbols)+width-1)/width)
	for start := 0; start < len(symbols); start += width {
		end := min(start+width, len(symbols))
		lines = append(lines, strings.Join(symbols[start:end], ""))
	}
	return strings.Join(lines, "\n")
}

// Symbols splits a flower bed back into its symbols, ignoring line breaks.
// Every Alphabet entry is a single code point.
func Symbols(bed string) []string {
	var out []string
	for _, r := range bed {
		if r == '\n' {
			continue
		}
		out = append(out, string(r))
	}
	return out
}

// IsFlower reports whether s is in Alphabet.
func IsFlower(s string) bool {
	for _, f := range Alphabet {
		if f == s {
			return true
		}
	}
	return false
}
