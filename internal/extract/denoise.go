// Package extract locates questions in normalized exam text: group headers,
// per-question spans and the lettered options inside each span.
package extract

import (
	"strings"

	"github.com/ppiankov/qextract/internal/patterns"
)

// Denoise drops page numbers, turn-over notices and similar furniture lines.
// Lines are matched one at a time so anchored patterns see a single line.
func Denoise(lib *patterns.Library, text string) string {
	noise := lib.NoiseLines()
	if len(noise) == 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if _, hit := patterns.AnyMatch(noise, line); hit {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
