package patterns

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var spaceReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ", // no-break space
	"\u3000", " ", // ideographic space
	"\u200b", "", // zero-width space
	"\ufeff", "", // byte order mark
)

// Normalize folds a document into the form every matcher expects: NFC
// composed, full-width ASCII folded to half-width, LF line endings.
// Option glyphs (circled letters, private-use bullets) are left intact.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = width.Fold.String(text)
	return spaceReplacer.Replace(text)
}

// RuneLen returns the number of characters in s after trimming
func RuneLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}
