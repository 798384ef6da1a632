// Package score holds every heuristic weight used to rank extraction output:
// the option-map score compared across option strategies and the per-question
// confidence compared across document strategies.
package score

import (
	"strings"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
)

// Question confidence weights. They sum to 1.0 for a well-formed
// four-option question.
const (
	TextInBoundsWeight = 0.25 // MinLength <= len <= MaxLength
	TextShortWeight    = 0.10
	TextLongWeight     = 0.15

	OptionsTwoWeight    = 0.15
	OptionsThreeWeight  = 0.22
	OptionsFourWeight   = 0.30
	OptionsUniqueWeight = 0.10 // scaled by 1 - DuplicateRatio
	OptionsCleanWeight  = 0.05 // no trivial entries
	EssayOptionsCredit  = 0.30 // essays are not expected to carry options
	InterrogativeWeight = 0.15
	NoMetadataWeight    = 0.15
)

// Bounds are the question text length limits of one run
type Bounds struct {
	MinLength int
	MaxLength int
}

// DefaultBounds returns the documented defaults (10, 1000)
func DefaultBounds() Bounds {
	return Bounds{MinLength: 10, MaxLength: 1000}
}

// Confidence scores how trustworthy an extracted question looks, in [0,1].
// Adding a valid, non-duplicate option never lowers the result.
func Confidence(lib *patterns.Library, q model.Question, b Bounds) float64 {
	textLen := patterns.RuneLen(q.Text)
	nonEmpty := q.Options.NonEmpty()
	if textLen == 0 && nonEmpty == 0 {
		return 0
	}

	s := 0.0
	switch {
	case textLen == 0:
	case textLen < b.MinLength:
		s += TextShortWeight
	case b.MaxLength > 0 && textLen > b.MaxLength:
		s += TextLongWeight
	default:
		s += TextInBoundsWeight
	}

	if q.Type == model.QuestionTypeEssay && nonEmpty < 2 {
		s += EssayOptionsCredit
	} else {
		s += optionsWeight(q.Options, nonEmpty)
	}

	if lib.HasInterrogative(q.Text) {
		s += InterrogativeWeight
	}
	if _, hit := lib.DenylistHit(q.Text + "\n" + joinOptions(q.Options)); !hit {
		s += NoMetadataWeight
	}

	return clip(s)
}

func optionsWeight(opts model.Options, nonEmpty int) float64 {
	s := 0.0
	switch {
	case nonEmpty >= 4:
		s += OptionsFourWeight
	case nonEmpty == 3:
		s += OptionsThreeWeight
	case nonEmpty == 2:
		s += OptionsTwoWeight
	}
	if nonEmpty >= 2 {
		s += OptionsUniqueWeight * (1 - DuplicateRatio(opts))
	}
	if nonEmpty > 0 && TrivialCount(opts) == 0 {
		s += OptionsCleanWeight
	}
	return s
}

func joinOptions(opts model.Options) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		parts = append(parts, o.Text)
	}
	return strings.Join(parts, "\n")
}
