package score

import (
	"math"
	"strings"
	"unicode"

	"github.com/ppiankov/qextract/internal/model"
)

// Option-map weights. Every extraction attempt is ranked with these so that
// attempts from different strategies stay comparable.
const (
	OptionCountMinBonus   = 0.3 // >= 2 non-empty options
	OptionCountFullBonus  = 0.2 // >= 4 non-empty options
	OptionLengthBonus     = 0.2 // average length > OptionLengthShort
	OptionLongLengthBonus = 0.1 // average length > OptionLengthLong
	OptionCompleteBonus   = 0.2 // no trivial entries
	OptionVarianceBonus   = 0.1 // length coefficient of variation <= OptionMaxVariation

	OptionLengthShort  = 5
	OptionLengthLong   = 10
	OptionMaxVariation = 0.5
)

// OptionMap scores one option map in [0,1]
func OptionMap(opts model.Options) float64 {
	nonEmpty := opts.NonEmpty()
	if len(opts) == 0 {
		return 0
	}

	s := 0.0
	if nonEmpty >= 2 {
		s += OptionCountMinBonus
	}
	if nonEmpty >= 4 {
		s += OptionCountFullBonus
	}

	lengths := optionLengths(opts)
	avg := mean(lengths)
	if avg > OptionLengthShort {
		s += OptionLengthBonus
	}
	if avg > OptionLengthLong {
		s += OptionLongLengthBonus
	}

	if TrivialCount(opts) == 0 {
		s += OptionCompleteBonus
	}

	if nonEmpty >= 2 && avg > 0 && stddev(lengths, avg)/avg <= OptionMaxVariation {
		s += OptionVarianceBonus
	}

	return clip(s)
}

// IsTrivial reports whether an option text carries no content: empty or
// punctuation and symbols only.
func IsTrivial(text string) bool {
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// TrivialCount counts trivial entries in opts
func TrivialCount(opts model.Options) int {
	n := 0
	for _, o := range opts {
		if IsTrivial(o.Text) {
			n++
		}
	}
	return n
}

// DuplicateRatio is the fraction of non-empty option pairs whose trimmed,
// case-folded texts are identical. Empty entries are not compared.
func DuplicateRatio(opts model.Options) float64 {
	var texts []string
	for _, o := range opts {
		t := strings.ToLower(strings.TrimSpace(o.Text))
		if t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) < 2 {
		return 0
	}

	pairs, dup := 0, 0
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			pairs++
			if texts[i] == texts[j] {
				dup++
			}
		}
	}
	return float64(dup) / float64(pairs)
}

func optionLengths(opts model.Options) []float64 {
	out := make([]float64, 0, len(opts))
	for _, o := range opts {
		out = append(out, float64(len([]rune(strings.TrimSpace(o.Text)))))
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, avg float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += (x - avg) * (x - avg)
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func clip(s float64) float64 {
	return math.Max(0, math.Min(1, s))
}
