// Package classify detects which layout dialect a document follows so the
// orchestrator can pick a primary extraction strategy.
package classify

import (
	"path/filepath"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
)

// Classify inspects normalized document text plus an optional filename hint.
// Markers are checked in priority order; the filename only decides when the
// text itself carries no signal.
func Classify(lib *patterns.Library, text string, filenameHint string) model.DetectedFormat {
	text = patterns.Normalize(text)
	var signals []string

	essayID, essay := patterns.AnyMatch(lib.EssayMarkers(), text)
	if essay {
		signals = append(signals, "essay:"+essayID)
	}
	choiceID, choice := patterns.AnyMatch(lib.ChoiceMarkers(), text)
	if choice {
		signals = append(signals, "choice:"+choiceID)
	}
	compID, comprehensive := patterns.AnyMatch(lib.ComprehensiveMarkers(), text)
	if comprehensive {
		signals = append(signals, "comprehensive:"+compID)
	}
	groupID, group := patterns.AnyMatch(lib.GroupMarkers(), text)
	if group {
		signals = append(signals, "group:"+groupID)
	}
	glyphs := lib.HasOptionGlyph(text)
	if glyphs {
		signals = append(signals, "glyphs")
	}
	bracketed := hasBracketedRun(lib, text)
	if bracketed {
		signals = append(signals, "bracketed-options")
	}

	category := model.FormatUnknown
	switch {
	case essay && choice && comprehensive:
		category = model.FormatComprehensive
	case essay && choice:
		category = model.FormatMixedEssayChoice
	case group && glyphs:
		category = model.FormatEmbeddedCloze
	case essay && !bracketed:
		category = model.FormatEssay
	case choice || bracketed:
		category = model.FormatPlainChoice
	}

	if category == model.FormatUnknown && filenameHint != "" {
		base := filepath.Base(filenameHint)
		for _, hint := range lib.FilenameHints() {
			if hint.Re.MatchString(base) {
				category = hint.Category
				signals = append(signals, "filename:"+hint.ID)
				break
			}
		}
	}

	return model.DetectedFormat{Category: category, Signals: signals}
}

// hasBracketedRun reports whether an (A) marker is followed somewhere by a
// (B) marker, the cheapest reliable sign of a choice question.
func hasBracketedRun(lib *patterns.Library, text string) bool {
	m, ok := lib.OptionMarker(patterns.OptionBracketed)
	if !ok {
		return false
	}
	letterIdx := m.Re.SubexpIndex("letter")
	seenA := false
	for _, loc := range m.Re.FindAllStringSubmatchIndex(text, -1) {
		switch text[loc[2*letterIdx]:loc[2*letterIdx+1]] {
		case "A":
			seenA = true
		case "B":
			if seenA {
				return true
			}
		}
	}
	return false
}
