package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
	"github.com/ppiankov/qextract/internal/score"
)

// Option extraction methods, in the order they are attempted
const (
	MethodBracketed = "bracketed"
	MethodGlyph     = "glyph"
	MethodLine      = "line"
	MethodToken     = "token"
	MethodLoose     = "loose"
)

var tokenRe = regexp.MustCompile(`\S+`)

// Attempt is the output of one option extraction method
type Attempt struct {
	Method  string
	Options model.Options
	StemEnd int
	Score   float64
}

// OptionResult is the winning attempt plus the stem that precedes it
type OptionResult struct {
	Attempt
	Stem     string
	Attempts []Attempt
}

// marker is an option opener inside a span
type marker struct {
	start, end int
	letter     string
}

// ExtractOptions finds lettered options in a question span. Methods run in a
// fixed order and stop at the first with two or more non-empty options; the
// loose scan only runs when all of them fell short. The highest scoring
// eligible attempt wins, ties going to the earlier method.
func ExtractOptions(lib *patterns.Library, span string) OptionResult {
	methods := []func(*patterns.Library, string) Attempt{
		bracketedOptions,
		glyphOptions,
		lineOptions,
		tokenOptions,
	}

	var attempts []Attempt
	done := false
	for _, run := range methods {
		a := run(lib, span)
		attempts = append(attempts, a)
		if a.Options.NonEmpty() >= 2 {
			done = true
			break
		}
	}
	if !done {
		attempts = append(attempts, looseOptions(lib, span))
	}

	best, ok := pickAttempt(attempts)
	if !ok {
		return OptionResult{
			Attempt:  Attempt{StemEnd: len(span)},
			Stem:     strings.TrimSpace(span),
			Attempts: attempts,
		}
	}
	return OptionResult{
		Attempt:  best,
		Stem:     strings.TrimSpace(span[:best.StemEnd]),
		Attempts: attempts,
	}
}

// pickAttempt prefers attempts with at least two non-empty options. An attempt
// that found nothing is never picked.
func pickAttempt(attempts []Attempt) (Attempt, bool) {
	eligible := attempts[:0:0]
	for _, a := range attempts {
		if a.Options.NonEmpty() >= 2 {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		for _, a := range attempts {
			if len(a.Options) > 0 {
				eligible = append(eligible, a)
			}
		}
	}
	if len(eligible) == 0 {
		return Attempt{}, false
	}

	best := eligible[0]
	for _, a := range eligible[1:] {
		if a.Score > best.Score {
			best = a
		}
	}
	return best, true
}

// bracketedOptions reads "(A) .. (B) .." runs. Letters must appear in order
// from A; an empty option between two markers is kept.
func bracketedOptions(lib *patterns.Library, span string) Attempt {
	m, ok := lib.OptionMarker(patterns.OptionBracketed)
	if !ok {
		return Attempt{Method: MethodBracketed}
	}
	return sequence(MethodBracketed, span, letterMarkers(m, span))
}

// glyphOptions splits at option glyphs (private-use or circled letters)
// and letters them by order.
func glyphOptions(lib *patterns.Library, span string) Attempt {
	var markers []marker
	for i, r := range span {
		if !lib.IsOptionGlyph(r) {
			continue
		}
		letter := model.LetterAt(len(markers))
		if letter == "" {
			break
		}
		markers = append(markers, marker{start: i, end: i + utf8.RuneLen(r), letter: letter})
	}
	return build(MethodGlyph, span, markers)
}

// lineOptions reads one option per line ("A. text" or "1) text"). Digits
// 1-4 map to A-D. Unmarked lines after an option continue it.
func lineOptions(lib *patterns.Library, span string) Attempt {
	m, ok := lib.OptionMarker(patterns.OptionLine)
	if !ok {
		return Attempt{Method: MethodLine}
	}
	li := m.Re.SubexpIndex("letter")

	var markers []marker
	offset := 0
	for _, line := range strings.SplitAfter(span, "\n") {
		loc := m.Re.FindStringSubmatchIndex(line)
		if loc != nil && loc[0] == 0 {
			letter := lineLetter(line[loc[2*li]:loc[2*li+1]])
			if letter == model.LetterAt(len(markers)) {
				markers = append(markers, marker{start: offset, end: offset + loc[1], letter: letter})
			}
		}
		offset += len(line)
	}
	return build(MethodLine, span, markers)
}

func lineLetter(tok string) string {
	switch tok {
	case "1":
		return "A"
	case "2":
		return "B"
	case "3":
		return "C"
	case "4":
		return "D"
	}
	return tok
}

// tokenOptions walks whitespace tokens and opens an option at each lexicon
// word such as "甲" or "A.".
func tokenOptions(lib *patterns.Library, span string) Attempt {
	lexicon := lib.OptionLexicon()
	var markers []marker
	for _, loc := range tokenRe.FindAllStringIndex(span, -1) {
		consumed, ok := lexiconPrefix(lexicon, span[loc[0]:loc[1]])
		if !ok {
			continue
		}
		letter := model.LetterAt(len(markers))
		if letter == "" {
			break
		}
		markers = append(markers, marker{start: loc[0], end: loc[0] + consumed, letter: letter})
	}
	return build(MethodToken, span, markers)
}

// lexiconPrefix reports how many bytes of tok form an option opener
func lexiconPrefix(lexicon []string, tok string) (int, bool) {
	for _, word := range lexicon {
		if word == "" || !strings.HasPrefix(tok, word) {
			continue
		}
		if len(tok) == len(word) || isOpenerPunct(word[len(word)-1]) {
			return len(word), true
		}
		for _, p := range []string{"、", ".", ":", ")", "："} {
			if strings.HasPrefix(tok[len(word):], p) {
				return len(word) + len(p), true
			}
		}
	}
	return 0, false
}

func isOpenerPunct(b byte) bool {
	return b == '.' || b == ')' || b == ':'
}

// looseOptions is the last resort: "A." / "(A" / glyphs anywhere, in letter
// order.
func looseOptions(lib *patterns.Library, span string) Attempt {
	var markers []marker
	if m, ok := lib.OptionMarker(patterns.OptionLoose); ok {
		markers = append(markers, letterMarkers(m, span)...)
	}
	for i, r := range span {
		if lib.IsOptionGlyph(r) {
			markers = append(markers, marker{start: i, end: i + utf8.RuneLen(r)})
		}
	}
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].start < markers[j].start })

	for i := range markers {
		if markers[i].letter == "" {
			markers[i].letter = "*"
		}
	}
	return sequence(MethodLoose, span, markers)
}

func letterMarkers(m patterns.Matcher, span string) []marker {
	li := m.Re.SubexpIndex("letter")
	var out []marker
	for _, loc := range m.Re.FindAllStringSubmatchIndex(span, -1) {
		out = append(out, marker{start: loc[0], end: loc[1], letter: span[loc[2*li]:loc[2*li+1]]})
	}
	return out
}

// sequence keeps the markers that continue A, B, C... and stops when the run
// restarts at A. A "*" marker takes whatever letter is expected next.
func sequence(method, span string, markers []marker) Attempt {
	var run []marker
	for _, mk := range markers {
		want := model.LetterAt(len(run))
		if want == "" {
			break
		}
		switch {
		case mk.letter == want || mk.letter == "*":
			mk.letter = want
			run = append(run, mk)
		case mk.letter == "A" && len(run) > 0:
			return build(method, span, run)
		}
	}
	return build(method, span, run)
}

// build slices span at the markers. Each option runs to the next marker.
func build(method, span string, markers []marker) Attempt {
	a := Attempt{Method: method, StemEnd: len(span)}
	if len(markers) == 0 {
		return a
	}

	a.StemEnd = markers[0].start
	for i, mk := range markers {
		stop := len(span)
		if i+1 < len(markers) {
			stop = markers[i+1].start
		}
		a.Options = a.Options.Set(mk.letter, cleanOption(span[mk.end:stop]))
	}
	a.Score = score.OptionMap(a.Options)
	return a
}

func cleanOption(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
