package strategy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/qextract/internal/patterns"
)

// Section headers sit near the start of their line; a marker further in is
// prose ("read the essay below") and does not open a section.
const maxHeaderOffset = 40

type sectionKind int

const (
	sectionLead sectionKind = iota // text before the first header
	sectionChoice
	sectionEssay
	sectionComprehensive
)

type section struct {
	kind     sectionKind
	markerID string
	text     string
}

type header struct {
	pos  int
	kind sectionKind
	id   string
}

// splitSections cuts text at essay / choice / comprehensive headers. The
// returned sections cover text completely and in order.
func splitSections(lib *patterns.Library, text string) []section {
	var headers []header
	headers = appendHeaders(headers, lib.EssayMarkers(), sectionEssay, text)
	headers = appendHeaders(headers, lib.ChoiceMarkers(), sectionChoice, text)
	headers = appendHeaders(headers, lib.ComprehensiveMarkers(), sectionComprehensive, text)
	sort.SliceStable(headers, func(i, j int) bool { return headers[i].pos < headers[j].pos })

	var out []section
	if len(headers) == 0 || headers[0].pos > 0 {
		end := len(text)
		if len(headers) > 0 {
			end = headers[0].pos
		}
		out = append(out, section{kind: sectionLead, text: text[:end]})
	}
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].pos
		}
		out = append(out, section{kind: h.kind, markerID: h.id, text: text[h.pos:end]})
	}
	return out
}

func appendHeaders(headers []header, matchers []patterns.Matcher, kind sectionKind, text string) []header {
	for _, m := range matchers {
		for _, loc := range m.Re.FindAllStringIndex(text, -1) {
			pos := loc[0]
			for pos < loc[1] && (text[pos] == '\n' || text[pos] == ' ' || text[pos] == '\t') {
				pos++
			}
			start := lineStart(text, pos)
			if utf8.RuneCountInString(text[start:pos]) > maxHeaderOffset || hasHeader(headers, start) {
				continue
			}
			headers = append(headers, header{pos: start, kind: kind, id: m.ID})
		}
	}
	return headers
}

// hasHeader reports whether a header already claimed the line at pos.
// The first kind registered for a line wins.
func hasHeader(headers []header, pos int) bool {
	for _, h := range headers {
		if h.pos == pos {
			return true
		}
	}
	return false
}

func lineStart(text string, pos int) int {
	return strings.LastIndexByte(text[:pos], '\n') + 1
}
