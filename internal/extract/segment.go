package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
)

// clozeContextRunes caps how much preceding prose is kept as a cloze stem.
const clozeContextRunes = 80

// Segment is one located question span. Text starts right after the number
// marker and still contains the options.
type Segment struct {
	Number      int
	Text        string
	Context     string // cloze only: prose leading up to the blank
	Blank       string // cloze only: blank context of an explicitly numbered member
	MarkerID    string
	Offset      int
	Placeholder bool
}

type location struct {
	start, end int
	id         string
}

// SegmentGroup returns exactly one segment per number in g, in order.
// Members are located in passage order; when cloze is set a member with no
// explicit marker falls back to an inline blank, and an explicitly numbered
// member also records the context of its blank in the prose above the first
// member. Anything still missing is emitted as a placeholder.
func SegmentGroup(lib *patterns.Library, g model.QuestionGroup, cloze bool) []Segment {
	passage := g.PassageText

	members := make(map[int]location, g.EndNumber-g.StartNumber+2)
	from := 0
	for n := g.StartNumber; n <= g.EndNumber+1; n++ {
		if loc, ok := firstMatch(lib.MemberMarkers(n), passage, from); ok {
			members[n] = loc
			from = loc.end
		}
	}

	blanks := make(map[int]location)
	if cloze {
		from = 0
		for n := g.StartNumber; n <= g.EndNumber; n++ {
			if _, ok := members[n]; ok {
				continue
			}
			if loc, ok := firstMatch(lib.ClozeMarkers(n), passage, from); ok {
				blanks[n] = loc
				from = loc.end
			}
		}
	}

	var memberBlanks map[int]string
	if cloze {
		memberBlanks = blankContexts(lib, g, passage, members)
	}

	segs := make([]Segment, 0, g.EndNumber-g.StartNumber+1)
	for n := g.StartNumber; n <= g.EndNumber; n++ {
		if loc, ok := members[n]; ok {
			stop := len(passage)
			for k := n + 1; k <= g.EndNumber+1; k++ {
				if next, ok := members[k]; ok {
					stop = next.start
					break
				}
			}
			stop = passageEnd(g, loc.end, stop)
			segs = append(segs, Segment{
				Number:   n,
				Text:     strings.TrimSpace(passage[loc.end:stop]),
				Blank:    memberBlanks[n],
				MarkerID: loc.id,
				Offset:   loc.start,
			})
			continue
		}

		if loc, ok := blanks[n]; ok {
			stop := passageEnd(g, loc.end, nextBoundary(loc.end, len(passage), members, blanks))
			segs = append(segs, Segment{
				Number:   n,
				Text:     strings.TrimSpace(passage[loc.end:stop]),
				Context:  clozeContext(passage[:loc.start]),
				MarkerID: loc.id,
				Offset:   loc.start,
			})
			continue
		}

		segs = append(segs, Segment{Number: n, Placeholder: true})
	}

	mustCoverGroup(g, segs)
	return segs
}

// blankContexts finds inline blanks for explicitly numbered members. Only
// the prose before the first member marker is searched, so option rows such
// as "1. (A) ..." are never read as blanks.
func blankContexts(lib *patterns.Library, g model.QuestionGroup, passage string, members map[int]location) map[int]string {
	proseEnd := len(passage)
	for n := g.StartNumber; n <= g.EndNumber; n++ {
		if loc, ok := members[n]; ok && loc.start < proseEnd {
			proseEnd = loc.start
		}
	}
	prose := passage[:proseEnd]

	out := make(map[int]string)
	from := 0
	for n := g.StartNumber; n <= g.EndNumber; n++ {
		if _, ok := members[n]; !ok {
			continue
		}
		if loc, ok := firstMatch(lib.ClozeMarkers(n), prose, from); ok {
			out[n] = clozeContext(prose[:loc.start])
			from = loc.end
		}
	}
	return out
}

// SegmentStandalone splits text at numbered question markers. Each pattern is
// tried on its own and the one yielding the most accepted segments wins; ties
// keep the earlier pattern. Within a pattern the first occurrence of a number
// wins.
func SegmentStandalone(lib *patterns.Library, text string, minLength int) []Segment {
	var best []Segment
	for _, m := range lib.QuestionMarkers() {
		segs := segmentWith(lib, m, text, minLength)
		if len(segs) > len(best) {
			best = segs
		}
	}
	return best
}

func segmentWith(lib *patterns.Library, m patterns.Matcher, text string, minLength int) []Segment {
	ni := m.Re.SubexpIndex("num")
	locs := m.Re.FindAllStringSubmatchIndex(text, -1)

	var segs []Segment
	seen := make(map[int]bool)
	for i, loc := range locs {
		if loc[2*ni] < 0 {
			continue
		}
		stop := len(text)
		if i+1 < len(locs) {
			stop = locs[i+1][0]
		}
		body := text[loc[1]:stop]

		n, ok := questionNumber(text[loc[2*ni]:loc[2*ni+1]])
		if !ok || seen[n] {
			continue
		}
		if isDecimal(text[loc[0]:loc[1]], body) {
			continue
		}
		if _, hit := lib.DenylistHit(body); hit {
			continue
		}
		if patterns.RuneLen(body) < minLength && !lib.HasInterrogative(body) {
			continue
		}

		seen[n] = true
		segs = append(segs, Segment{
			Number:   n,
			Text:     strings.TrimSpace(body),
			MarkerID: m.ID,
			Offset:   loc[0],
		})
	}
	return segs
}

// questionNumber accepts 1..MaxQuestionNumber written with at most 3 digits
func questionNumber(tok string) (int, bool) {
	if len(tok) == 0 || len(tok) > 3 {
		return 0, false
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > patterns.MaxQuestionNumber {
		return 0, false
	}
	return n, true
}

// isDecimal rejects "3.14" read as question 3
func isDecimal(marker, body string) bool {
	if !strings.HasSuffix(strings.TrimRight(marker, " \t"), ".") || body == "" {
		return false
	}
	return body[0] >= '0' && body[0] <= '9'
}

// firstMatch returns the earliest match at or after from across matchers.
// Matching runs over the whole text so line anchors keep their meaning.
func firstMatch(matchers []patterns.Matcher, text string, from int) (location, bool) {
	best := location{start: -1}
	for _, m := range matchers {
		for _, loc := range m.Re.FindAllStringIndex(text, -1) {
			if loc[0] < from {
				continue
			}
			if best.start < 0 || loc[0] < best.start {
				best = location{start: loc[0], end: loc[1], id: m.ID}
			}
			break
		}
	}
	return best, best.start >= 0
}

func nextBoundary(after, limit int, sets ...map[int]location) int {
	var starts []int
	for _, set := range sets {
		for _, loc := range set {
			if loc.start >= after {
				starts = append(starts, loc.start)
			}
		}
	}
	if len(starts) == 0 {
		return limit
	}
	sort.Ints(starts)
	return starts[0]
}

// clozeContext keeps the sentence fragment before a blank, capped in runes,
// and marks the blank position.
func clozeContext(before string) string {
	cut := strings.LastIndexFunc(before, func(r rune) bool {
		return r == '\n' || r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？'
	})
	if cut >= 0 {
		_, size := utf8.DecodeRuneInString(before[cut:])
		before = before[cut+size:]
	}
	before = strings.TrimLeftFunc(before, unicode.IsSpace)
	before = strings.TrimRightFunc(before, func(r rune) bool { return unicode.IsSpace(r) || r == '_' || r == '(' })

	if r := []rune(before); len(r) > clozeContextRunes {
		before = string(r[len(r)-clozeContextRunes:])
	}
	if before == "" {
		return "____"
	}
	return before + " ____"
}

func mustCoverGroup(g model.QuestionGroup, segs []Segment) {
	if len(segs) != g.EndNumber-g.StartNumber+1 {
		panic(fmt.Sprintf("extract: group %s produced %d segments", g.ID(), len(segs)))
	}
	for i, s := range segs {
		if s.Number != g.StartNumber+i {
			panic(fmt.Sprintf("extract: group %s segment %d has number %d", g.ID(), i, s.Number))
		}
	}
}
