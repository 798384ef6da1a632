package extract

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
)

// Passages shorter than this are usually a header line with no shared text.
const minPassageRunes = 20

// passageBreak separates passages joined by an overlap merge
const passageBreak = "\n\n"

type groupMarker struct {
	start, end  int // byte span of the marker
	first, last int
	patternID   string
	weight      float64
}

// DetectGroups finds explicit group headers ("questions 5 to 7") and returns
// one group per header, ordered by start number. Overlapping ranges are merged;
// a merge that would exceed model.MaxGroupSpan trims the later range instead.
func DetectGroups(lib *patterns.Library, text string) []model.QuestionGroup {
	markers := findGroupMarkers(lib, text)
	if len(markers) == 0 {
		return nil
	}

	groups := make([]model.QuestionGroup, 0, len(markers))
	for i, mk := range markers {
		stop := len(text)
		if i+1 < len(markers) {
			stop = markers[i+1].start
		}
		passage := strings.TrimSpace(Denoise(lib, text[mk.end:stop]))

		conf := mk.weight
		if conf <= 0 {
			conf = 0.5
		}
		if patterns.RuneLen(passage) < minPassageRunes {
			conf *= 0.5
		}

		groups = append(groups, model.QuestionGroup{
			StartNumber: mk.first,
			EndNumber:   mk.last,
			PassageText: passage,
			PatternID:   mk.patternID,
			Confidence:  conf,
		})
	}

	return mergeGroups(groups)
}

// findGroupMarkers runs every group pattern. A marker overlapping one found by
// an earlier pattern is ignored, so pattern order is priority order.
func findGroupMarkers(lib *patterns.Library, text string) []groupMarker {
	var markers []groupMarker
	for _, m := range lib.GroupMarkers() {
		si, ei := m.Re.SubexpIndex("start"), m.Re.SubexpIndex("end")
		for _, loc := range m.Re.FindAllStringSubmatchIndex(text, -1) {
			if loc[2*si] < 0 || loc[2*ei] < 0 {
				continue
			}
			first, err1 := strconv.Atoi(text[loc[2*si]:loc[2*si+1]])
			last, err2 := strconv.Atoi(text[loc[2*ei]:loc[2*ei+1]])
			if err1 != nil || err2 != nil {
				continue
			}
			g := model.QuestionGroup{StartNumber: first, EndNumber: last}
			if !g.Valid() || last > patterns.MaxQuestionNumber {
				continue
			}
			if overlapsMarker(markers, loc[0], loc[1]) {
				continue
			}
			markers = append(markers, groupMarker{
				start:     loc[0],
				end:       loc[1],
				first:     first,
				last:      last,
				patternID: m.ID,
				weight:    m.Weight,
			})
		}
	}

	sort.SliceStable(markers, func(i, j int) bool { return markers[i].start < markers[j].start })
	return markers
}

func overlapsMarker(markers []groupMarker, start, end int) bool {
	for _, mk := range markers {
		if start < mk.end && mk.start < end {
			return true
		}
	}
	return false
}

func mergeGroups(groups []model.QuestionGroup) []model.QuestionGroup {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].StartNumber < groups[j].StartNumber })

	out := make([]model.QuestionGroup, 0, len(groups))
	for _, g := range groups {
		if len(out) == 0 {
			out = append(out, g)
			continue
		}
		cur := &out[len(out)-1]
		if g.StartNumber > cur.EndNumber {
			out = append(out, g)
			continue
		}

		if max(g.EndNumber, cur.EndNumber)-cur.StartNumber <= model.MaxGroupSpan {
			cur.EndNumber = max(g.EndNumber, cur.EndNumber)
			cur.Confidence = max(g.Confidence, cur.Confidence)
			appendPassage(cur, g.PassageText)
			continue
		}

		g.StartNumber = cur.EndNumber + 1
		if g.StartNumber > g.EndNumber {
			continue
		}
		out = append(out, g)
	}
	return out
}

// appendPassage joins a merged group's passage onto cur and records where it
// begins so member spans never run across the join.
func appendPassage(cur *model.QuestionGroup, passage string) {
	switch {
	case passage == "" || passage == cur.PassageText:
	case cur.PassageText == "":
		cur.PassageText = passage
	default:
		cur.PassageBreaks = append(cur.PassageBreaks, len(cur.PassageText)+len(passageBreak))
		cur.PassageText += passageBreak + passage
	}
}

// passageEnd returns the first merged-passage boundary in (pos, limit]
func passageEnd(g model.QuestionGroup, pos, limit int) int {
	for _, b := range g.PassageBreaks {
		if b > pos && b < limit {
			return b
		}
	}
	return limit
}
