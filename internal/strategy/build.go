package strategy

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/qextract/internal/extract"
	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
	"github.com/ppiankov/qextract/internal/score"
)

// collector accumulates one strategy's records keyed by number
type collector struct {
	env    Env
	byNum  map[int]model.Question
	groups []model.QuestionGroup
}

func newCollector(env Env) *collector {
	return &collector{env: env, byNum: make(map[int]model.Question)}
}

// keep stores q unless a record for the same number already scores higher
func (c *collector) keep(n int, q model.Question) {
	if cur, ok := c.byNum[n]; ok && cur.Confidence >= q.Confidence {
		return
	}
	c.byNum[n] = q
}

// standalone adds numbered questions found outside groups. Essay sections
// skip option extraction.
func (c *collector) standalone(text string, essay bool) {
	for _, seg := range extract.SegmentStandalone(c.env.Lib, text, c.env.Bounds.MinLength) {
		var q model.Question
		if essay {
			q = essayQuestion(c.env, seg)
		} else {
			q = choiceQuestion(c.env, seg)
		}
		c.keep(seg.Number, q)
	}
}

// grouped adds every member of every detected group. A member replaces the
// standalone record for its number unless that record scores higher or the
// member is only a placeholder; the kept standalone record is then tagged
// with the group.
func (c *collector) grouped(text string, cloze bool) {
	for _, g := range extract.DetectGroups(c.env.Lib, text) {
		c.groups = append(c.groups, g)
		for _, seg := range extract.SegmentGroup(c.env.Lib, g, cloze) {
			var q model.Question
			if seg.Placeholder {
				q = placeholder(seg, cloze)
			} else {
				q = choiceQuestion(c.env, seg)
			}
			if cur, ok := c.byNum[seg.Number]; ok && !cur.IsGroupMember &&
				(seg.Placeholder || cur.Confidence > q.Confidence) {
				q = cur
			}
			q.IsGroupMember = true
			q.GroupID = g.ID()
			c.byNum[seg.Number] = q
		}
	}
}

func (c *collector) candidate(name string) Candidate {
	nums := make([]int, 0, len(c.byNum))
	for n := range c.byNum {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	qs := make([]model.Question, 0, len(nums))
	for _, n := range nums {
		q := c.byNum[n]
		q.Strategy = name
		qs = append(qs, q)
	}

	groups := append([]model.QuestionGroup(nil), c.groups...)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].StartNumber < groups[j].StartNumber })
	return Candidate{Strategy: name, Questions: qs, Groups: groups}
}

func choiceQuestion(env Env, seg extract.Segment) model.Question {
	res := extract.ExtractOptions(env.Lib, seg.Text)

	text := res.Stem
	switch {
	case seg.Context != "":
		text = strings.TrimSpace(seg.Context + " " + text)
	case strings.TrimSpace(text) == "" && seg.Blank != "":
		text = seg.Blank
	}
	opts := res.Options
	if opts == nil {
		opts = model.Options{}
	}

	q := model.Question{
		Number:       strconv.Itoa(seg.Number),
		Text:         text,
		Options:      opts,
		Type:         questionType(env.Lib, text, opts),
		OptionMethod: res.Method,
	}
	q.Confidence = score.Confidence(env.Lib, q, env.Bounds)
	return q
}

func essayQuestion(env Env, seg extract.Segment) model.Question {
	q := model.Question{
		Number:  strconv.Itoa(seg.Number),
		Text:    strings.TrimSpace(seg.Text),
		Options: model.Options{},
		Type:    model.QuestionTypeEssay,
	}
	q.Confidence = score.Confidence(env.Lib, q, env.Bounds)
	return q
}

// placeholder stands in for a declared group member with no text
func placeholder(seg extract.Segment, cloze bool) model.Question {
	typ := model.QuestionTypeMultipleChoice
	if cloze {
		typ = model.QuestionTypeFillBlank
	}
	return model.Question{
		Number:  strconv.Itoa(seg.Number),
		Options: model.Options{},
		Type:    typ,
	}
}

// questionType: two or more real options make a choice question; otherwise a
// blank marker makes it fill-in, and anything else is an essay.
func questionType(lib *patterns.Library, text string, opts model.Options) model.QuestionType {
	if opts.NonEmpty() >= 2 {
		return model.QuestionTypeMultipleChoice
	}
	if _, ok := patterns.AnyMatch(lib.FillBlankMarkers(), text); ok {
		return model.QuestionTypeFillBlank
	}
	return model.QuestionTypeEssay
}
