package patterns

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ppiankov/qextract/internal/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// MaxQuestionNumber is the highest question number the library prepares
// member markers for.
const MaxQuestionNumber = 100

// Matcher is a compiled library entry
type Matcher struct {
	ID     string
	Weight float64
	Re     *regexp.Regexp
}

// CategoryHint is a compiled filename hint
type CategoryHint struct {
	Matcher
	Category model.FormatCategory
}

// Library is an immutable, compiled pattern catalog. It is safe for
// concurrent use; accessors return shared slices that callers must not modify.
type Library struct {
	def         Definition
	fingerprint string

	groupMarkers    []Matcher
	questionMarkers []Matcher
	memberMarkers   map[int][]Matcher
	clozeMarkers    map[int][]Matcher
	optionMarkers   map[string]Matcher

	essayMarkers         []Matcher
	choiceMarkers        []Matcher
	comprehensiveMarkers []Matcher
	fillBlankMarkers     []Matcher
	noiseLines           []Matcher
	filenameHints        []CategoryHint

	glyphs         []GlyphRange
	lexicon        []string
	denylist       *regexp.Regexp
	interrogatives *regexp.Regexp

	skipped []string
}

// Compile builds a Library from a definition. Entries that fail to compile
// are logged and skipped; the rest of the library is still usable.
func Compile(def Definition, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &compiler{logger: logger.With(zap.String("library", def.Version))}

	lib := &Library{
		def:                  def,
		fingerprint:          fingerprint(def),
		groupMarkers:         c.compileAll("group_markers", def.GroupMarkers, "start", "end"),
		questionMarkers:      c.compileAll("question_markers", def.QuestionMarkers, "num"),
		memberMarkers:        c.compileTemplates("member_templates", def.MemberTemplates),
		clozeMarkers:         c.compileTemplates("cloze_templates", def.ClozeTemplates, "num"),
		optionMarkers:        make(map[string]Matcher),
		essayMarkers:         c.compileAll("essay_markers", def.EssayMarkers),
		choiceMarkers:        c.compileAll("choice_markers", def.ChoiceMarkers),
		comprehensiveMarkers: c.compileAll("comprehensive_markers", def.ComprehensiveMarkers),
		fillBlankMarkers:     c.compileAll("fill_blank_markers", def.FillBlankMarkers),
		noiseLines:           c.compileAll("noise_lines", def.NoiseLines),
		glyphs:               append([]GlyphRange(nil), def.OptionGlyphs...),
		lexicon:              append([]string(nil), def.OptionLexicon...),
		denylist:             lexiconRegexp(def.Denylist),
		interrogatives:       lexiconRegexp(def.Interrogatives),
	}

	for _, m := range c.compileAll("option_markers", def.OptionMarkers, "letter") {
		lib.optionMarkers[m.ID] = m
	}

	for _, h := range def.FilenameHints {
		m, err := compileOne(PatternDef{ID: h.ID, Expr: h.Expr})
		if err != nil {
			c.skip("filename_hints", h.ID, err)
			continue
		}
		lib.filenameHints = append(lib.filenameHints, CategoryHint{Matcher: m, Category: h.Category})
	}

	lib.skipped = c.skipped
	return lib
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the built-in library, compiled once per process
func Default() *Library {
	defaultOnce.Do(func() {
		defaultLib = Compile(DefaultDefinition(), nil)
	})
	return defaultLib
}

// Version returns the definition version
func (l *Library) Version() string { return l.def.Version }

// Fingerprint is the version plus a digest of every entry. Two libraries
// sharing a version but not their entries get different fingerprints.
func (l *Library) Fingerprint() string { return l.fingerprint }

func fingerprint(def Definition) string {
	data, err := yaml.Marshal(def)
	if err != nil {
		return def.Version
	}
	sum := sha256.Sum256(data)
	return def.Version + "@" + hex.EncodeToString(sum[:8])
}

// Definition returns a copy of the source definition
func (l *Library) Definition() Definition { return l.def }

// Skipped lists "section/id" of entries that failed to compile
func (l *Library) Skipped() []string { return l.skipped }

// GroupMarkers returns group-range patterns in priority order
func (l *Library) GroupMarkers() []Matcher { return l.groupMarkers }

// QuestionMarkers returns standalone numbering patterns in priority order
func (l *Library) QuestionMarkers() []Matcher { return l.questionMarkers }

// MemberMarkers returns explicit "question n" markers for number n
func (l *Library) MemberMarkers(n int) []Matcher { return l.memberMarkers[n] }

// ClozeMarkers returns inline cloze markers for number n
func (l *Library) ClozeMarkers(n int) []Matcher { return l.clozeMarkers[n] }

// OptionMarker returns the option marker with the given ID
func (l *Library) OptionMarker(id string) (Matcher, bool) {
	m, ok := l.optionMarkers[id]
	return m, ok
}

// EssayMarkers returns essay section markers
func (l *Library) EssayMarkers() []Matcher { return l.essayMarkers }

// ChoiceMarkers returns choice section markers
func (l *Library) ChoiceMarkers() []Matcher { return l.choiceMarkers }

// ComprehensiveMarkers returns comprehensive section markers
func (l *Library) ComprehensiveMarkers() []Matcher { return l.comprehensiveMarkers }

// FillBlankMarkers returns blank markers used to type fill-in questions
func (l *Library) FillBlankMarkers() []Matcher { return l.fillBlankMarkers }

// NoiseLines returns footer/page-number line patterns
func (l *Library) NoiseLines() []Matcher { return l.noiseLines }

// FilenameHints returns filename hint patterns
func (l *Library) FilenameHints() []CategoryHint { return l.filenameHints }

// OptionLexicon returns probable option-opening words
func (l *Library) OptionLexicon() []string { return l.lexicon }

// IsOptionGlyph reports whether r is used as an option bullet
func (l *Library) IsOptionGlyph(r rune) bool {
	for _, g := range l.glyphs {
		if r >= g.From && r <= g.To {
			return true
		}
	}
	return false
}

// HasOptionGlyph reports whether text contains any option glyph
func (l *Library) HasOptionGlyph(text string) bool {
	return strings.IndexFunc(text, l.IsOptionGlyph) >= 0
}

// HasInterrogative reports whether text contains an interrogative marker
func (l *Library) HasInterrogative(text string) bool {
	return l.interrogatives != nil && l.interrogatives.MatchString(text)
}

// DenylistHit returns the first metadata keyword found in text
func (l *Library) DenylistHit(text string) (string, bool) {
	if l.denylist == nil {
		return "", false
	}
	hit := l.denylist.FindString(text)
	return hit, hit != ""
}

// AnyMatch returns the ID of the first matcher that matches text
func AnyMatch(matchers []Matcher, text string) (string, bool) {
	for _, m := range matchers {
		if m.Re.MatchString(text) {
			return m.ID, true
		}
	}
	return "", false
}

type compiler struct {
	logger  *zap.Logger
	skipped []string
}

func (c *compiler) skip(section, id string, err error) {
	c.logger.Warn("skipping pattern",
		zap.String("section", section),
		zap.String("id", id),
		zap.Error(err))
	c.skipped = append(c.skipped, section+"/"+id)
}

func (c *compiler) compileAll(section string, defs []PatternDef, groups ...string) []Matcher {
	out := make([]Matcher, 0, len(defs))
	for _, d := range defs {
		m, err := compileOne(d, groups...)
		if err != nil {
			c.skip(section, d.ID, err)
			continue
		}
		out = append(out, m)
	}
	return out
}

// compileTemplates expands {n} for every number up to MaxQuestionNumber.
// A template is validated once with n=1; a bad template is skipped entirely.
func (c *compiler) compileTemplates(section string, defs []PatternDef, groups ...string) map[int][]Matcher {
	valid := make([]PatternDef, 0, len(defs))
	for _, d := range defs {
		if !strings.Contains(d.Expr, "{n}") {
			c.skip(section, d.ID, fmt.Errorf("template has no {n} placeholder"))
			continue
		}
		if _, err := compileOne(expand(d, 1), groups...); err != nil {
			c.skip(section, d.ID, err)
			continue
		}
		valid = append(valid, d)
	}

	out := make(map[int][]Matcher, MaxQuestionNumber)
	for n := 1; n <= MaxQuestionNumber; n++ {
		for _, d := range valid {
			m, err := compileOne(expand(d, n), groups...)
			if err != nil {
				continue
			}
			out[n] = append(out[n], m)
		}
	}
	return out
}

func expand(d PatternDef, n int) PatternDef {
	d.Expr = strings.ReplaceAll(d.Expr, "{n}", strconv.Itoa(n))
	return d
}

func compileOne(d PatternDef, groups ...string) (Matcher, error) {
	if d.ID == "" {
		return Matcher{}, fmt.Errorf("pattern has no id")
	}
	re, err := regexp.Compile(d.Expr)
	if err != nil {
		return Matcher{}, fmt.Errorf("compile %q: %w", d.ID, err)
	}
	for _, g := range groups {
		if re.SubexpIndex(g) < 0 {
			return Matcher{}, fmt.Errorf("pattern %q lacks named group %q", d.ID, g)
		}
	}
	return Matcher{ID: d.ID, Weight: d.Weight, Re: re}, nil
}

// lexiconRegexp builds one case-insensitive alternation. Pure-ASCII words are
// bounded by \b so "how" does not fire inside "show".
func lexiconRegexp(terms []string) *regexp.Regexp {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted := regexp.QuoteMeta(t)
		if isWordy(t) {
			quoted = `\b` + quoted + `\b`
		}
		parts = append(parts, quoted)
	}
	if len(parts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
}

func isWordy(t string) bool {
	return isASCIIWord(t[0]) && isASCIIWord(t[len(t)-1])
}

func isASCIIWord(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
