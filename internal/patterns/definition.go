package patterns

import "github.com/ppiankov/qextract/internal/model"

// PatternDef is one named regular expression in a library definition
type PatternDef struct {
	ID     string  `yaml:"id"`
	Expr   string  `yaml:"expr"`
	Weight float64 `yaml:"weight,omitempty"` // Detector confidence when this pattern matches
}

// HintDef maps a filename pattern to a format category
type HintDef struct {
	ID       string               `yaml:"id"`
	Expr     string               `yaml:"expr"`
	Category model.FormatCategory `yaml:"category"`
}

// GlyphRange is an inclusive code point range of option bullet glyphs
type GlyphRange struct {
	From rune `yaml:"from"`
	To   rune `yaml:"to"`
}

// Definition is the serializable form of a pattern library. Order inside
// every list is significant: earlier entries win ties.
type Definition struct {
	Version              string       `yaml:"version"`
	GroupMarkers         []PatternDef `yaml:"group_markers"`         // Named groups: start, end
	QuestionMarkers      []PatternDef `yaml:"question_markers"`      // Named group: num
	MemberTemplates      []PatternDef `yaml:"member_templates"`      // {n} placeholder
	ClozeTemplates       []PatternDef `yaml:"cloze_templates"`       // {n} placeholder, named group: num
	OptionMarkers        []PatternDef `yaml:"option_markers"`        // Named group: letter
	EssayMarkers         []PatternDef `yaml:"essay_markers"`
	ChoiceMarkers        []PatternDef `yaml:"choice_markers"`
	ComprehensiveMarkers []PatternDef `yaml:"comprehensive_markers"`
	FillBlankMarkers     []PatternDef `yaml:"fill_blank_markers"`
	NoiseLines           []PatternDef `yaml:"noise_lines"` // Matched against single lines
	FilenameHints        []HintDef    `yaml:"filename_hints"`
	OptionGlyphs         []GlyphRange `yaml:"option_glyphs"`
	OptionLexicon        []string     `yaml:"option_lexicon"`
	Denylist             []string     `yaml:"denylist"`
	Interrogatives       []string     `yaml:"interrogatives"`
}

// Option marker IDs the extractor looks up
const (
	OptionBracketed = "bracketed"
	OptionLine      = "line"
	OptionLoose     = "loose"
)

// DefaultDefinition returns the built-in library definition
func DefaultDefinition() Definition {
	return Definition{
		Version: "2024.1",
		GroupMarkers: []PatternDef{
			{ID: "group-en-range", Weight: 0.9, Expr: `(?i)questions?\s*(?:nos?\.?\s*)?(?P<start>\d{1,3})\s*(?:-|–|—|~|to|through|and)\s*(?P<end>\d{1,3})`},
			{ID: "group-zh-range", Weight: 0.9, Expr: `第\s*(?P<start>\d{1,3})\s*題?\s*(?:至|到|-|–|~)\s*第?\s*(?P<end>\d{1,3})\s*題`},
			{ID: "group-label", Weight: 0.8, Expr: `(?i)(?:題組|group)\s*:?\s*[(\[]?\s*(?P<start>\d{1,3})\s*(?:-|–|~|至|到)\s*(?P<end>\d{1,3})`},
			{ID: "group-paren-range", Weight: 0.6, Expr: `(?m)^[ \t]*[(\[]\s*(?P<start>\d{1,3})\s*(?:-|–|~)\s*(?P<end>\d{1,3})\s*[)\]]`},
		},
		QuestionMarkers: []PatternDef{
			{ID: "colon", Expr: `(?m)^[ \t]*(?P<num>\d+)[ \t]*:`},
			{ID: "dot", Expr: `(?m)^[ \t]*(?P<num>\d+)[ \t]*[.、]`},
			{ID: "paren", Expr: `(?m)^[ \t]*\([ \t]*(?P<num>\d+)[ \t]*\)`},
			{ID: "line-leading", Expr: `(?m)^[ \t]*(?P<num>\d+)[ \t]+`},
			{ID: "numbered-label", Expr: `(?im)(?:^|[ \t])(?:no\.|q\.?|question)[ \t]*(?P<num>\d+)\b[ \t]*[.:)]?`},
			{ID: "zh-ordinal", Expr: `第[ \t]*(?P<num>\d+)[ \t]*題[ \t]*[.:、]?`},
		},
		MemberTemplates: []PatternDef{
			{ID: "member-label", Expr: `(?im)(?:^|[ \t])(?:question|q\.?|no\.)[ \t]*{n}\b[ \t]*[.:)]?[ \t]*`},
			{ID: "member-dot", Expr: `(?m)^[ \t]*{n}[ \t]*[.:、)][ \t]*`},
			{ID: "member-paren", Expr: `(?m)^[ \t]*\([ \t]*{n}[ \t]*\)[ \t]*`},
			{ID: "member-zh", Expr: `第[ \t]*{n}[ \t]*題[ \t]*[.:、]?[ \t]*`},
		},
		ClozeTemplates: []PatternDef{
			{ID: "cloze-underscore", Expr: `_{2,}[ \t]*(?P<num>{n})[ \t]*_{2,}`},
			{ID: "cloze-paren", Expr: `\([ \t]*(?P<num>{n})[ \t]*\)`},
			{ID: "cloze-bare", Expr: `(?:^|\s)(?P<num>{n})(?:\s|$)`},
		},
		OptionMarkers: []PatternDef{
			{ID: OptionBracketed, Expr: `[(\[][ \t]*(?P<letter>[A-E])[ \t]*[)\]]`},
			{ID: OptionLine, Expr: `(?m)^[ \t]*(?P<letter>[A-E]|[1-4])[ \t]*[.:、)][ \t]*`},
			{ID: OptionLoose, Expr: `(?:^|[\s(\[])(?P<letter>[A-E])[ \t]*[.)\]:、]`},
		},
		EssayMarkers: []PatternDef{
			{ID: "essay-en", Expr: `(?i)\bessay\b`},
			{ID: "essay-non-choice", Expr: `(?i)\bnon[- ]?(?:multiple[- ])?choice\b`},
			{ID: "essay-short-answer", Expr: `(?i)\bshort[- ]answer\b`},
			{ID: "essay-written", Expr: `(?i)\bwritten response\b`},
			{ID: "essay-zh", Expr: `非選擇題|問答題|申論題|簡答題|作文`},
		},
		ChoiceMarkers: []PatternDef{
			{ID: "choice-en", Expr: `(?i)\bmultiple[- ]choice\b`},
			{ID: "choice-instruction", Expr: `(?i)\bchoose the (?:best|correct|most appropriate) answer\b`},
			{ID: "choice-zh", Expr: `(?:^|[^非])選擇題|單選題|多選題`},
		},
		ComprehensiveMarkers: []PatternDef{
			{ID: "comprehensive-en", Expr: `(?i)\bcomprehensive\b`},
			{ID: "comprehensive-integrated", Expr: `(?i)\bintegrated (?:section|questions)\b`},
			{ID: "comprehensive-zh", Expr: `綜合題|綜合測驗`},
		},
		FillBlankMarkers: []PatternDef{
			{ID: "blank-underscore", Expr: `_{3,}`},
			{ID: "blank-paren", Expr: `\([ \t]{1,}\)`},
			{ID: "blank-instruction", Expr: `(?i)fill in the blanks?|填充`},
		},
		NoiseLines: []PatternDef{
			{ID: "noise-dashed-page", Expr: `^[ \t]*-[ \t]*\d{1,3}[ \t]*-[ \t]*$`},
			{ID: "noise-page-of", Expr: `(?i)^[ \t]*page[ \t]*\d+(?:[ \t]*(?:of|/)[ \t]*\d+)?[ \t]*$`},
			{ID: "noise-page-fraction", Expr: `^[ \t]*\d{1,3}[ \t]*/[ \t]*\d{1,3}[ \t]*$`},
			{ID: "noise-zh-page", Expr: `^[ \t]*(?:第[ \t]*\d+[ \t]*頁|共[ \t]*\d+[ \t]*頁)[ \t,，、/]*(?:共[ \t]*\d+[ \t]*頁)?[ \t]*$`},
			{ID: "noise-turn-over", Expr: `(?i)please turn over|請翻頁|背面尚有試題|試題結束|end of (?:paper|exam)`},
			{ID: "noise-copyright", Expr: `(?i)版權所有|all rights reserved`},
		},
		FilenameHints: []HintDef{
			{ID: "hint-cloze", Expr: `(?i)cloze|克漏字`, Category: model.FormatEmbeddedCloze},
			{ID: "hint-essay", Expr: `(?i)essay|作文|申論`, Category: model.FormatEssay},
			{ID: "hint-mixed", Expr: `(?i)mixed|混合`, Category: model.FormatMixedEssayChoice},
			{ID: "hint-choice", Expr: `(?i)choice|mcq|選擇`, Category: model.FormatPlainChoice},
		},
		OptionGlyphs: []GlyphRange{
			{From: 0xE000, To: 0xF8FF}, // Private use area (font-mapped bullets)
			{From: 0x24B6, To: 0x24BA}, // Ⓐ-Ⓔ
			{From: 0x24D0, To: 0x24D4}, // ⓐ-ⓔ
			{From: 0x2460, To: 0x2464}, // ①-⑤
			{From: 0x2474, To: 0x2478}, // ⑴-⑸
			{From: 0x2776, To: 0x277A}, // ❶-❺
		},
		OptionLexicon: []string{
			"甲", "乙", "丙", "丁", "戊",
			"A.", "B.", "C.", "D.", "E.",
			"A)", "B)", "C)", "D)", "E)",
			"a)", "b)", "c)", "d)", "e)",
		},
		Denylist: []string{
			"isbn", "copyright", "all rights reserved", "版權所有",
			"准考證", "考試時間", "試卷代號", "科目代碼",
			"exam code", "catalogue no", "catalog no",
			"answer sheet", "答案卡", "please turn over", "請翻頁",
		},
		Interrogatives: []string{
			"?", "which", "what", "who", "whom", "whose", "when", "where", "why", "how",
			"choose", "select", "identify", "explain", "describe",
			"下列", "何者", "哪", "什麼", "甚麼", "為何", "如何", "是否", "請問", "多少", "試問", "選出",
		},
	}
}
