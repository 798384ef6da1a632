package strategy

import "github.com/ppiankov/qextract/internal/model"

// MixedEssayChoice splits the document at section headers. Choice sections
// get option extraction; essay sections become essay records.
type MixedEssayChoice struct{}

// NewMixedEssayChoice creates the mixed essay/choice strategy
func NewMixedEssayChoice() *MixedEssayChoice { return &MixedEssayChoice{} }

// Name returns the strategy name
func (s *MixedEssayChoice) Name() string { return NameMixedEssayChoice }

// CanHandle claims mixed and essay-only documents
func (s *MixedEssayChoice) CanHandle(category model.FormatCategory) bool {
	return category == model.FormatMixedEssayChoice || category == model.FormatEssay
}

// Extract processes each section on its own
func (s *MixedEssayChoice) Extract(env Env, text string) Candidate {
	c := newCollector(env)
	for _, sec := range splitSections(env.Lib, text) {
		c.standalone(sec.text, sec.kind == sectionEssay)
	}
	return c.candidate(s.Name())
}

// Comprehensive is MixedEssayChoice plus group detection, in cloze mode,
// inside every non-essay section.
type Comprehensive struct{}

// NewComprehensive creates the comprehensive strategy
func NewComprehensive() *Comprehensive { return &Comprehensive{} }

// Name returns the strategy name
func (s *Comprehensive) Name() string { return NameComprehensive }

// CanHandle claims comprehensive documents
func (s *Comprehensive) CanHandle(category model.FormatCategory) bool {
	return category == model.FormatComprehensive
}

// Extract processes sections, then groups inside non-essay sections
func (s *Comprehensive) Extract(env Env, text string) Candidate {
	c := newCollector(env)
	sections := splitSections(env.Lib, text)
	for _, sec := range sections {
		c.standalone(sec.text, sec.kind == sectionEssay)
	}
	for _, sec := range sections {
		if sec.kind != sectionEssay {
			c.grouped(sec.text, true)
		}
	}
	return c.candidate(s.Name())
}
