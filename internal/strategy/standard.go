package strategy

import "github.com/ppiankov/qextract/internal/model"

// Standard reads explicit group headers plus plain numbered questions. It is
// the baseline that runs for every document.
type Standard struct{}

// NewStandard creates the standard strategy
func NewStandard() *Standard { return &Standard{} }

// Name returns the strategy name
func (s *Standard) Name() string { return NameStandard }

// CanHandle claims plain choice and unclassified documents
func (s *Standard) CanHandle(category model.FormatCategory) bool {
	return category == model.FormatPlainChoice || category == model.FormatUnknown
}

// Extract runs standalone segmentation, then lets group members replace
// standalone records inside their ranges.
func (s *Standard) Extract(env Env, text string) Candidate {
	c := newCollector(env)
	c.standalone(text, false)
	c.grouped(text, false)
	return c.candidate(s.Name())
}

// EmbeddedCloze is Standard with inline-number fallback inside groups
type EmbeddedCloze struct{}

// NewEmbeddedCloze creates the embedded cloze strategy
func NewEmbeddedCloze() *EmbeddedCloze { return &EmbeddedCloze{} }

// Name returns the strategy name
func (s *EmbeddedCloze) Name() string { return NameEmbeddedCloze }

// CanHandle claims embedded cloze documents
func (s *EmbeddedCloze) CanHandle(category model.FormatCategory) bool {
	return category == model.FormatEmbeddedCloze
}

// Extract segments groups in cloze mode
func (s *EmbeddedCloze) Extract(env Env, text string) Candidate {
	c := newCollector(env)
	c.standalone(text, false)
	c.grouped(text, true)
	return c.candidate(s.Name())
}
