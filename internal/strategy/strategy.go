// Package strategy runs complete extraction pipelines, one per document
// dialect, and merges their per-number results.
package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
	"github.com/ppiankov/qextract/internal/score"
)

// Strategy names
const (
	NameStandard         = "standard"
	NameEmbeddedCloze    = "embeddedCloze"
	NameMixedEssayChoice = "mixedEssayChoice"
	NameComprehensive    = "comprehensive"
)

// ErrUnknownStrategy is returned for a strategy name nobody registered
var ErrUnknownStrategy = errors.New("unknown strategy")

// Env is what every strategy reads. Strategies keep no state of their own.
type Env struct {
	Lib    *patterns.Library
	Bounds score.Bounds
}

// Candidate is one strategy's view of the whole document
type Candidate struct {
	Strategy  string
	Questions []model.Question // ordered by number
	Groups    []model.QuestionGroup
}

// Strategy defines one detector+segmenter+extractor pipeline
type Strategy interface {
	// Name returns the strategy name
	Name() string

	// CanHandle reports whether this is the preferred strategy for a category
	CanHandle(category model.FormatCategory) bool

	// Extract runs the pipeline over normalized document text
	Extract(env Env, text string) Candidate
}

// Registry holds the registered strategies
type Registry struct {
	strategies []Strategy
	fallback   Strategy
}

// NewRegistry creates a registry with the built-in strategies
func NewRegistry() *Registry {
	r := &Registry{}

	r.Register(NewEmbeddedCloze())
	r.Register(NewMixedEssayChoice())
	r.Register(NewComprehensive())

	// Standard is both the fallback and the baseline run
	r.fallback = NewStandard()
	r.Register(r.fallback)

	return r
}

// Register adds a strategy. Earlier registrations win CanHandle lookups.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// Get returns the strategy with the given name
func (r *Registry) Get(name string) (Strategy, error) {
	for _, s := range r.strategies {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Names lists registered strategy names in registration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Primary returns the preferred strategy for a category
func (r *Registry) Primary(category model.FormatCategory) Strategy {
	for _, s := range r.strategies {
		if s.CanHandle(category) {
			return s
		}
	}
	return r.fallback
}

// Baseline returns the strategy that always runs
func (r *Registry) Baseline() Strategy {
	return r.fallback
}

// sortQuestions orders questions numerically by Number
func sortQuestions(qs []model.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		return questionNumber(qs[i]) < questionNumber(qs[j])
	})
}

func questionNumber(q model.Question) int {
	n, err := strconv.Atoi(q.Number)
	if err != nil {
		return 0
	}
	return n
}
