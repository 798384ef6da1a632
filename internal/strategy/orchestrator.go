package strategy

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/qextract/internal/model"
)

// Outcome is the merged result of one orchestrated run
type Outcome struct {
	Primary   string
	Ran       []string
	Questions []model.Question
	Groups    []model.QuestionGroup
}

// Orchestrator runs the primary strategy and the baseline and merges them
type Orchestrator struct {
	registry *Registry
	env      Env
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator over a registry
func NewOrchestrator(registry *Registry, env Env, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{registry: registry, env: env, logger: logger}
}

// Run extracts with primary first, then the baseline when it differs.
// Each strategy runs exactly once.
func (o *Orchestrator) Run(text string, primary Strategy) Outcome {
	runs := []Strategy{primary}
	if base := o.registry.Baseline(); base.Name() != primary.Name() {
		runs = append(runs, base)
	}

	candidates := make([]Candidate, 0, len(runs))
	ran := make([]string, 0, len(runs))
	for _, s := range runs {
		start := time.Now()
		c := s.Extract(o.env, text)
		o.logger.Debug("strategy finished",
			zap.String("strategy", s.Name()),
			zap.Int("questions", len(c.Questions)),
			zap.Int("groups", len(c.Groups)),
			zap.Duration("took", time.Since(start)))
		candidates = append(candidates, c)
		ran = append(ran, s.Name())
	}

	questions, groups := Merge(candidates)
	return Outcome{
		Primary:   primary.Name(),
		Ran:       ran,
		Questions: questions,
		Groups:    groups,
	}
}

// Merge keeps, per question number, the record with the highest confidence.
// Candidates are in preference order: on an exact tie the earlier one wins.
// Groups are deduplicated by range.
func Merge(candidates []Candidate) ([]model.Question, []model.QuestionGroup) {
	byNum := make(map[string]model.Question)
	for _, c := range candidates {
		for _, q := range c.Questions {
			if cur, ok := byNum[q.Number]; ok && cur.Confidence >= q.Confidence {
				continue
			}
			byNum[q.Number] = q
		}
	}

	questions := make([]model.Question, 0, len(byNum))
	for _, q := range byNum {
		questions = append(questions, q)
	}
	sortQuestions(questions)

	seen := make(map[string]bool)
	var groups []model.QuestionGroup
	for _, c := range candidates {
		for _, g := range c.Groups {
			if seen[g.ID()] {
				continue
			}
			seen[g.ID()] = true
			groups = append(groups, g)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].StartNumber < groups[j].StartNumber })

	return questions, groups
}
