// Package pipeline is the entry point of the extraction core: normalize,
// classify, run strategies, merge and validate.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/qextract/internal/cache"
	"github.com/ppiankov/qextract/internal/classify"
	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
	"github.com/ppiankov/qextract/internal/score"
	"github.com/ppiankov/qextract/internal/strategy"
	"github.com/ppiankov/qextract/internal/validate"
)

// ErrEmptyInput marks a document with no text. Extraction still returns an
// empty result for it; the error is for callers that want to report it.
var ErrEmptyInput = errors.New("empty input")

// Options are the per-call extraction settings
type Options struct {
	MinQuestionLength int
	MaxQuestionLength int
	ValidationLevel   validate.Level
	ForceStrategy     string // bypasses the classifier when set
	FilenameHint      string // classifier fallback
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	b := score.DefaultBounds()
	return Options{
		MinQuestionLength: b.MinLength,
		MaxQuestionLength: b.MaxLength,
		ValidationLevel:   validate.LevelStandard,
	}
}

// OptionsFromConfig maps the extraction config section onto Options
func OptionsFromConfig(cfg model.ExtractionConfig) (Options, error) {
	level, err := validate.ParseLevel(cfg.ValidationLevel)
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions()
	if cfg.MinQuestionLength > 0 {
		opts.MinQuestionLength = cfg.MinQuestionLength
	}
	if cfg.MaxQuestionLength > 0 {
		opts.MaxQuestionLength = cfg.MaxQuestionLength
	}
	opts.ValidationLevel = level
	opts.ForceStrategy = cfg.ForceStrategy
	return opts, nil
}

// Fingerprint identifies the settings that change extraction output
func (o Options) Fingerprint() string {
	b := o.bounds()
	return fmt.Sprintf("min=%d;max=%d;level=%s;strategy=%s;hint=%s",
		b.MinLength, b.MaxLength, o.ValidationLevel, o.ForceStrategy, o.FilenameHint)
}

func (o Options) bounds() score.Bounds {
	b := score.DefaultBounds()
	if o.MinQuestionLength > 0 {
		b.MinLength = o.MinQuestionLength
	}
	if o.MaxQuestionLength > 0 {
		b.MaxLength = o.MaxQuestionLength
	}
	return b
}

// Result is everything one extraction run produced
type Result struct {
	DocumentID string                `json:"document_id,omitempty"`
	SourcePath string                `json:"source_path,omitempty"`
	Subject    string                `json:"subject,omitempty"`
	Library    string                `json:"library_version"`
	Format     model.DetectedFormat  `json:"format"`
	Primary    string                `json:"primary_strategy,omitempty"`
	Strategies []string              `json:"strategies,omitempty"`
	Groups     []model.QuestionGroup `json:"groups"`
	Questions  []model.Question      `json:"questions"`
	Report     model.QualityReport   `json:"report"`
	Duration   time.Duration         `json:"duration_ns"`
}

// Extractor holds the immutable collaborators of the core. It is safe for
// concurrent use.
type Extractor struct {
	lib      *patterns.Library
	registry *strategy.Registry
	logger   *zap.Logger
}

// NewExtractor creates an extractor. A nil library means patterns.Default()
// and a nil logger discards output.
func NewExtractor(lib *patterns.Library, logger *zap.Logger) *Extractor {
	if lib == nil {
		lib = patterns.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		lib:      lib,
		registry: strategy.NewRegistry(),
		logger:   logger,
	}
}

// Library returns the pattern library in use
func (e *Extractor) Library() *patterns.Library { return e.lib }

// Registry returns the strategy registry in use
func (e *Extractor) Registry() *strategy.Registry { return e.registry }

// Extract is the core contract: questions ordered by number plus the report.
// Empty or blank text yields no questions and an empty report.
func (e *Extractor) Extract(text string, opts Options) ([]model.Question, model.QualityReport) {
	res := e.Run(model.RawDocument{Text: text}, opts)
	return res.Questions, res.Report
}

// Run extracts one document and keeps the intermediate detail
func (e *Extractor) Run(doc model.RawDocument, opts Options) *Result {
	start := time.Now()
	logger := e.logger.With(zap.String("doc", doc.ID))

	res := &Result{
		DocumentID: doc.ID,
		SourcePath: doc.SourcePath,
		Subject:    doc.Subject,
		Library:    e.lib.Version(),
		Format:     model.DetectedFormat{Category: model.FormatUnknown},
		Groups:     []model.QuestionGroup{},
		Questions:  []model.Question{},
		Report:     model.EmptyReport(),
	}

	text := patterns.Normalize(doc.Text)
	if strings.TrimSpace(text) == "" {
		logger.Debug("skipping empty document", zap.Error(ErrEmptyInput))
		res.Duration = time.Since(start)
		return res
	}

	hint := opts.FilenameHint
	if hint == "" {
		hint = doc.SourcePath
	}
	res.Format = classify.Classify(e.lib, text, hint)

	primary := e.registry.Primary(res.Format.Category)
	if opts.ForceStrategy != "" {
		forced, err := e.registry.Get(opts.ForceStrategy)
		if err != nil {
			logger.Warn("ignoring forced strategy", zap.Error(err))
		} else {
			primary = forced
		}
	}

	env := strategy.Env{Lib: e.lib, Bounds: opts.bounds()}
	out := strategy.NewOrchestrator(e.registry, env, logger).Run(text, primary)

	res.Primary = out.Primary
	res.Strategies = out.Ran
	res.Questions = out.Questions
	if len(out.Groups) > 0 {
		res.Groups = out.Groups
	}
	res.Report = validate.New(e.lib, opts.ValidationLevel, env.Bounds).Validate(res.Questions)
	res.Duration = time.Since(start)

	logger.Debug("document extracted",
		zap.String("format", string(res.Format.Category)),
		zap.String("primary", res.Primary),
		zap.Int("questions", len(res.Questions)),
		zap.Int("failed", res.Report.Failed),
		zap.Duration("took", res.Duration))
	return res
}

// RunCached serves a stored result for the same library, options and text
// when c has one; otherwise it runs the extraction and stores the result.
// The source path counts as an option when it is the effective filename
// hint. The second return reports a cache hit.
func (e *Extractor) RunCached(c cache.Cache, doc model.RawDocument, opts Options) (*Result, bool) {
	if opts.FilenameHint == "" {
		opts.FilenameHint = doc.SourcePath
	}
	key := cache.Key(e.lib.Fingerprint(), opts.Fingerprint(), doc.Text)

	var hit Result
	found, err := cache.GetJSON(c, key, &hit)
	if err != nil {
		e.logger.Debug("discarding unreadable cache entry", zap.String("doc", doc.ID), zap.Error(err))
	}
	if found && err == nil {
		hit.DocumentID = doc.ID
		hit.SourcePath = doc.SourcePath
		hit.Subject = doc.Subject
		return &hit, true
	}

	res := e.Run(doc, opts)
	if err := cache.SetJSON(c, key, res, 0); err != nil {
		e.logger.Warn("cache store failed", zap.String("doc", doc.ID), zap.Error(err))
	}
	return res, false
}

// Extract runs the core contract with the built-in pattern library
func Extract(text string, opts Options) ([]model.Question, model.QualityReport) {
	return defaultExtractor().Extract(text, opts)
}

// AttachAnswers returns a copy of questions with Answer set from a
// number->letter map. Numbers missing from the map are left unanswered.
func AttachAnswers(questions []model.Question, answers map[string]string) []model.Question {
	out := make([]model.Question, len(questions))
	for i, q := range questions {
		q.Options = append(model.Options{}, q.Options...)
		if a, ok := answers[q.Number]; ok {
			q.Answer = strings.ToUpper(strings.TrimSpace(a))
		}
		out[i] = q
	}
	return out
}
