// Package validate checks extracted questions against per-level rules and
// aggregates the findings into a QualityReport. It never changes or drops
// a question.
package validate

import (
	"fmt"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
	"github.com/ppiankov/qextract/internal/score"
)

// Validator applies the rule groups of one level
type Validator struct {
	lib    *patterns.Library
	level  Level
	th     Thresholds
	bounds score.Bounds
}

// New creates a validator. An empty level means standard.
func New(lib *patterns.Library, level Level, bounds score.Bounds) *Validator {
	if level == "" {
		level = LevelStandard
	}
	return &Validator{
		lib:    lib,
		level:  level,
		th:     ThresholdsFor(level),
		bounds: bounds,
	}
}

// Level returns the validator's level
func (v *Validator) Level() Level { return v.level }

// Check returns every issue for one question, in rule order
func (v *Validator) Check(q model.Question) []model.ValidationIssue {
	var out []model.ValidationIssue
	for _, r := range rules {
		out = append(out, r(v, q)...)
	}
	return out
}

// Status is the worst severity among issues, or pass when there are none
func Status(issues []model.ValidationIssue) model.Severity {
	worst := model.SeverityPass
	for _, is := range issues {
		if is.Severity.Rank() > worst.Rank() {
			worst = is.Severity
		}
	}
	return worst
}

// Validate checks every question and builds the report
func (v *Validator) Validate(questions []model.Question) model.QualityReport {
	report := model.EmptyReport()
	report.Level = string(v.level)
	report.Total = len(questions)

	for _, q := range questions {
		issues := v.Check(q)
		switch Status(issues) {
		case model.SeverityFail:
			report.Failed++
		case model.SeverityWarning:
			report.Warned++
		default:
			report.Passed++
		}
		report.Issues = append(report.Issues, issues...)
	}

	if report.Total > 0 {
		report.OverallScore = (float64(report.Passed) + 0.5*float64(report.Warned)) / float64(report.Total)
	}
	report.Recommendations = Recommend(report.Issues)
	return report
}

// recommendationOrder fixes the order recommendations are listed in
var recommendationOrder = []model.IssueKind{
	model.IssueIncompleteExtraction,
	model.IssueInsufficientOptions,
	model.IssueEmptyOption,
	model.IssueDuplicateOptions,
	model.IssueOptionTooLong,
	model.IssueEmptyText,
	model.IssueTextTooShort,
	model.IssueTextTooLong,
	model.IssueMetadataKeyword,
	model.IssueNoInterrogative,
	model.IssueTypeMismatch,
	model.IssueGroupInconsistent,
	model.IssueLowConfidence,
	model.IssueInvalidNumber,
	model.IssueDifficultyMismatch,
}

var recommendationText = map[model.IssueKind]string{
	model.IssueIncompleteExtraction: "%d group member(s) could not be located; check the group passage markers or try --strategy embeddedCloze",
	model.IssueInsufficientOptions:  "%d question(s) have too few options; check option delimiters or add glyph ranges to the pattern library",
	model.IssueEmptyOption:          "%d empty option(s); options may be images or lost in text extraction",
	model.IssueDuplicateOptions:     "%d question(s) have duplicate options; option boundaries are probably wrong",
	model.IssueOptionTooLong:        "%d overlong option(s); the following question may have merged into the last option",
	model.IssueEmptyText:            "%d question(s) have no text; the stem may have been read as an option",
	model.IssueTextTooShort:         "%d question(s) are unusually short; check for false number markers",
	model.IssueTextTooLong:          "%d question(s) are unusually long; a passage or next question may be merged in",
	model.IssueMetadataKeyword:      "%d question(s) contain header or footer text; extend the noise patterns",
	model.IssueNoInterrogative:      "%d question(s) lack an interrogative; they may be instructions",
	model.IssueTypeMismatch:         "%d question(s) have a type that does not match their content",
	model.IssueGroupInconsistent:    "%d question(s) have inconsistent group membership",
	model.IssueLowConfidence:        "%d question(s) have low confidence; review them by hand",
	model.IssueInvalidNumber:        "%d question(s) have invalid numbers",
	model.IssueDifficultyMismatch:   "%d question(s) have a difficulty that does not fit their length",
}

// Recommend derives one remediation hint per issue kind present
func Recommend(issues []model.ValidationIssue) []string {
	counts := make(map[model.IssueKind]int)
	for _, is := range issues {
		counts[is.Kind]++
	}

	var out []string
	for _, kind := range recommendationOrder {
		if n := counts[kind]; n > 0 {
			out = append(out, fmt.Sprintf(recommendationText[kind], n))
		}
	}
	return out
}
