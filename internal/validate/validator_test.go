package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
	"github.com/ppiankov/qextract/internal/score"
)

func opts(texts ...string) model.Options {
	o := model.Options{}
	for i, t := range texts {
		o = o.Set(model.LetterAt(i), t)
	}
	return o
}

func choice(number, text string, conf float64, options ...string) model.Question {
	return model.Question{
		Number:     number,
		Text:       text,
		Options:    opts(options...),
		Type:       model.QuestionTypeMultipleChoice,
		Confidence: conf,
	}
}

func newValidator(level Level) *Validator {
	return New(patterns.Default(), level, score.DefaultBounds())
}

func kinds(issues []model.ValidationIssue) []model.IssueKind {
	out := make([]model.IssueKind, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Kind)
	}
	return out
}

func TestValidate_WellFormed(t *testing.T) {
	report := newValidator(LevelStandard).Validate([]model.Question{
		choice("1", "Which is correct?", 1.0, "x", "y", "z", "w"),
	})
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1.0, report.OverallScore)
	assert.Equal(t, "standard", report.Level)
	assert.NotNil(t, report.Issues)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Recommendations)
}

func TestValidate_PartialOptions(t *testing.T) {
	q := choice("1", "Which is right?", 0.8, "foo", "bar", "", "")

	issues := newValidator(LevelStandard).Check(q)
	require.NotEmpty(t, issues)
	assert.Equal(t, model.IssueInsufficientOptions, issues[0].Kind)
	assert.Equal(t, model.SeverityFail, issues[0].Severity)
	assert.Equal(t, "1", issues[0].QuestionNumber)
	assert.Equal(t, model.SeverityFail, Status(issues))
	assert.ElementsMatch(t, []model.IssueKind{
		model.IssueInsufficientOptions,
		model.IssueEmptyOption,
		model.IssueEmptyOption,
	}, kinds(issues))

	basic := newValidator(LevelBasic).Check(q)
	assert.Equal(t, model.SeverityWarning, Status(basic))
	assert.NotContains(t, kinds(basic), model.IssueInsufficientOptions)
}

func TestValidate_IncompleteExtraction(t *testing.T) {
	stub := model.Question{
		Number:        "6",
		Options:       model.Options{},
		Type:          model.QuestionTypeMultipleChoice,
		IsGroupMember: true,
		GroupID:       "5-7",
	}
	issues := newValidator(LevelStandard).Check(stub)
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueIncompleteExtraction, issues[0].Kind)
	assert.Equal(t, model.SeverityFail, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "5-7")
}

func TestValidate_DoesNotMutate(t *testing.T) {
	questions := []model.Question{
		choice("1", "Which is correct?", 1.0, "x", "y", "z", "w"),
		choice("2", "Pick", 0.2, "a", "a"),
		{Number: "3", Options: model.Options{}, Type: model.QuestionTypeFillBlank, IsGroupMember: true, GroupID: "3-4"},
	}
	before := make([]model.Question, len(questions))
	for i, q := range questions {
		before[i] = q
		before[i].Options = append(model.Options{}, q.Options...)
	}

	report := newValidator(LevelStrict).Validate(questions)
	assert.Equal(t, before, questions)
	assert.Equal(t, len(questions), report.Total)
}

func TestValidate_Duplicates(t *testing.T) {
	q := choice("4", "Which city is the capital of France?", 0.9, "Paris", "paris", "Rome", "Oslo")

	std := newValidator(LevelStandard).Check(q)
	require.Contains(t, kinds(std), model.IssueDuplicateOptions)
	assert.Equal(t, model.SeverityWarning, Status(std))

	strict := newValidator(LevelStrict).Check(q)
	assert.Equal(t, model.SeverityFail, Status(strict))
}

func TestValidate_NumberRules(t *testing.T) {
	v := newValidator(LevelBasic)
	for _, n := range []string{"0", "abc", "101", "1000", ""} {
		q := choice(n, "Which is correct?", 1.0, "x", "y", "z", "w")
		assert.Contains(t, kinds(v.Check(q)), model.IssueInvalidNumber, "number %q", n)
	}
	assert.NotContains(t, kinds(v.Check(choice("100", "Which is correct?", 1.0, "x", "y"))), model.IssueInvalidNumber)
}

func TestValidate_ContentRules(t *testing.T) {
	v := newValidator(LevelStandard)

	noQ := choice("1", "Read the passage carefully", 0.8, "w", "x", "y", "z")
	assert.Contains(t, kinds(v.Check(noQ)), model.IssueNoInterrogative)

	meta := choice("2", "Which option is correct? Exam code 1234", 0.8, "w", "x", "y", "z")
	assert.Contains(t, kinds(v.Check(meta)), model.IssueMetadataKeyword)

	essay := model.Question{Number: "3", Text: "Describe your school.", Options: model.Options{}, Type: model.QuestionTypeEssay, Confidence: 0.85}
	assert.Empty(t, v.Check(essay))
}

func TestValidate_FormatRules(t *testing.T) {
	v := newValidator(LevelStandard)

	essayWithOptions := model.Question{Number: "1", Text: "Describe your school.", Options: opts("a", "b"), Type: model.QuestionTypeEssay, Confidence: 0.9}
	assert.Contains(t, kinds(v.Check(essayWithOptions)), model.IssueTypeMismatch)

	orphan := choice("2", "Which is correct?", 1.0, "x", "y", "z", "w")
	orphan.GroupID = "1-3"
	assert.Contains(t, kinds(v.Check(orphan)), model.IssueGroupInconsistent)

	memberless := choice("3", "Which is correct?", 1.0, "x", "y", "z", "w")
	memberless.IsGroupMember = true
	issues := v.Check(memberless)
	assert.Contains(t, kinds(issues), model.IssueGroupInconsistent)
	assert.Equal(t, model.SeverityFail, Status(issues))
}

func TestValidate_QualityRules(t *testing.T) {
	v := newValidator(LevelStandard)

	low := choice("1", "Which is correct?", 0.2, "x", "y", "z", "w")
	issues := v.Check(low)
	require.Contains(t, kinds(issues), model.IssueLowConfidence)
	assert.Equal(t, model.SeverityFail, Status(issues))

	mid := choice("2", "Which is correct?", 0.5, "x", "y", "z", "w")
	assert.Equal(t, model.SeverityWarning, Status(v.Check(mid)))

	hard := choice("3", "Why is it so?", 0.9, "x", "y", "z", "w")
	hard.Difficulty = "hard"
	assert.Contains(t, kinds(v.Check(hard)), model.IssueDifficultyMismatch)

	odd := choice("4", "Which is correct?", 0.9, "x", "y", "z", "w")
	odd.Difficulty = "extreme"
	assert.Contains(t, kinds(v.Check(odd)), model.IssueDifficultyMismatch)
}

func TestValidate_OverallScore(t *testing.T) {
	report := newValidator(LevelStandard).Validate([]model.Question{
		choice("1", "Which is correct?", 1.0, "x", "y", "z", "w"),
		choice("2", "Which is correct?", 0.5, "x", "y", "z", "w"),
		choice("3", "Which is right?", 0.8, "foo", "bar", "", ""),
		{Number: "4", Options: model.Options{}, Type: model.QuestionTypeMultipleChoice, IsGroupMember: true, GroupID: "4-5"},
	})
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Warned)
	assert.Equal(t, 2, report.Failed)
	assert.InDelta(t, 0.375, report.OverallScore, 1e-9)
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "group member")
}

func TestValidate_Empty(t *testing.T) {
	report := newValidator(LevelStandard).Validate(nil)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0.0, report.OverallScore)
	assert.NotNil(t, report.Issues)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"": LevelStandard, "basic": LevelBasic, "STRICT": LevelStrict, " standard ": LevelStandard} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("paranoid")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
