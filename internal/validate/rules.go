package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/patterns"
	"github.com/ppiankov/qextract/internal/score"
)

var numberRe = regexp.MustCompile(`^\d+$`)

// Difficulty sanity limits, in runes of question text
const (
	hardMinRunes = 20
	easyMaxRunes = 500
)

type rule func(v *Validator, q model.Question) []model.ValidationIssue

// rules run in this order for every question
var rules = []rule{
	basicRules,
	contentRules,
	optionRules,
	formatRules,
	qualityRules,
}

func issue(q model.Question, kind model.IssueKind, sev model.Severity, msg, suggestion string) model.ValidationIssue {
	return model.ValidationIssue{
		QuestionNumber: q.Number,
		Kind:           kind,
		Severity:       sev,
		Message:        msg,
		Suggestion:     suggestion,
	}
}

// isStub reports a declared group member that was never located
func isStub(q model.Question) bool {
	return q.IsGroupMember && strings.TrimSpace(q.Text) == "" && q.Options.NonEmpty() == 0
}

func basicRules(v *Validator, q model.Question) []model.ValidationIssue {
	var out []model.ValidationIssue

	if !validNumber(q.Number) {
		out = append(out, issue(q, model.IssueInvalidNumber, model.SeverityFail,
			fmt.Sprintf("question number %q is not an integer in 1-%d", q.Number, patterns.MaxQuestionNumber),
			"check the numbering patterns"))
	}

	textLen := patterns.RuneLen(q.Text)
	switch {
	case isStub(q):
		out = append(out, issue(q, model.IssueIncompleteExtraction, model.SeverityFail,
			fmt.Sprintf("group %s declares question %s but no text was found for it", q.GroupID, q.Number),
			"check the member markers in the group passage"))
	case textLen == 0:
		out = append(out, issue(q, model.IssueEmptyText, model.SeverityFail,
			"question text is empty", "the stem may have been read as an option"))
	case textLen < v.bounds.MinLength:
		out = append(out, issue(q, model.IssueTextTooShort, v.th.ShortTextSeverity,
			fmt.Sprintf("question text has %d characters, minimum is %d", textLen, v.bounds.MinLength),
			"the span may have been cut at a false marker"))
	case v.bounds.MaxLength > 0 && textLen > v.bounds.MaxLength:
		out = append(out, issue(q, model.IssueTextTooLong, model.SeverityWarning,
			fmt.Sprintf("question text has %d characters, maximum is %d", textLen, v.bounds.MaxLength),
			"a following question or passage may have been merged in"))
	}
	return out
}

func validNumber(s string) bool {
	if !numberRe.MatchString(s) || len(s) > 3 {
		return false
	}
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n >= 1 && n <= patterns.MaxQuestionNumber
}

func contentRules(v *Validator, q model.Question) []model.ValidationIssue {
	if strings.TrimSpace(q.Text) == "" {
		return nil
	}
	var out []model.ValidationIssue

	if v.th.RequireInterrogative && q.Type == model.QuestionTypeMultipleChoice && !q.IsGroupMember &&
		!v.lib.HasInterrogative(q.Text) {
		out = append(out, issue(q, model.IssueNoInterrogative, model.SeverityWarning,
			"question text has no interrogative marker", "confirm this is a question and not instructions"))
	}

	if word, hit := v.lib.DenylistHit(q.Text); hit {
		out = append(out, issue(q, model.IssueMetadataKeyword, v.th.MetadataSeverity,
			fmt.Sprintf("question text contains metadata keyword %q", word),
			"header or footer text leaked into the question"))
	}
	return out
}

func optionRules(v *Validator, q model.Question) []model.ValidationIssue {
	if q.Type != model.QuestionTypeMultipleChoice || isStub(q) {
		return nil
	}
	var out []model.ValidationIssue

	nonEmpty := q.Options.NonEmpty()
	switch {
	case nonEmpty < v.th.MinOptionsFail:
		out = append(out, issue(q, model.IssueInsufficientOptions, model.SeverityFail,
			fmt.Sprintf("%d non-empty options, at least %d required", nonEmpty, v.th.MinOptionsFail),
			"check option delimiters"))
	case nonEmpty < v.th.MinOptionsWarn:
		out = append(out, issue(q, model.IssueInsufficientOptions, model.SeverityWarning,
			fmt.Sprintf("%d non-empty options, %d expected", nonEmpty, v.th.MinOptionsWarn),
			"check option delimiters"))
	}

	for _, o := range q.Options {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			out = append(out, issue(q, model.IssueEmptyOption, model.SeverityWarning,
				fmt.Sprintf("option %s is empty", o.Letter), "the option may be an image or was lost in extraction"))
			continue
		}
		if n := utf8.RuneCountInString(text); n > v.th.MaxOptionLength {
			out = append(out, issue(q, model.IssueOptionTooLong, model.SeverityWarning,
				fmt.Sprintf("option %s has %d characters, maximum is %d", o.Letter, n, v.th.MaxOptionLength),
				"the next question may have been merged into the last option"))
		}
	}

	if ratio := score.DuplicateRatio(q.Options); ratio > 0 {
		switch {
		case ratio >= v.th.DuplicateFail:
			out = append(out, issue(q, model.IssueDuplicateOptions, model.SeverityFail,
				fmt.Sprintf("%.0f%% of option pairs are identical", ratio*100), "check option boundaries"))
		case ratio > v.th.DuplicateWarn:
			out = append(out, issue(q, model.IssueDuplicateOptions, model.SeverityWarning,
				fmt.Sprintf("%.0f%% of option pairs are identical", ratio*100), "check option boundaries"))
		}
	}
	return out
}

func formatRules(v *Validator, q model.Question) []model.ValidationIssue {
	var out []model.ValidationIssue

	switch q.Type {
	case model.QuestionTypeMultipleChoice:
	case model.QuestionTypeEssay:
		if q.Options.NonEmpty() >= 2 {
			out = append(out, issue(q, model.IssueTypeMismatch, model.SeverityWarning,
				"essay question carries options", "the question may be multiple choice"))
		}
	case model.QuestionTypeFillBlank:
		if _, ok := patterns.AnyMatch(v.lib.FillBlankMarkers(), q.Text); !ok && !isStub(q) {
			out = append(out, issue(q, model.IssueTypeMismatch, model.SeverityWarning,
				"fill-in question has no visible blank", "the blank may have been lost in extraction"))
		}
	default:
		out = append(out, issue(q, model.IssueTypeMismatch, model.SeverityFail,
			fmt.Sprintf("unknown question type %q", q.Type), ""))
	}

	switch {
	case q.IsGroupMember && q.GroupID == "":
		out = append(out, issue(q, model.IssueGroupInconsistent, model.SeverityFail,
			"group member has no group id", ""))
	case !q.IsGroupMember && q.GroupID != "":
		out = append(out, issue(q, model.IssueGroupInconsistent, model.SeverityWarning,
			fmt.Sprintf("question carries group id %s but is not a group member", q.GroupID), ""))
	}
	return out
}

func qualityRules(v *Validator, q model.Question) []model.ValidationIssue {
	var out []model.ValidationIssue

	if !isStub(q) {
		switch {
		case q.Confidence < v.th.ConfidenceFail:
			out = append(out, issue(q, model.IssueLowConfidence, model.SeverityFail,
				fmt.Sprintf("confidence %.2f is below %.2f", q.Confidence, v.th.ConfidenceFail),
				"review this question by hand"))
		case q.Confidence < v.th.ConfidenceWarn:
			out = append(out, issue(q, model.IssueLowConfidence, model.SeverityWarning,
				fmt.Sprintf("confidence %.2f is below %.2f", q.Confidence, v.th.ConfidenceWarn),
				"review this question by hand"))
		}
	}

	textLen := patterns.RuneLen(q.Text)
	switch {
	case q.Difficulty != "" && q.Difficulty != "easy" && q.Difficulty != "medium" && q.Difficulty != "hard":
		out = append(out, issue(q, model.IssueDifficultyMismatch, model.SeverityWarning,
			fmt.Sprintf("unknown difficulty %q", q.Difficulty), "use easy, medium or hard"))
	case q.Difficulty == "hard" && textLen > 0 && textLen < hardMinRunes:
		out = append(out, issue(q, model.IssueDifficultyMismatch, model.SeverityWarning,
			"question is marked hard but its text is very short", ""))
	case q.Difficulty == "easy" && textLen > easyMaxRunes:
		out = append(out, issue(q, model.IssueDifficultyMismatch, model.SeverityWarning,
			"question is marked easy but its text is very long", ""))
	}
	return out
}
