package model

// Severity of a validation finding
type Severity string

const (
	SeverityPass    Severity = "pass"
	SeverityWarning Severity = "warning"
	SeverityFail    Severity = "fail"
)

// Rank orders severities so the worst can be picked
func (s Severity) Rank() int {
	switch s {
	case SeverityFail:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// IssueKind names the rule that produced a ValidationIssue
type IssueKind string

const (
	IssueInvalidNumber        IssueKind = "invalid_number"
	IssueEmptyText            IssueKind = "empty_text"
	IssueIncompleteExtraction IssueKind = "incomplete_extraction"
	IssueTextTooShort         IssueKind = "text_too_short"
	IssueTextTooLong          IssueKind = "text_too_long"
	IssueNoInterrogative      IssueKind = "no_interrogative"
	IssueMetadataKeyword      IssueKind = "metadata_keyword"
	IssueInsufficientOptions  IssueKind = "insufficient_options"
	IssueEmptyOption          IssueKind = "empty_option"
	IssueOptionTooLong        IssueKind = "option_too_long"
	IssueDuplicateOptions     IssueKind = "duplicate_options"
	IssueTypeMismatch         IssueKind = "type_mismatch"
	IssueGroupInconsistent    IssueKind = "group_inconsistent"
	IssueLowConfidence        IssueKind = "low_confidence"
	IssueDifficultyMismatch   IssueKind = "difficulty_mismatch"
)

// ValidationIssue is a single rule finding for one question
type ValidationIssue struct {
	QuestionNumber string    `json:"question_number"`
	Kind           IssueKind `json:"kind"`
	Severity       Severity  `json:"severity"`
	Message        string    `json:"message"`
	Suggestion     string    `json:"suggestion,omitempty"`
}

// QualityReport aggregates validation over one extraction run
type QualityReport struct {
	Total           int               `json:"total"`
	Passed          int               `json:"passed"`
	Warned          int               `json:"warned"`
	Failed          int               `json:"failed"`
	OverallScore    float64           `json:"overall_score"` // (passed + 0.5*warned) / total
	Level           string            `json:"level,omitempty"`
	Issues          []ValidationIssue `json:"issues"`
	Recommendations []string          `json:"recommendations,omitempty"`
}

// EmptyReport is returned for empty input
func EmptyReport() QualityReport {
	return QualityReport{Issues: []ValidationIssue{}}
}
