package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/qextract/internal/model"
)

// Level selects how strict the rule thresholds are
type Level string

const (
	LevelBasic    Level = "basic"
	LevelStandard Level = "standard"
	LevelStrict   Level = "strict"
)

// ErrUnknownLevel is returned by ParseLevel for an unrecognised name
var ErrUnknownLevel = errors.New("unknown validation level")

// ParseLevel converts a level name (case-insensitive). Empty means standard.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelStandard:
		return LevelStandard, nil
	case LevelBasic:
		return LevelBasic, nil
	case LevelStrict:
		return LevelStrict, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Thresholds are the per-level rule limits
type Thresholds struct {
	MinOptionsFail int // fewer non-empty options fails
	MinOptionsWarn int // fewer non-empty options warns

	MaxOptionLength int

	DuplicateWarn float64 // ratio above this warns
	DuplicateFail float64 // ratio at or above this fails (only when > 0)

	ConfidenceFail float64
	ConfidenceWarn float64

	RequireInterrogative bool
	ShortTextSeverity    model.Severity
	MetadataSeverity     model.Severity
}

// ThresholdsFor returns the limits of a level
func ThresholdsFor(level Level) Thresholds {
	switch level {
	case LevelBasic:
		return Thresholds{
			MinOptionsFail:    2,
			MinOptionsWarn:    2,
			MaxOptionLength:   500,
			DuplicateWarn:     0.5,
			DuplicateFail:     1.0,
			ConfidenceFail:    0.1,
			ConfidenceWarn:    0.3,
			ShortTextSeverity: model.SeverityWarning,
			MetadataSeverity:  model.SeverityWarning,
		}
	case LevelStrict:
		return Thresholds{
			MinOptionsFail:       4,
			MinOptionsWarn:       4,
			MaxOptionLength:      150,
			DuplicateWarn:        0,
			DuplicateFail:        0,
			ConfidenceFail:       0.5,
			ConfidenceWarn:       0.75,
			RequireInterrogative: true,
			ShortTextSeverity:    model.SeverityFail,
			MetadataSeverity:     model.SeverityFail,
		}
	default:
		return Thresholds{
			MinOptionsFail:       3,
			MinOptionsWarn:       4,
			MaxOptionLength:      200,
			DuplicateWarn:        0,
			DuplicateFail:        0.5,
			ConfidenceFail:       0.3,
			ConfidenceWarn:       0.6,
			RequireInterrogative: true,
			ShortTextSeverity:    model.SeverityWarning,
			MetadataSeverity:     model.SeverityWarning,
		}
	}
}
