package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxGroupSpan is the largest accepted end-start distance of a question group.
// Wider ranges are almost always page references or years, not groups.
const MaxGroupSpan = 20

// QuestionGroup is a run of consecutively numbered questions sharing one passage
type QuestionGroup struct {
	StartNumber int     `json:"start_number"`
	EndNumber   int     `json:"end_number"`
	PassageText string  `json:"passage_text,omitempty"`
	PatternID   string  `json:"pattern_id"`
	Confidence  float64 `json:"confidence"`

	// byte offsets in PassageText where a merged passage begins
	PassageBreaks []int `json:"passage_breaks,omitempty"`
}

// ID returns the group identifier stored on member questions ("5-7")
func (g QuestionGroup) ID() string {
	return fmt.Sprintf("%d-%d", g.StartNumber, g.EndNumber)
}

// Valid reports whether the group satisfies the range invariant
func (g QuestionGroup) Valid() bool {
	return g.StartNumber >= 1 && g.StartNumber <= g.EndNumber && g.EndNumber-g.StartNumber <= MaxGroupSpan
}

// Contains reports whether n falls inside the group range
func (g QuestionGroup) Contains(n int) bool {
	return n >= g.StartNumber && n <= g.EndNumber
}

// QuestionType classifies a question record
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multipleChoice"
	QuestionTypeEssay          QuestionType = "essay"
	QuestionTypeFillBlank      QuestionType = "fillBlank"
)

// OptionLetters are the valid option keys, in order
var OptionLetters = []string{"A", "B", "C", "D", "E"}

// LetterAt returns the option letter for a zero-based position, or "" past E
func LetterAt(i int) string {
	if i < 0 || i >= len(OptionLetters) {
		return ""
	}
	return OptionLetters[i]
}

// Option is a single lettered answer option
type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Options is an ordered letter->text map. Order is insertion order, which
// for every extractor is A..E.
type Options []Option

// Get returns the text for a letter
func (o Options) Get(letter string) (string, bool) {
	for _, opt := range o {
		if opt.Letter == letter {
			return opt.Text, true
		}
	}
	return "", false
}

// Set returns a copy of o with letter set to text, appending if absent
func (o Options) Set(letter, text string) Options {
	out := make(Options, len(o), len(o)+1)
	copy(out, o)
	for i := range out {
		if out[i].Letter == letter {
			out[i].Text = text
			return out
		}
	}
	return append(out, Option{Letter: letter, Text: text})
}

// Letters returns the keys in order
func (o Options) Letters() []string {
	letters := make([]string, 0, len(o))
	for _, opt := range o {
		letters = append(letters, opt.Letter)
	}
	return letters
}

// NonEmpty counts options whose trimmed text is not empty
func (o Options) NonEmpty() int {
	n := 0
	for _, opt := range o {
		if strings.TrimSpace(opt.Text) != "" {
			n++
		}
	}
	return n
}

// MarshalJSON renders the options as an ordered JSON object
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(opt.Letter)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(opt.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an ordered JSON object back, keeping key order
func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options: expected object")
	}
	out := Options{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("options: expected string key")
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("options[%s]: %w", key, err)
		}
		out = append(out, Option{Letter: key, Text: text})
	}
	*o = out
	return nil
}

// Question is one extracted exam question
type Question struct {
	Number        string       `json:"number"`
	Text          string       `json:"text"`
	Options       Options      `json:"options"`
	Type          QuestionType `json:"type"`
	IsGroupMember bool         `json:"is_group_member"`
	GroupID       string       `json:"group_id,omitempty"`
	Confidence    float64      `json:"confidence"`
	Difficulty    string       `json:"difficulty,omitempty"`    // easy, medium, hard (set by callers)
	Strategy      string       `json:"strategy,omitempty"`      // Strategy whose record was kept
	OptionMethod  string       `json:"option_method,omitempty"` // Option extraction strategy that won
	Answer        string       `json:"answer,omitempty"`        // Attached post-hoc by the answer merger
}
