package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/qextract/internal/model"
)

func TestRenderer_WriteJSON(t *testing.T) {
	res := NewExtractor(nil, nil).Run(model.RawDocument{Text: scenarioA}, DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).WriteJSON(&buf, res))
	assert.Contains(t, buf.String(), `"options":{"A":"x","B":"y","C":"z","D":"w"}`)

	var back Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back.Questions, 1)
	assert.Equal(t, res.Questions[0].Options, back.Questions[0].Options)
	assert.Equal(t, res.Report.Total, back.Report.Total)
}

func TestRenderer_RenderJSON(t *testing.T) {
	res := NewExtractor(nil, nil).Run(model.RawDocument{Text: scenarioB}, DefaultOptions())
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	require.NoError(t, NewRenderer(true).RenderJSON(res, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"questions\": [")
}

func TestRenderer_Summary(t *testing.T) {
	res := NewExtractor(nil, nil).Run(model.RawDocument{SourcePath: "quiz.txt", Subject: "quiz", Text: scenarioC}, DefaultOptions())
	assert.Equal(t, "quiz", res.Subject)

	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "quiz.txt")
	assert.Contains(t, out, "subject:    quiz")
	assert.Contains(t, out, "questions:  1 (pass 0, warn 0, fail 1)")
	assert.Contains(t, out, "too few options")
}
