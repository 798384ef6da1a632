package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "unit-3_final.txt", scenarioA)

	res, err := NewLoader(0).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "txt", res.Kind)
	assert.Equal(t, scenarioA, res.Document.Text)
	assert.Equal(t, path, res.Document.SourcePath)
	assert.Equal(t, DocumentID(path), res.Document.ID)
	assert.Equal(t, "unit 3 final", res.Document.Subject)
}

func TestLoader_HTML(t *testing.T) {
	page := `<html><head><title>Quiz</title><style>p{}</style></head><body>
<p>1. Which is correct?</p><p>(A) x (B) y</p><script>track()</script>
</body></html>`
	path := writeFile(t, t.TempDir(), "quiz.html", page)

	res, err := NewLoader(0).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "html", res.Kind)
	assert.Equal(t, "1. Which is correct?\n(A) x (B) y", res.Document.Text)
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(0)

	_, err := l.Load(context.Background(), writeFile(t, dir, "exam.docx", "x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Load(context.Background(), writeFile(t, dir, "broken.pdf", "not a pdf"))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Load(ctx, writeFile(t, dir, "ok.txt", "x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_MaxBytes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "long.txt", "0123456789")
	_, err := NewLoader(4).Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	res, err := NewLoader(10).Load(context.Background(), path)
	require.NoError(t, err, "a file exactly at the limit loads")
	assert.Equal(t, "0123456789", res.Document.Text)
}

func TestDocumentID_Stable(t *testing.T) {
	assert.Equal(t, DocumentID("exams/a.txt"), DocumentID("exams/a.txt"))
	assert.NotEqual(t, DocumentID("exams/a.txt"), DocumentID("exams/b.txt"))
	assert.Len(t, DocumentID("exams/a.txt"), 36)
}

func TestSupported(t *testing.T) {
	for _, p := range []string{"a.txt", "b.MD", "c.html", "d.pdf"} {
		assert.True(t, Supported(p), p)
	}
	for _, p := range []string{"a.docx", "b", "c.json"} {
		assert.False(t, Supported(p), p)
	}
}
