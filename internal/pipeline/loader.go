package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/ppiankov/qextract/internal/model"
)

// DefaultMaxBytes caps how much of a file the loader reads
const DefaultMaxBytes int64 = 32 << 20

var (
	// ErrUnsupportedFormat is returned for file extensions the loader cannot read
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrDocumentTooLarge is returned for files over the loader's byte limit
	ErrDocumentTooLarge = errors.New("document too large")
)

// documentNamespace keeps document IDs stable across runs
var documentNamespace = uuid.MustParse("8f0b6d1e-3c55-4f0e-9a43-2d1f6f0b9c11")

// Loader reads exam documents from disk into RawDocuments
type Loader struct {
	maxBytes int64
}

// NewLoader creates a loader. maxBytes <= 0 means DefaultMaxBytes.
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{maxBytes: maxBytes}
}

// LoadResult is a loaded document plus how it was read
type LoadResult struct {
	Document model.RawDocument
	Kind     string // txt, html or pdf
}

// Supported reports whether the loader can read path
func Supported(path string) bool {
	_, ok := documentKind(path)
	return ok
}

func documentKind(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", ".md":
		return "txt", true
	case ".html", ".htm", ".xhtml":
		return "html", true
	case ".pdf":
		return "pdf", true
	}
	return "", false
}

// Load reads path and decodes it by extension
func (l *Loader) Load(ctx context.Context, path string) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind, ok := documentKind(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	// One byte past the limit tells a full file from an oversized one
	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrDocumentTooLarge, path, l.maxBytes)
	}

	var text string
	switch kind {
	case "html":
		text, err = htmlText(data)
	case "pdf":
		text, err = pdfText(data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	return &LoadResult{
		Document: model.RawDocument{
			ID:         DocumentID(path),
			SourcePath: path,
			Subject:    documentSubject(path),
			Text:       text,
		},
		Kind: kind,
	}, nil
}

// DocumentID derives a stable ID from the absolute path
func DocumentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(documentNamespace, []byte(filepath.ToSlash(path))).String()
}

// documentSubject turns a file name into a readable title
func documentSubject(path string) string {
	name := filepath.Base(path)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}

	// De-slugify: replace underscores and hyphens with spaces
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// htmlText extracts visible text, one line per block element
func htmlText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Skip script, style, noscript tags
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteString("\n")
		}
	}
	walk(doc)

	lines := strings.Split(buf.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "tr", "table", "ul", "ol", "section", "article",
		"h1", "h2", "h3", "h4", "h5", "h6", "pre", "blockquote", "dd", "dt":
		return true
	}
	return false
}

// pdfText reads the text layer. Scanned PDFs without one need OCR first.
func pdfText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(out), ""), nil
}
