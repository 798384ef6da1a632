package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Renderer writes extraction results
type Renderer struct {
	pretty bool
}

// NewRenderer creates a renderer. pretty indents JSON output.
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// WriteJSON encodes res to w
func (r *Renderer) WriteJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// RenderJSON writes res to path, creating parent directories
func (r *Renderer) RenderJSON(res *Result, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := r.WriteJSON(f, res); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, res *Result) {
	name := res.SourcePath
	if name == "" {
		name = "<input>"
	}
	rep := res.Report

	fmt.Fprintf(w, "%s\n", name)
	if res.Subject != "" {
		fmt.Fprintf(w, "  subject:    %s\n", res.Subject)
	}
	fmt.Fprintf(w, "  format:     %s (primary %s, ran %v)\n", res.Format.Category, orDash(res.Primary), res.Strategies)
	fmt.Fprintf(w, "  groups:     %d\n", len(res.Groups))
	fmt.Fprintf(w, "  questions:  %d (pass %d, warn %d, fail %d)\n", rep.Total, rep.Passed, rep.Warned, rep.Failed)
	fmt.Fprintf(w, "  score:      %.2f [%s]\n", rep.OverallScore, rep.Level)
	for _, rec := range rep.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
