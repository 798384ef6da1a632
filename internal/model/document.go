package model

// RawDocument is the extraction input: text already pulled from a document
// page by an external text/OCR extractor. Callers own it; the core never
// modifies it.
type RawDocument struct {
	ID         string `json:"id"`
	SourcePath string `json:"source_path,omitempty"`
	Subject    string `json:"subject,omitempty"` // readable title, usually from the file name
	Text       string `json:"-"`
}

// FormatCategory is the layout dialect detected for a document
type FormatCategory string

const (
	FormatPlainChoice      FormatCategory = "plainChoice"      // Numbered multiple-choice questions
	FormatEssay            FormatCategory = "essay"            // Essay / open questions only
	FormatMixedEssayChoice FormatCategory = "mixedEssayChoice" // Essay and choice sections
	FormatComprehensive    FormatCategory = "comprehensive"    // Essay, choice and comprehensive sections
	FormatEmbeddedCloze    FormatCategory = "embeddedCloze"    // Groups with inline numbers and glyph options
	FormatUnknown          FormatCategory = "unknown"
)

// DetectedFormat is computed once per document and never mutated
type DetectedFormat struct {
	Category FormatCategory `json:"category"`
	Signals  []string       `json:"signals,omitempty"` // Markers that fired, e.g. "essay:non-choice"
}
