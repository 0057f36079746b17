package model

// SourceCitation is a de-duplicated (source, page) pair
type SourceCitation struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
}

// Answer holds either the extraction records or a plain text answer
type Answer struct {
	Extraction *ExtractionRecord `json:"extraction,omitempty"`
	Classes    *ClassRecord      `json:"classes,omitempty"`
	Text       string            `json:"text,omitempty"`
}

// IsStructured reports whether the answer carries extraction records
func (a Answer) IsStructured() bool {
	return a.Extraction != nil || a.Classes != nil
}

// PipelineResult is the assembled answer with its citations in retrieval order
type PipelineResult struct {
	Answer  Answer           `json:"answer"`
	Sources []SourceCitation `json:"sources"`
}
