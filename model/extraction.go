package model

import (
	"fmt"
	"strings"
)

// ExtractionRecord is the LLD (low level description) knowledge extracted per action.
// IDs and Knowledge are aligned by position.
type ExtractionRecord struct {
	IDs       []string `json:"ids"`
	Knowledge []string `json:"knowledge"`
}

// Validate checks that IDs and Knowledge have the same length
func (r *ExtractionRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("extraction record is nil")
	}
	if len(r.IDs) != len(r.Knowledge) {
		return fmt.Errorf("extraction record has %d ids but %d knowledge entries", len(r.IDs), len(r.Knowledge))
	}
	return nil
}

// String renders the record as a text table, used as context for the GPM stage
func (r *ExtractionRecord) String() string {
	if r == nil {
		return ""
	}
	rows := make([][]string, len(r.IDs))
	for i := range r.IDs {
		rows[i] = []string{r.IDs[i], cell(r.Knowledge, i)}
	}
	return renderTable([]string{"ID", "Knowledge"}, rows)
}

// ClassRecord is the GPM (general process model) class hierarchy.
// IDs, ClassNames and PartOf are aligned by position, PartOf holds the parent ID
// of each class or an empty string for roots.
type ClassRecord struct {
	IDs        []string `json:"ids"`
	ClassNames []string `json:"class_names"`
	PartOf     []string `json:"part_of"`
}

// Validate checks that all lists have the same length
func (r *ClassRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("class record is nil")
	}
	if len(r.IDs) != len(r.ClassNames) || len(r.IDs) != len(r.PartOf) {
		return fmt.Errorf("class record has %d ids, %d class names and %d part of entries", len(r.IDs), len(r.ClassNames), len(r.PartOf))
	}
	return nil
}

// String renders the record as a text table
func (r *ClassRecord) String() string {
	if r == nil {
		return ""
	}
	rows := make([][]string, len(r.IDs))
	for i := range r.IDs {
		rows[i] = []string{r.IDs[i], cell(r.ClassNames, i), cell(r.PartOf, i)}
	}
	return renderTable([]string{"ID", "ClassName", "PartOf"}, rows)
}

func cell(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func renderTable(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, " | "))
	for _, row := range rows {
		b.WriteString("\n")
		for i, value := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(strings.ReplaceAll(strings.TrimSpace(value), "\n", " "))
		}
	}
	return b.String()
}
