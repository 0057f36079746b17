package processrag

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
)

const NoSourcesMessage = "No sufficiently relevant sources found (the model should answer with 'I don't know')."

const (
	LLDFile     = "lld.csv"
	GPMFile     = "gpm.csv"
	SourcesFile = "sources.csv"
	AnswerFile  = "answer.txt"
)

// Assemble joins the answer and its citations into one result.
// Sources are never nil so an empty citation list stays explicit.
func Assemble(answer model.Answer, sources []model.SourceCitation) *model.PipelineResult {
	if sources == nil {
		sources = []model.SourceCitation{}
	}
	return &model.PipelineResult{
		Answer:  answer,
		Sources: sources,
	}
}

// WriteReport prints the answer and the numbered sources of result
func WriteReport(w io.Writer, result *model.PipelineResult) error {
	if result == nil {
		return helper.NewError("write report", fmt.Errorf("result is nil"))
	}

	var b strings.Builder
	b.WriteString("=== Answer ===\n")
	b.WriteString(FormatAnswer(result.Answer))
	b.WriteString("\n\n=== Sources ===\n")
	if len(result.Sources) == 0 {
		b.WriteString(NoSourcesMessage)
		b.WriteString("\n")
	}
	for i, source := range result.Sources {
		b.WriteString(FormatCitation(i+1, source))
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return helper.NewError("write report", err)
	}
	return nil
}

// FormatAnswer renders the structured records or the text answer
func FormatAnswer(answer model.Answer) string {
	if !answer.IsStructured() {
		return strings.TrimSpace(answer.Text)
	}

	var parts []string
	if answer.Extraction != nil {
		parts = append(parts, "LLD:\n"+answer.Extraction.String())
	}
	if answer.Classes != nil {
		parts = append(parts, "GPM:\n"+answer.Classes.String())
	}
	return strings.Join(parts, "\n\n")
}

// FormatCitation renders a numbered citation line like "1. manual.pdf (p.3)".
// An unknown page renders as "p.?".
func FormatCitation(rank int, source model.SourceCitation) string {
	page := "?"
	if source.Page != model.UnknownPage {
		page = strconv.Itoa(source.Page)
	}
	return fmt.Sprintf("%d. %s (p.%s)", rank, source.Source, page)
}

// WriteCSV writes the records and sources of result into dir.
// lld.csv and gpm.csv are written for structured answers, answer.txt for text answers.
func WriteCSV(dir string, result *model.PipelineResult) ([]string, error) {
	if result == nil {
		return nil, helper.NewError("write csv", fmt.Errorf("result is nil"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, helper.NewError("create output directory", err)
	}

	var written []string

	if lld := result.Answer.Extraction; lld != nil {
		rows := [][]string{{"id", "knowledge"}}
		for i := range lld.IDs {
			rows = append(rows, []string{lld.IDs[i], valueAt(lld.Knowledge, i)})
		}
		path := filepath.Join(dir, LLDFile)
		if err := writeCSVFile(path, rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if gpm := result.Answer.Classes; gpm != nil {
		rows := [][]string{{"id", "class_name", "part_of"}}
		for i := range gpm.IDs {
			rows = append(rows, []string{gpm.IDs[i], valueAt(gpm.ClassNames, i), valueAt(gpm.PartOf, i)})
		}
		path := filepath.Join(dir, GPMFile)
		if err := writeCSVFile(path, rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if !result.Answer.IsStructured() {
		path := filepath.Join(dir, AnswerFile)
		if err := os.WriteFile(path, []byte(result.Answer.Text+"\n"), 0644); err != nil {
			return written, helper.NewError("write "+AnswerFile, err)
		}
		written = append(written, path)
	}

	rows := [][]string{{"rank", "source", "page"}}
	for i, source := range result.Sources {
		rows = append(rows, []string{strconv.Itoa(i + 1), source.Source, strconv.Itoa(source.Page)})
	}
	path := filepath.Join(dir, SourcesFile)
	if err := writeCSVFile(path, rows); err != nil {
		return written, err
	}
	written = append(written, path)

	return written, nil
}

func writeCSVFile(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return helper.NewError("create "+filepath.Base(path), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return helper.NewError("write "+filepath.Base(path), err)
	}
	return nil
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
