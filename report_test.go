package processrag

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siherrmann/processrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuredResult(sources []model.SourceCitation) *model.PipelineResult {
	return Assemble(model.Answer{
		Extraction: &model.ExtractionRecord{
			IDs:       []string{"Prepare-L1", "Prepare-L2"},
			Knowledge: []string{"cut bread", "spread butter, then \"press\""},
		},
		Classes: &model.ClassRecord{
			IDs:        []string{"G1", "G2"},
			ClassNames: []string{"Make sandwich", "Prepare"},
			PartOf:     []string{"", "G1"},
		},
	}, sources)
}

func readCSV(t *testing.T, path string) [][]string {
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAssemble(t *testing.T) {
	t.Run("Nil sources become an empty list", func(t *testing.T) {
		result := Assemble(model.Answer{Text: "I don't know."}, nil)
		require.NotNil(t, result.Sources)
		assert.Empty(t, result.Sources)
		assert.Equal(t, "I don't know.", result.Answer.Text)
	})

	t.Run("Sources keep their order", func(t *testing.T) {
		sources := []model.SourceCitation{{Source: "b.pdf", Page: 2}, {Source: "a.pdf", Page: 1}}
		result := Assemble(model.Answer{}, sources)
		assert.Equal(t, sources, result.Sources)
	})
}

func TestWriteReport(t *testing.T) {
	t.Run("Citations are numbered with pages", func(t *testing.T) {
		result := Assemble(model.Answer{Text: " Cut the bread first. "}, []model.SourceCitation{
			{Source: "manual.pdf", Page: 3},
			{Source: "notes.md", Page: model.UnknownPage},
		})

		var out bytes.Buffer
		require.NoError(t, WriteReport(&out, result))

		expected := "=== Answer ===\nCut the bread first.\n\n=== Sources ===\n" +
			"1. manual.pdf (p.3)\n" +
			"2. notes.md (p.?)\n"
		assert.Equal(t, expected, out.String())
	})

	t.Run("Empty sources state that nothing relevant was found", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, WriteReport(&out, Assemble(model.Answer{Text: "I don't know."}, nil)))

		assert.Contains(t, out.String(), "=== Sources ===\n"+NoSourcesMessage+"\n")
		assert.Contains(t, out.String(), "I don't know")
	})

	t.Run("Structured answer prints both records", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, WriteReport(&out, structuredResult(nil)))

		report := out.String()
		assert.Contains(t, report, "LLD:\nID | Knowledge\nPrepare-L1 | cut bread")
		assert.Contains(t, report, "GPM:\nID | ClassName | PartOf\nG1 | Make sandwich | ")
		assert.Less(t, strings.Index(report, "=== Answer ==="), strings.Index(report, "=== Sources ==="))
	})

	t.Run("Nil result fails", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, WriteReport(&out, nil))
	})
}

func TestFormatCitation(t *testing.T) {
	t.Run("Known and unknown page", func(t *testing.T) {
		assert.Equal(t, "1. manual.pdf (p.0)", FormatCitation(1, model.SourceCitation{Source: "manual.pdf", Page: 0}))
		assert.Equal(t, "12. targets.xlsx (p.?)", FormatCitation(12, model.SourceCitation{Source: "targets.xlsx", Page: -1}))
	})
}

func TestWriteCSV(t *testing.T) {
	t.Run("Structured result writes lld, gpm and sources", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		result := structuredResult([]model.SourceCitation{{Source: "manual.pdf", Page: 3}})

		written, err := WriteCSV(dir, result)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, LLDFile),
			filepath.Join(dir, GPMFile),
			filepath.Join(dir, SourcesFile),
		}, written)

		assert.Equal(t, [][]string{
			{"id", "knowledge"},
			{"Prepare-L1", "cut bread"},
			{"Prepare-L2", "spread butter, then \"press\""},
		}, readCSV(t, filepath.Join(dir, LLDFile)))

		assert.Equal(t, [][]string{
			{"id", "class_name", "part_of"},
			{"G1", "Make sandwich", ""},
			{"G2", "Prepare", "G1"},
		}, readCSV(t, filepath.Join(dir, GPMFile)))

		assert.Equal(t, [][]string{
			{"rank", "source", "page"},
			{"1", "manual.pdf", "3"},
		}, readCSV(t, filepath.Join(dir, SourcesFile)))
	})

	t.Run("Text result writes answer and sources", func(t *testing.T) {
		dir := t.TempDir()
		result := Assemble(model.Answer{Text: "I don't know."}, nil)

		written, err := WriteCSV(dir, result)
		require.NoError(t, err)
		assert.Len(t, written, 2)
		assert.NoFileExists(t, filepath.Join(dir, LLDFile))

		answer, err := os.ReadFile(filepath.Join(dir, AnswerFile))
		require.NoError(t, err)
		assert.Equal(t, "I don't know.\n", string(answer))

		assert.Equal(t, [][]string{{"rank", "source", "page"}}, readCSV(t, filepath.Join(dir, SourcesFile)))
	})
}
