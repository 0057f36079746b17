package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
	"github.com/xuri/excelize/v2"
)

// LoaderForPath selects the loader by file extension
func LoaderForPath(path string) (LoadFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return LoadPDF, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return ExcelLoader(""), nil
	case ".md", ".markdown", ".txt":
		return LoadText, nil
	default:
		return nil, helper.NewError("select loader", fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
}

// LoadPDF returns one page per PDF page with text. Page numbers are 0-based.
func LoadPDF(path string) ([]Page, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer file.Close()

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("%s: %w", path, helper.ErrEmptyFile)
	}

	pages := make([]Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}

		pages = append(pages, Page{
			Content:  text,
			Source:   path,
			Page:     i - 1,
			Metadata: model.Metadata{"total_pages": pageCount},
		})
	}

	return pages, nil
}

// ExcelLoader returns a loader reading one page per non-empty data row of sheet.
// An empty sheet name selects the active sheet. The first row is the header and every
// cell is rendered as "header: value". Page and "row_index" are the 0-based data row index.
func ExcelLoader(sheet string) LoadFunc {
	return func(path string) ([]Page, error) {
		file, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer file.Close()

		sheetName := sheet
		if sheetName == "" {
			sheetName = file.GetSheetName(file.GetActiveSheetIndex())
		}

		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
		}
		if len(rows) < 2 {
			return nil, fmt.Errorf("%s sheet %q has no data rows: %w", path, sheetName, helper.ErrEmptyFile)
		}

		header := rows[0]
		var pages []Page
		for i, row := range rows[1:] {
			content := formatRow(header, row)
			if content == "" {
				continue
			}

			pages = append(pages, Page{
				Content:  content,
				Source:   path,
				Page:     i,
				Metadata: model.Metadata{"row_index": i, "sheet": sheetName},
			})
		}

		return pages, nil
	}
}

func formatRow(header []string, row []string) string {
	var lines []string
	for j, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}

		name := ""
		if j < len(header) {
			name = strings.TrimSpace(header[j])
		}
		if name == "" {
			name = fmt.Sprintf("column %d", j+1)
		}
		lines = append(lines, name+": "+cell)
	}
	return strings.Join(lines, "\n")
}

// LoadText returns the whole file as a single page without page number
func LoadText(path string) ([]Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(content)) == "" {
		return nil, fmt.Errorf("%s: %w", path, helper.ErrEmptyFile)
	}

	return []Page{{
		Content:  string(content),
		Source:   path,
		Page:     model.UnknownPage,
		Metadata: model.Metadata{},
	}}, nil
}
