package retrieval

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/siherrmann/processrag/model"
)

const (
	UnknownSource = "unknown_source"
	UnknownPage   = "unknown_page"
)

// blankLines matches line breaks enclosing one or more blank lines
var blankLines = regexp.MustCompile(`\n\s*\n`)

// FormatContext renders chunks as prompt context, one block per chunk:
//
//	[Chunk 1 | Source: manual.pdf | p.3]
//	<content>
//
// Blocks are separated by a blank line. Blank lines inside a chunk are collapsed,
// so splitting the context on blank lines yields one block per chunk.
// No chunks give an empty string.
func FormatContext(chunks []*model.Chunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		page := UnknownPage
		if chunk.Page != model.UnknownPage {
			page = strconv.Itoa(chunk.Page)
		}

		blocks = append(blocks, fmt.Sprintf(
			"[Chunk %d | Source: %s | p.%s]\n%s",
			i+1,
			sourceName(chunk.Source),
			page,
			blankLines.ReplaceAllString(strings.TrimSpace(chunk.Content), "\n"),
		))
	}
	return strings.Join(blocks, "\n\n")
}

// UniqueSources returns the (file name, page) pairs of chunks without duplicates,
// in order of first occurrence.
func UniqueSources(chunks []*model.Chunk) []model.SourceCitation {
	seen := make(map[model.SourceCitation]bool, len(chunks))
	sources := make([]model.SourceCitation, 0, len(chunks))
	for _, chunk := range chunks {
		citation := model.SourceCitation{
			Source: sourceName(chunk.Source),
			Page:   chunk.Page,
		}
		if seen[citation] {
			continue
		}
		seen[citation] = true
		sources = append(sources, citation)
	}
	return sources
}

func sourceName(source string) string {
	if source == "" {
		return UnknownSource
	}
	return filepath.Base(source)
}
