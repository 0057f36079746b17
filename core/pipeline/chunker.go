package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 200
)

// DefaultSeparators are tried in order, from paragraphs down to single characters.
// "。" and "、" split Japanese text that has no spaces.
var DefaultSeparators = []string{"\n\n", "\n", "。", "、", " ", ""}

// DefaultChunker splits recursively with DefaultChunkSize, DefaultChunkOverlap and DefaultSeparators
func DefaultChunker() ChunkFunc {
	return RecursiveChunker(DefaultChunkSize, DefaultChunkOverlap, DefaultSeparators)
}

// RecursiveChunker creates a chunker that splits text on the first separator present,
// recursing into pieces that are still longer than chunkSize with the remaining separators.
// Neighbouring pieces are merged into chunks of at most chunkSize characters that overlap
// by up to chunkOverlap characters. Separators are kept at the start of the following piece.
// Sizes count characters (runes), StartPos is the character offset of the chunk in text.
func RecursiveChunker(chunkSize int, chunkOverlap int, separators []string) ChunkFunc {
	return func(text string) ([]ChunkWithOffset, error) {
		if chunkSize <= 0 {
			return nil, fmt.Errorf("chunk size must be positive")
		}
		if chunkOverlap < 0 || chunkOverlap >= chunkSize {
			return nil, fmt.Errorf("chunk overlap must be in [0, chunk size), got %d", chunkOverlap)
		}
		if len(separators) == 0 {
			separators = []string{""}
		}

		splitter := &recursiveSplitter{
			chunkSize:    chunkSize,
			chunkOverlap: chunkOverlap,
		}
		pieces := splitter.split(text, separators)

		chunks := make([]ChunkWithOffset, 0, len(pieces))
		index := 0
		previousLen := 0
		for _, piece := range pieces {
			offset := max(0, index+previousLen-chunkOverlap)
			found := runeIndex(text, piece, offset)

			chunk := ChunkWithOffset{Content: piece}
			if found >= 0 {
				index = found
				start := found
				chunk.StartPos = &start
			}
			previousLen = utf8.RuneCountInString(piece)

			chunks = append(chunks, chunk)
		}

		return chunks, nil
	}
}

type recursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
}

func (s *recursiveSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var final []string
	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}

	return final
}

// merge joins pieces into chunks, carrying the tail of each chunk into the next one
// as long as it fits into chunkOverlap.
func (s *recursiveSplitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	var lengths []int
	total := 0

	for _, piece := range pieces {
		length := utf8.RuneCountInString(piece)

		if total+length > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.chunkOverlap || (total+length > s.chunkSize && total > 0) {
				total -= lengths[0]
				current = current[1:]
				lengths = lengths[1:]
			}
		}

		current = append(current, piece)
		lengths = append(lengths, length)
		total += length
	}

	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitKeepingSeparator splits text on separator, attaching each separator to the
// start of the piece that follows it. Empty pieces are dropped.
func splitKeepingSeparator(text string, separator string) []string {
	if separator == "" {
		pieces := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, separator)
	pieces := make([]string, 0, len(parts))
	if parts[0] != "" {
		pieces = append(pieces, parts[0])
	}
	for _, part := range parts[1:] {
		pieces = append(pieces, separator+part)
	}
	return pieces
}

// runeIndex returns the rune offset of the first occurrence of substr in text
// at or after the rune offset from, or -1.
func runeIndex(text string, substr string, from int) int {
	byteFrom, runeFrom := 0, 0
	for runeFrom < from && byteFrom < len(text) {
		_, size := utf8.DecodeRuneInString(text[byteFrom:])
		byteFrom += size
		runeFrom++
	}

	found := strings.Index(text[byteFrom:], substr)
	if found < 0 {
		return -1
	}
	return runeFrom + utf8.RuneCountInString(text[byteFrom:byteFrom+found])
}
