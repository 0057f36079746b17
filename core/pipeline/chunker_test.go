package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecursiveChunker(t *testing.T) {
	t.Run("Short text is a single chunk", func(t *testing.T) {
		chunks, err := RecursiveChunker(100, 10, DefaultSeparators)("  Hello world.  ")

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "Hello world.", chunks[0].Content)
		require.NotNil(t, chunks[0].StartPos)
		assert.Equal(t, 2, *chunks[0].StartPos)
	})

	t.Run("Splits on paragraphs first", func(t *testing.T) {
		text := "First paragraph here.\n\nSecond paragraph here."
		chunks, err := RecursiveChunker(25, 0, DefaultSeparators)(text)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "First paragraph here.", chunks[0].Content)
		assert.Equal(t, "Second paragraph here.", chunks[1].Content)
		assert.Equal(t, 0, *chunks[0].StartPos)
		assert.Equal(t, strings.Index(text, "Second"), *chunks[1].StartPos)
	})

	t.Run("Merges small pieces up to chunk size", func(t *testing.T) {
		chunks, err := RecursiveChunker(10, 0, []string{" ", ""})("aa bb cc dd ee")

		require.NoError(t, err)
		assert.Equal(t, []string{"aa bb cc", "dd ee"}, contents(chunks))
	})

	t.Run("Overlap carries trailing pieces", func(t *testing.T) {
		chunks, err := RecursiveChunker(8, 3, []string{" ", ""})("aa bb cc dd ee")

		require.NoError(t, err)
		assert.Equal(t, []string{"aa bb cc", "cc dd", "dd ee"}, contents(chunks))
		assert.Equal(t, []int{0, 6, 9}, offsets(chunks))
	})

	t.Run("Splits Japanese text on sentence marks", func(t *testing.T) {
		text := "生成AIの利用が広がっている。企業の導入も進んでいる。課題も多い。"
		chunks, err := RecursiveChunker(16, 0, DefaultSeparators)(text)

		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "生成AIの利用が広がっている", chunks[0].Content)
		assert.Equal(t, "。企業の導入も進んでいる", chunks[1].Content)
		assert.Equal(t, 14, *chunks[1].StartPos, "Offsets count characters")
		for _, chunk := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), 16)
		}
	})

	t.Run("Falls back to characters", func(t *testing.T) {
		chunks, err := RecursiveChunker(4, 0, DefaultSeparators)("abcdefghij")

		require.NoError(t, err)
		assert.Equal(t, []string{"abcd", "efgh", "ij"}, contents(chunks))
	})

	t.Run("No chunk exceeds chunk size", func(t *testing.T) {
		text := strings.Repeat("The press brake was recalibrated after the shift.\n", 80)
		chunks, err := DefaultChunker()(text)

		require.NoError(t, err)
		assert.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), DefaultChunkSize)
			require.NotNil(t, chunk.StartPos)
			assert.True(t, strings.HasPrefix(text[*chunk.StartPos:], chunk.Content))
		}
	})

	t.Run("Empty and whitespace text", func(t *testing.T) {
		chunks, err := DefaultChunker()("")
		require.NoError(t, err)
		assert.Empty(t, chunks)

		chunks, err = DefaultChunker()(" \n\n \n")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("Invalid sizes", func(t *testing.T) {
		_, err := RecursiveChunker(0, 0, DefaultSeparators)("text")
		assert.Error(t, err)

		_, err = RecursiveChunker(10, 10, DefaultSeparators)("text")
		assert.Error(t, err)
	})
}

func contents(chunks []ChunkWithOffset) []string {
	result := make([]string, len(chunks))
	for i, c := range chunks {
		result[i] = c.Content
	}
	return result
}

func offsets(chunks []ChunkWithOffset) []int {
	result := make([]int, len(chunks))
	for i, c := range chunks {
		result[i] = *c.StartPos
	}
	return result
}
