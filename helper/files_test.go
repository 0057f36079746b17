package helper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQueryPrompt(t *testing.T) {
	t.Run("Concatenates files with separator", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("first"), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("second"), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("ignored"), 0600))

		question, err := ReadQueryPrompt(filepath.Join(dir, "*.md"))
		require.NoError(t, err)
		assert.Equal(t, "\n\n---\n\nfirst\n\n---\n\nsecond", question)
	})

	t.Run("No matching files", func(t *testing.T) {
		_, err := ReadQueryPrompt(filepath.Join(t.TempDir(), "*.md"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Only empty files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.md"), []byte("  \n"), 0600))

		_, err := ReadQueryPrompt(filepath.Join(dir, "*.md"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestReadMermaidFile(t *testing.T) {
	t.Run("Reads and trims graph", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.mmd")
		require.NoError(t, os.WriteFile(path, []byte("\ngraph TD\n  A --> B\n\n"), 0600))

		graph, err := ReadMermaidFile(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "graph TD\n  A --> B", graph)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := ReadMermaidFile(filepath.Join(t.TempDir(), "missing.mmd"), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.mmd")
		require.NoError(t, os.WriteFile(path, []byte("   "), 0600))

		_, err := ReadMermaidFile(path, nil)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Other extension is read with a warning", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.txt")
		require.NoError(t, os.WriteFile(path, []byte("graph LR"), 0600))

		var logged []byte
		logger := NewLogger(writerFunc(func(p []byte) (int, error) {
			logged = append(logged, p...)
			return len(p), nil
		}), 0)

		graph, err := ReadMermaidFile(path, logger)
		require.NoError(t, err)
		assert.Equal(t, "graph LR", graph)
		assert.Contains(t, string(logged), ".mmd extension")
	})
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doc.pdf":
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte("%PDF-1.4 content"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Run("Downloads missing file", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "docs", "doc.pdf")

		err := DownloadFile(context.Background(), server.URL+"/doc.pdf", dst)
		require.NoError(t, err)

		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 content", string(content))
	})

	t.Run("Existing file is kept", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "doc.pdf")
		require.NoError(t, os.WriteFile(dst, []byte("local"), 0600))

		err := DownloadFile(context.Background(), server.URL+"/missing.pdf", dst)
		require.NoError(t, err)

		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "local", string(content))
	})

	t.Run("Non success status is an error", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "doc.pdf")

		err := DownloadFile(context.Background(), server.URL+"/missing.pdf", dst)
		assert.Error(t, err)
		assert.NoFileExists(t, dst)
	})
}
