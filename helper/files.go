package helper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PromptSeparator is put in front of every Markdown file read by ReadQueryPrompt
const PromptSeparator = "\n\n---\n\n"

// ReadQueryPrompt concatenates all Markdown files matching pattern.
// Every file is prefixed with PromptSeparator, in filepath.Glob order.
func ReadQueryPrompt(pattern string) (string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return "", NewError("glob query prompt", err)
	}
	if len(files) == 0 {
		return "", NewError("read query prompt", fmt.Errorf("no files match %q: %w", pattern, os.ErrNotExist))
	}

	var question strings.Builder
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", NewError("read query prompt", err)
		}
		question.WriteString(PromptSeparator)
		question.Write(content)
	}

	if strings.TrimSpace(strings.ReplaceAll(question.String(), PromptSeparator, "")) == "" {
		return "", NewError("read query prompt", fmt.Errorf("%q: %w", pattern, ErrEmptyFile))
	}

	return question.String(), nil
}

// ReadMermaidFile reads a Mermaid (.mmd) knowledge graph and returns it trimmed.
// A file without the .mmd extension is read but logged as a warning.
func ReadMermaidFile(filePath string, logger *slog.Logger) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", NewError("read mermaid file", err)
	}

	if strings.ToLower(filepath.Ext(filePath)) != ".mmd" && logger != nil {
		logger.Warn("Knowledge graph file does not have a .mmd extension", slog.String("path", filePath))
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", NewError("read mermaid file", fmt.Errorf("%q: %w", filePath, ErrEmptyFile))
	}

	return text, nil
}

// DownloadFile fetches url into dstPath unless dstPath already exists
func DownloadFile(ctx context.Context, url string, dstPath string) error {
	if _, err := os.Stat(dstPath); err == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewError("create download request", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (processrag)")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return NewError("download file", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewError("download file", fmt.Errorf("unexpected status %s for %s", resp.Status, url))
	}

	if dir := filepath.Dir(dstPath); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return NewError("create download directory", err)
		}
	}

	tmpPath := dstPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return NewError("create download file", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return NewError("write download file", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return NewError("close download file", err)
	}

	return os.Rename(tmpPath, dstPath)
}
