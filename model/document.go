package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/processrag/helper"
)

// Document represents an ingested source file
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocumentFromFile creates a Document for an existing, non-empty file.
// The title defaults to the filename without extension, the source to the file path.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", filePath, helper.ErrEmptyFile)
	}

	filename := filepath.Base(filePath)
	title := filename[:len(filename)-len(filepath.Ext(filename))]
	if title == "" {
		title = filename
	}

	return &Document{
		RID:      uuid.New(),
		Title:    title,
		Source:   filePath,
		Metadata: metadata,
	}, nil
}
