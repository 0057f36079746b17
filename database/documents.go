package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
	loadSql "github.com/siherrmann/processrag/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(ctx context.Context, doc *model.Document) error
	SelectDocument(ctx context.Context, rid uuid.UUID) (*model.Document, error)
	SelectAllDocuments(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.Document, error)
	DeleteDocument(ctx context.Context, rid uuid.UUID) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It loads the document SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := loadSql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table if it does not exist yet.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		return helper.NewError("init documents", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument inserts a document and fills in the generated fields
func (h *DocumentsDBHandler) InsertDocument(ctx context.Context, doc *model.Document) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_document($1, $2, $3)`,
		doc.Title,
		doc.Source,
		doc.Metadata,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by RID
func (h *DocumentsDBHandler) SelectDocument(ctx context.Context, rid uuid.UUID) (*model.Document, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_document($1)`,
		rid,
	)

	doc := &model.Document{}
	err := scanDocument(row, doc)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectAllDocuments retrieves documents newest first.
// Pass the CreatedAt of the last document of a page to get the next page.
func (h *DocumentsDBHandler) SelectAllDocuments(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_all_documents($1, $2)`,
		lastCreatedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var documents []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		err := scanDocument(rows, doc)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		documents = append(documents, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return documents, nil
}

// DeleteDocument deletes a document and, by cascade, its chunks
func (h *DocumentsDBHandler) DeleteDocument(ctx context.Context, rid uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_document($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

var _ rowScanner = (*sql.Row)(nil)

func scanDocument(row rowScanner, doc *model.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.RID,
		&doc.Title,
		&doc.Source,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}
