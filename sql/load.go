package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed documents.sql
var documentsSQL string

//go:embed chunks.sql
var chunksSQL string

// DocumentsFunctions are the plpgsql functions created by documents.sql
var DocumentsFunctions = []string{
	"init_documents",
	"insert_document",
	"select_document",
	"select_all_documents",
	"delete_document",
}

// ChunksFunctions are the plpgsql functions created by chunks.sql
var ChunksFunctions = []string{
	"init_chunks",
	"insert_chunk",
	"select_chunk",
	"select_chunks_by_document",
	"select_chunks_by_similarity",
	"count_chunks",
	"delete_chunks_by_document",
}

// Init creates the extensions the index relies on (vector, pgcrypto)
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing init SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadDocumentsSql loads the document functions.
// Without force nothing is executed if all functions already exist.
func LoadDocumentsSql(db *sql.DB, force bool) error {
	return loadFunctions(db, "documents", documentsSQL, DocumentsFunctions, force)
}

// LoadChunksSql loads the chunk functions.
// Without force nothing is executed if all functions already exist.
func LoadChunksSql(db *sql.DB, force bool) error {
	return loadFunctions(db, "chunks", chunksSQL, ChunksFunctions, force)
}

// LoadAllSql loads documents before chunks since chunks reference documents
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadDocumentsSql(db, force); err != nil {
		return err
	}
	return LoadChunksSql(db, force)
}

func loadFunctions(db *sql.DB, name string, script string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(script)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required %s SQL functions were created", name)
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions reports whether every function in sqlFunctions exists.
// An empty list reports false.
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
