package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/siherrmann/processrag"
	"github.com/siherrmann/processrag/helper"
)

const sampleContent = `# Sandwich line improvement log

## Week 1
The bread slicer produced uneven slices. The operator recalibrated the blade height
and added a daily check of the blade to the shift checklist.

## Week 2
Butter was applied too thick at station 2. The dosing nozzle was replaced and the
target amount was written on the station board.

## Week 3
Packaging stopped twice because of label jams. The label roll holder was adjusted
and the operators were trained to change rolls without stopping the line.`

const question = `L1 recalibrated the slicer blade
L2 replaced the butter dosing nozzle
L3 adjusted the label roll holder`

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container with pgvector
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(ctx)

	// The chat credential is read from GEMINI_API_KEY or ANTHROPIC_API_KEY
	config, err := helper.NewConfiguration(".env")
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}
	config.IndexBackend = helper.BackendPostgres
	config.Database = helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	rag, err := processrag.NewRag(ctx, config, nil)
	if err != nil {
		log.Fatalf("Failed to create rag: %v", err)
	}
	defer rag.Close()

	dir, err := os.MkdirTemp("", "processrag-basic")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	documentPath := filepath.Join(dir, "improvement_log.md")
	if err := os.WriteFile(documentPath, []byte(sampleContent), 0644); err != nil {
		log.Fatalf("Failed to write document: %v", err)
	}

	fmt.Println("Ingesting document...")
	numChunks, err := rag.BuildOrLoad(ctx, documentPath)
	if err != nil {
		log.Fatalf("Failed to ingest document: %v", err)
	}
	fmt.Printf("Index holds %d chunks\n", numChunks)

	fmt.Printf("\nAsking about:\n%s\n\n", question)
	result, err := rag.Ask(ctx, question, nil)
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}

	if err := processrag.WriteReport(os.Stdout, result); err != nil {
		log.Fatalf("Failed to print report: %v", err)
	}

	written, err := processrag.WriteCSV(filepath.Join(dir, "out"), result)
	if err != nil {
		log.Fatalf("Failed to write csv: %v", err)
	}
	fmt.Printf("\nWrote %d result files\n", len(written))

	fmt.Println("\nBasic example completed successfully!")
}
