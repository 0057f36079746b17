package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/siherrmann/processrag/core/pipeline"
	"github.com/siherrmann/processrag/core/retrieval"
	"github.com/siherrmann/processrag/database/local"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
)

// Retrieval without a chat model: ingest pages into the on-disk index and print the
// prompt context and citations for a few queries.
var pages = []pipeline.Page{
	{Content: "The bread slicer produced uneven slices. The operator recalibrated the blade height.", Source: "logs/week1.pdf", Page: 0},
	{Content: "A daily blade check was added to the shift checklist of the slicer station.", Source: "logs/week1.pdf", Page: 1},
	{Content: "Butter was applied too thick at station 2, the dosing nozzle was replaced.", Source: "logs/week2.pdf", Page: 0},
	{Content: "Label jams stopped the packaging line twice. The label roll holder was adjusted.", Source: "logs/week3.pdf", Page: 0},
}

var queries = []string{
	"How was the slicer fixed?",
	"What happened at the packaging line?",
	"Quarterly revenue of the sales department",
}

func main() {
	ctx := context.Background()
	logger := helper.NewLogger(os.Stdout, slog.LevelInfo)

	dir, err := os.MkdirTemp("", "processrag-retrieval")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	// all-MiniLM-L6-v2 produces 384-dimensional embeddings
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	index, err := local.Open(dir, 384, logger)
	if err != nil {
		log.Fatalf("Failed to open index: %v", err)
	}
	defer index.Close()

	p := pipeline.NewPipeline(nil, pipeline.DefaultChunker(), embedder)
	chunks, err := p.Process(ctx, pages)
	if err != nil {
		log.Fatalf("Failed to process pages: %v", err)
	}

	doc := &model.Document{Title: "Improvement logs", Source: "logs"}
	if err := index.AddDocument(ctx, doc, chunks); err != nil {
		log.Fatalf("Failed to store chunks: %v", err)
	}
	fmt.Printf("Stored %d chunks\n", len(chunks))

	config := model.DefaultQueryConfig()
	config.TopK = 3
	config.SimilarityThreshold = 0.3

	retriever := retrieval.NewRetriever(index, embedder, logger)
	for _, query := range queries {
		fmt.Printf("\n=== %s ===\n", query)

		relevant, err := retriever.Retrieve(ctx, query, config.TopK, config.SimilarityThreshold)
		if err != nil {
			log.Fatalf("Failed to retrieve: %v", err)
		}
		if len(relevant) == 0 {
			fmt.Println("No sufficiently relevant sources found.")
			continue
		}

		fmt.Println(retrieval.FormatContext(relevant))
		fmt.Println("\nSources:")
		for i, source := range retrieval.UniqueSources(relevant) {
			fmt.Printf("%d. %s (p.%d)\n", i+1, source.Source, source.Page)
		}
	}

	fmt.Println("\nRetrieval example completed successfully!")
}
