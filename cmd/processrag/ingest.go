package main

import (
	"context"

	"github.com/siherrmann/processrag"
	"github.com/siherrmann/processrag/helper"
	"github.com/spf13/cobra"
)

var (
	ingestDownloadURL string
	ingestForce       bool
	ingestIndexType   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a document",
	Long: `Loads a PDF, spreadsheet or Markdown file, splits it into chunks and stores
their embeddings in the vector index. An index that already holds chunks is
reused unless --force is set. With the postgres backend --index-type rebuilds
the vector index afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDownloadURL, "download-url", "", "download the file from this URL if it does not exist")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "add the file even if the index is not empty")
	ingestCmd.Flags().StringVar(&ingestIndexType, "index-type", "", "rebuild the postgres vector index as hnsw or ivfflat")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := prepareDocument(ctx, path, ingestDownloadURL); err != nil {
		return err
	}

	logger := helper.NewLogger(cmd.ErrOrStderr(), config.SlogLevel())

	rag, err := processrag.NewRag(ctx, config, logger)
	if err != nil {
		return err
	}
	defer rag.Close()

	if ingestForce {
		count, err := rag.Ingest(ctx, path)
		if err != nil {
			return err
		}
		cmd.Printf("Added %d chunks\n", count)
	} else {
		count, err := rag.BuildOrLoad(ctx, path)
		if err != nil {
			return err
		}
		cmd.Printf("Index holds %d chunks\n", count)
	}

	if ingestIndexType != "" {
		if err := rag.ChangeIndexType(ctx, ingestIndexType); err != nil {
			return err
		}
		cmd.Printf("Rebuilt vector index as %s\n", ingestIndexType)
	}
	return nil
}

// prepareDocument downloads the document if a URL is given and the file is missing
func prepareDocument(ctx context.Context, path string, url string) error {
	if url == "" {
		return nil
	}
	return helper.DownloadFile(ctx, url, path)
}
