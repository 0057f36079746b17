package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/processrag"
	"github.com/siherrmann/processrag/core/pipeline"
	"github.com/siherrmann/processrag/helper"
	"github.com/spf13/cobra"
)

var (
	askFile        string
	askDownloadURL string
	askPrompts     string
	askGraph       string
	askTargets     string
	askSheet       string
	askOut         string
	askTopK        int
	askThreshold   float64
	askMode        string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the chunks relevant to the question and asks the chat model for
an answer. Without a question argument the question is read from the Markdown
files matching --prompts. A knowledge graph (--graph) and target rows of a
spreadsheet (--targets) are appended to the question.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "document to index first if the index is empty")
	askCmd.Flags().StringVar(&askDownloadURL, "download-url", "", "download --file from this URL if it does not exist")
	askCmd.Flags().StringVarP(&askPrompts, "prompts", "p", "./prompts/*.md", "glob of Markdown files forming the question")
	askCmd.Flags().StringVarP(&askGraph, "graph", "g", "", "Mermaid knowledge graph (.mmd) appended to the question")
	askCmd.Flags().StringVar(&askTargets, "targets", "", "spreadsheet of target actions appended to the question")
	askCmd.Flags().StringVar(&askSheet, "sheet", "", "sheet of --targets, the active sheet if empty")
	askCmd.Flags().StringVarP(&askOut, "out", "o", "", "directory for the CSV results")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve")
	askCmd.Flags().Float64VarP(&askThreshold, "threshold", "t", -1, "minimum relevance score in [0, 1]")
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "answer mode (extraction or text)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if askTopK != 0 {
		config.TopK = askTopK
	}
	if cmd.Flags().Changed("threshold") {
		config.RelevanceThreshold = askThreshold
	}
	if askMode != "" {
		config.AnswerMode = askMode
	}

	logger := helper.NewLogger(cmd.ErrOrStderr(), config.SlogLevel())

	question := ""
	if len(args) == 1 {
		question = args[0]
	}
	question, err = buildQuestion(question, askPrompts, askGraph, askTargets, askSheet, logger)
	if err != nil {
		return err
	}

	if askFile != "" {
		if err := prepareDocument(ctx, askFile, askDownloadURL); err != nil {
			return err
		}
	}

	rag, err := processrag.NewRag(ctx, config, logger)
	if err != nil {
		return err
	}
	defer rag.Close()

	if askFile != "" {
		if _, err := rag.BuildOrLoad(ctx, askFile); err != nil {
			return err
		}
	}

	result, err := rag.Ask(ctx, question, nil)
	if err != nil {
		return err
	}

	cmd.Println()
	if err := processrag.WriteReport(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if askOut != "" {
		written, err := processrag.WriteCSV(askOut, result)
		if err != nil {
			return err
		}
		cmd.Printf("\nWrote %s\n", strings.Join(written, ", "))
	}

	return nil
}

// buildQuestion combines the question, read from the prompt files when empty, with the
// knowledge graph and the target rows.
func buildQuestion(question string, promptsGlob string, graphPath string, targetsPath string, sheet string, logger *slog.Logger) (string, error) {
	if strings.TrimSpace(question) == "" {
		var err error
		question, err = helper.ReadQueryPrompt(promptsGlob)
		if err != nil {
			return "", err
		}
	}

	if graphPath != "" {
		graph, err := helper.ReadMermaidFile(graphPath, logger)
		if err != nil {
			return "", err
		}
		question = fmt.Sprintf("%s\n\nKnowledge Graph:\n%s", question, graph)
	}

	if targetsPath != "" {
		rows, err := pipeline.ExcelLoader(sheet)(targetsPath)
		if err != nil {
			return "", helper.NewError("read targets", err)
		}

		targets := make([]string, len(rows))
		for i, row := range rows {
			targets[i] = fmt.Sprintf("Target %d:\n%s", row.Page+1, row.Content)
		}
		question = fmt.Sprintf("%s\n\nTargets:\n%s", question, strings.Join(targets, "\n\n"))

		sheetName := sheet
		if len(rows) > 0 {
			sheetName, _ = rows[0].Metadata.String("sheet")
		}
		logger.Info("Added targets to question", "path", targetsPath, "sheet", sheetName, "rows", len(rows))
	}

	return question, nil
}
