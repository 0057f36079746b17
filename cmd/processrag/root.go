package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/siherrmann/processrag/helper"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	envFile      string
	indexBackend string
	persistDir   string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "processrag",
	Short: "Extract process knowledge from documents",
	Long: `Indexes a PDF, spreadsheet or Markdown document into a vector index and
answers questions about it. Answers are either LLD/GPM extraction records or
plain text, always listed with the sources they were based on.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file")
	rootCmd.PersistentFlags().StringVar(&indexBackend, "backend", "", "index backend (local or postgres)")
	rootCmd.PersistentFlags().StringVar(&persistDir, "persist-dir", "", "directory of the local index")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig reads the configuration and applies the persistent flags.
// A missing chat credential is asked for on the terminal.
func loadConfig(cmd *cobra.Command) (*helper.Configuration, error) {
	config, err := helper.NewConfiguration(envFile)
	if err != nil {
		return nil, err
	}

	if indexBackend != "" {
		config.IndexBackend = indexBackend
	}
	if persistDir != "" {
		config.PersistDir = persistDir
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}

	if strings.TrimSpace(config.APIKey()) == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter your %s API key: ", config.ChatProvider())
		config.SetAPIKey(readSecret(cmd.InOrStdin()))
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	return config, nil
}

// readSecret reads a line without echo when in is a terminal
func readSecret(in io.Reader) string {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}

	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
