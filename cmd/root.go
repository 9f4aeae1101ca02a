package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/codeloom/internal/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "codeloom",
	Short: "codeloom staged code generation pipeline",
	Long: `codeloom runs staged LLM pipelines that turn a requirements
document into project files.

Commands:
  codeloom generate  Run one pipeline from the command line
  codeloom flavors   List the available pipeline flavors
  codeloom serve     Run the HTTP API and web UI`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
