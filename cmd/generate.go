package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kayz/codeloom/internal/catalog"
	"github.com/kayz/codeloom/internal/config"
	"github.com/kayz/codeloom/internal/llm"
	"github.com/kayz/codeloom/internal/pipeline"
	"github.com/kayz/codeloom/internal/workspace"
)

var (
	genFlavor  string
	genProject string
	genOut     string
	genZip     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [requirements-file]",
	Short: "Run one pipeline over a requirements document",
	Long: `Run one pipeline over a requirements document and write the
generated files to disk. Reads the document from the given file, or
from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&genFlavor, "flavor", "backend", "Pipeline flavor to run")
	generateCmd.Flags().StringVar(&genProject, "project", "", "Project name (defaults to generated_<flavor>)")
	generateCmd.Flags().StringVar(&genOut, "out", "", "Output directory (defaults to output.dir from config)")
	generateCmd.Flags().BoolVar(&genZip, "zip", false, "Also write a ZIP archive next to the output directory")
}

func runGenerate(cmd *cobra.Command, args []string) {
	task, err := readTask(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading requirements: %v\n", err)
		os.Exit(1)
	}
	if task == "" {
		fmt.Fprintln(os.Stderr, "Error: requirements document is empty")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	provider, err := llm.NewProvider(cfg.AI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating provider: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(catalog.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	if genProject == "" {
		genProject = "generated_" + genFlavor
	}
	outDir := genOut
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	observer := func(ev pipeline.TurnEvent) {
		fmt.Printf("turn %d/%d [%s] -> %d file(s)\n", ev.Turn, ev.Budget, ev.Role, ev.Artifacts)
	}

	coordinator := pipeline.NewCoordinator(cat, provider, observer)
	result, err := coordinator.Run(cmd.Context(), genFlavor, task, genProject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	written, err := workspace.WriteAll(outDir, result.Artifacts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	if result.Degraded {
		fmt.Printf("pipeline degraded after %d turn(s)", result.Turns)
		if result.Failure != nil {
			fmt.Printf(": %v", result.Failure)
		}
		fmt.Println()
	}
	fmt.Printf("wrote %d file(s) under %s\n", written, outDir)

	if genZip {
		data, err := workspace.BuildZip(result.Artifacts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building archive: %v\n", err)
			os.Exit(1)
		}
		zipPath := filepath.Join(outDir, genProject+".zip")
		if err := os.WriteFile(zipPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing archive: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("archive: %s\n", zipPath)
	}
}

func readTask(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}
