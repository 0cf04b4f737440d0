package evalcmd

import (
	"fmt"
	"os"

	"github.com/nesventory/identifier/internal/config"
	"github.com/spf13/cobra"
)

// ConfigFunc returns the configuration loaded by the root command
type ConfigFunc func() *config.Config

// NewRunCmd creates the run command
func NewRunCmd(cfgFn ConfigFunc) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Identify every labelled image and score the results",
		Long: `Runs identification over a labelled dataset of collectible photographs and
compares the top candidate for each image against its label.

Names and series are scored with exact, substring and Levenshtein matching.
The rarity label and the genuine flag are checked for agreement. Results are
written to <output>/<model>-<timestamp>.yaml.`,
		Example: `  # Evaluate the first 20 images with Gemini
  identifier eval run --dataset ./labels.jsonl --sample 20

  # Evaluate everything with a local Ollama model
  identifier eval run --dataset ./labels.parquet --sample -1 --provider ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", opts.datasetPath)
			}

			cfg := *cfgFn()
			if opts.provider != "" {
				cfg.Provider = opts.provider
				if opts.model == "" {
					cfg.Model = ""
				}
			}
			if opts.model != "" {
				cfg.Model = opts.model
			}

			return executeRun(cmd.Context(), &cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to a .jsonl or .parquet label file (required)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "evals", "Directory for the results file")
	cmd.Flags().IntVar(&opts.sampleSize, "sample", 10, "Number of images to evaluate (-1 for all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 2, "Images identified in parallel")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Override the configured provider (gemini, openai, ollama)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Override the configured model")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <results.yaml>",
		Short: "Print a saved evaluation",
		Args:  cobra.ExactArgs(1),
		Example: `  identifier eval report evals/gemini-2.5-flash-2025-11-02_08-00-00.yaml
  identifier eval report evals/gpt-4o-2025-11-02_08-00-00.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, csv, json)")
	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List labelled dataset entries",
		Long: `Prints the entries of a label file with their expected rarity, and flags
missing images and implausible years before a run.`,
		Example: `  identifier eval inspect --dataset ./labels.jsonl --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.OutOrStdout(), datasetPath, limit)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to a .jsonl or .parquet label file (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show (0 for all)")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}
