package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/binkread/internal/config"
)

func newSummarizeCmd() *cobra.Command {
	var (
		chunkSize   int
		maxTokens   int
		maxLength   int
		minLength   int
		noStructure bool
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Summarize a single document and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			flags := cmd.Flags()
			if flags.Changed("chunk-size") {
				cfg.ChunkSize = chunkSize
			}
			if flags.Changed("max-tokens") {
				cfg.MaxTokens = maxTokens
			}
			if flags.Changed("max-length") {
				cfg.SummaryMaxLength = maxLength
			}
			if flags.Changed("min-length") {
				cfg.SummaryMinLength = minLength
			}
			if noStructure {
				cfg.StructureAcademic = false
			}
			// The CLI is a local tool; the API key only guards the HTTP routes.
			cfg.Env = "development"
			if !verbose {
				cfg.LogLevel = "warn"
			}

			log := newLogger(cmd.ErrOrStderr(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			a, err := buildApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.summarizer.SummarizeDocument(cmd.Context(), data, filepath.Base(path))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Summary)
			if out.ChunksSkipped > 0 || out.ChunksFailed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d chunks: %d skipped, %d failed\n",
					out.ChunksTotal, out.ChunksSkipped, out.ChunksFailed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&chunkSize, "chunk-size", 0, "characters per chunk (overrides CHUNK_SIZE)")
	f.IntVar(&maxTokens, "max-tokens", 0, "skip chunks above this many tokens (overrides MAX_TOKENS)")
	f.IntVar(&maxLength, "max-length", 0, "maximum summary tokens per chunk")
	f.IntVar(&minLength, "min-length", 0, "minimum summary tokens per chunk")
	f.BoolVar(&noStructure, "no-structure", false, "disable the academic structuring pass")
	f.BoolVarP(&verbose, "verbose", "v", false, "log per-chunk progress")
	return cmd
}
