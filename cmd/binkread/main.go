package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/binkread/internal/config"
	"github.com/dgallion1/binkread/internal/llm"
	"github.com/dgallion1/binkread/internal/metrics"
	"github.com/dgallion1/binkread/internal/parser"
	"github.com/dgallion1/binkread/internal/pipeline"
	"github.com/dgallion1/binkread/internal/store"
	"github.com/dgallion1/binkread/internal/summarize"
	"github.com/dgallion1/binkread/internal/textclean"
	"github.com/dgallion1/binkread/internal/tokenizer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "binkread",
		Short:        "Summarize PDFs and other documents chunk by chunk",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFiles()
		},
	}
	root.AddCommand(newServeCmd(), newSummarizeCmd())
	return root
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// app holds the components shared by serve and summarize.
type app struct {
	stats      *llm.LLMStats
	metrics    *metrics.Exporter
	summarizer *pipeline.Summarizer
	cache      *store.Store
	oracle     summarize.Summarizer
}

func buildApp(cfg config.Config, log *slog.Logger) (*app, error) {
	counter, err := tokenizer.New(cfg.Tokenizer, cfg.TiktokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}

	stats := llm.NewLLMStats(cfg.SummarizerProvider, 0)
	oracle, err := llm.New(llm.Config{
		Provider: cfg.SummarizerProvider,
		Model:    cfg.SummarizerModel,
		APIKey:   cfg.SummarizerAPIKey,
		BaseURL:  cfg.SummarizerBaseURL,
		RPS:      cfg.SummarizerRPS,
		Counter:  counter,
	}, stats)
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w", err)
	}

	cleaner, variant := textclean.New(nil), "plain"
	if cfg.StructureAcademic {
		cleaner, variant = textclean.Default(), "academic"
	}

	exp := metrics.New()
	p := summarize.New(cleaner, counter, oracle, log)
	p.SetObserver(exp)

	var cache *store.Store
	if cfg.SummaryDBPath != "" {
		cache, err = store.Open(cfg.SummaryDBPath)
		if err != nil {
			return nil, fmt.Errorf("summary cache: %w", err)
		}
	}

	s := pipeline.NewSummarizer(p, cache, exp, pipeline.SummarizerConfig{
		Options: summarize.Options{
			ChunkSize:        cfg.ChunkSize,
			MaxTokens:        cfg.MaxTokens,
			SummaryMaxLength: cfg.SummaryMaxLength,
			SummaryMinLength: cfg.SummaryMinLength,
			ChunkTimeout:     cfg.ChunkTimeout,
		},
		Parser: parser.Options{
			PDFBackend:        cfg.PDFBackend,
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
		},
		AllowedExtensions: cfg.AllowedExtensions,
		CleanerVariant:    variant,
		Backend:           cfg.SummarizerProvider + "/" + cfg.SummarizerModel,
	}, log)

	return &app{stats: stats, metrics: exp, summarizer: s, cache: cache, oracle: oracle}, nil
}

func (a *app) Close() {
	if c, ok := a.oracle.(interface{ Close() }); ok {
		c.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
}
