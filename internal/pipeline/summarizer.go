package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/binkread/internal/parser"
	"github.com/dgallion1/binkread/internal/store"
	"github.com/dgallion1/binkread/internal/summarize"
)

// ErrUnsupportedType is returned for files outside the upload whitelist.
var ErrUnsupportedType = errors.New("unsupported file type")

// Recorder receives per-document metrics. *metrics.Exporter implements it.
type Recorder interface {
	DocumentDone(status string)
	SetQueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) DocumentDone(string) {}
func (nopRecorder) SetQueueDepth(int)   {}

// SummarizerConfig is the document-level configuration.
type SummarizerConfig struct {
	Options           summarize.Options
	Parser            parser.Options
	AllowedExtensions []string // e.g. ".pdf"; empty allows every parser format
	// CleanerVariant and Backend ("provider/model") are part of the cache
	// key, so summaries from another cleaner or model are not reused.
	CleanerVariant string
	Backend        string
}

// Outcome is the result of summarizing one document.
type Outcome struct {
	Title         string `json:"title"`
	ContentHash   string `json:"content_hash"`
	Summary       string `json:"summary"`
	ChunksTotal   int    `json:"chunks_total"`
	ChunksSkipped int    `json:"chunks_skipped"`
	ChunksFailed  int    `json:"chunks_failed"`
	Cached        bool   `json:"cached"`
}

// Summarizer runs parse, hash, cache lookup, pipeline and cache write for
// one document. It backs both the synchronous endpoints and the workers.
type Summarizer struct {
	pipeline *summarize.Pipeline
	cache    *store.Store
	rec      Recorder
	cfg      SummarizerConfig
	log      *slog.Logger
}

// NewSummarizer wires the document flow. cache and rec may be nil.
func NewSummarizer(p *summarize.Pipeline, cache *store.Store, rec Recorder, cfg SummarizerConfig, log *slog.Logger) *Summarizer {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{pipeline: p, cache: cache, rec: rec, cfg: cfg, log: log}
}

// CheckFilename rejects files the service will not accept.
func (s *Summarizer) CheckFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !parser.IsSupportedExtension(filename) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if len(s.cfg.AllowedExtensions) > 0 && !slices.Contains(s.cfg.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return nil
}

// OptionsKey identifies the settings a cached summary was made with.
func (s *Summarizer) OptionsKey() string {
	return s.cfg.Options.Key() + ";cleaner=" + s.cfg.CleanerVariant + ";backend=" + s.cfg.Backend
}

// CachedSummaries reports how many summaries the cache holds. ok is false
// when caching is disabled.
func (s *Summarizer) CachedSummaries(ctx context.Context) (n int, ok bool, err error) {
	if s.cache == nil {
		return 0, false, nil
	}
	n, err = s.cache.Count(ctx)
	return n, true, err
}

// SummarizeDocument summarizes data synchronously.
func (s *Summarizer) SummarizeDocument(ctx context.Context, data []byte, filename string) (*Outcome, error) {
	return s.run(ctx, data, filename, nil)
}

// run executes the document flow, reporting progress on job when set.
func (s *Summarizer) run(ctx context.Context, data []byte, filename string, job *Job) (*Outcome, error) {
	log := s.log.With("filename", filename)
	if job != nil {
		log = log.With("job_id", job.ID)
	}

	out, err := s.summarize(ctx, data, filename, job, log)
	switch {
	case err != nil:
		s.rec.DocumentDone(string(StatusFailed))
	case out.Cached:
		s.rec.DocumentDone(string(StatusCached))
	default:
		s.rec.DocumentDone(string(StatusCompleted))
	}
	return out, err
}

func (s *Summarizer) summarize(ctx context.Context, data []byte, filename string, job *Job, log *slog.Logger) (*Outcome, error) {
	if err := s.CheckFilename(filename); err != nil {
		return nil, err
	}

	// Phase 1: Extract text
	if job != nil {
		job.SetStatus(StatusExtracting, "extracting text")
	}
	p, err := parser.ForFile(filename, s.cfg.Parser)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, err)
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		return nil, fmt.Errorf("parse: %w", err)
	}
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		return nil, summarize.ErrEmptyInput
	}

	out := &Outcome{Title: doc.Title, ContentHash: ContentHashHex([]byte(text))}
	optionsKey := s.OptionsKey()

	// Phase 1.5: Cache lookup
	if s.cache != nil {
		rec, err := s.cache.Get(ctx, out.ContentHash, optionsKey)
		switch {
		case err == nil:
			log.Info("cached summary found", "content_hash", out.ContentHash)
			out.Summary = rec.Summary
			out.ChunksTotal = rec.ChunksTotal
			out.ChunksSkipped = rec.ChunksSkipped
			out.ChunksFailed = rec.ChunksFailed
			out.Cached = true
			return out, nil
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("cache lookup failed, proceeding", "error", err)
		}
	}

	// Phase 2: Summarize
	if job != nil {
		job.SetStatus(StatusSummarizing, "summarizing chunks")
	}
	opts := s.cfg.Options
	if job != nil {
		opts.Progress = job.RecordChunk
	}
	res, err := s.pipeline.Run(ctx, text, opts)
	if res != nil {
		out.ChunksTotal = res.Total
		out.ChunksSkipped = res.Skipped
		out.ChunksFailed = res.Failed
	}
	if err != nil {
		log.Error("summarization failed", "error", err)
		return out, err
	}
	out.Summary = res.Summary
	log.Info("document summarized",
		"chunks", res.Total, "skipped", res.Skipped, "failed", res.Failed,
		"summary_chars", len(res.Summary))

	// Phase 3: Store. Skipped chunks are deterministic, failed ones may
	// succeed on the next upload.
	switch {
	case s.cache == nil:
	case res.Failed > 0:
		log.Info("not caching partial summary", "failed", res.Failed)
	default:
		err := s.cache.Put(ctx, store.Record{
			ContentHash:   out.ContentHash,
			OptionsKey:    optionsKey,
			Filename:      filename,
			Summary:       out.Summary,
			ChunksTotal:   out.ChunksTotal,
			ChunksSkipped: out.ChunksSkipped,
			ChunksFailed:  out.ChunksFailed,
		})
		if err != nil {
			log.Error("cache write failed", "error", err)
		}
	}
	return out, nil
}
