package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Auth for /api routes. Optional in development.
	APIKey string

	// Summarization oracle
	SummarizerProvider string
	SummarizerModel    string
	SummarizerAPIKey   string
	SummarizerBaseURL  string
	SummarizerRPS      float64

	// Token counting oracle
	Tokenizer        string
	TiktokenEncoding string

	// Pipeline
	ChunkSize         int
	MaxTokens         int
	SummaryMaxLength  int
	SummaryMinLength  int
	ChunkTimeout      time.Duration
	StructureAcademic bool

	// Upload limits
	MaxUploadBytes    int64
	AllowedExtensions []string

	// PDF
	PDFBackend           string
	PDFFallbackPdftotext bool

	// Worker pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Summary cache; empty disables it.
	SummaryDBPath string
}

const (
	defaultChunkSize        = 4000
	defaultMaxTokens        = 1024
	defaultSummaryMaxLength = 300
	defaultSummaryMinLength = 100
	defaultMaxUploadBytes   = 16 * 1024 * 1024 // 16MB
)

var defaultExtensions = "pdf,txt,md,markdown,html,htm,docx,csv"

// LoadEnvFiles loads .env into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func Load() Config {
	env := strings.ToLower(envOr("APP_ENV", "development"))
	logLevel := "info"
	if env == "development" {
		logLevel = "debug"
	}

	cfg := Config{
		Port:     envOr("PORT", "5000"),
		Env:      env,
		LogLevel: strings.ToLower(envOr("LOG_LEVEL", logLevel)),

		APIKey: os.Getenv("BINKREAD_API_KEY"),

		SummarizerProvider: strings.ToLower(envOr("SUMMARIZER_PROVIDER", "openai")),
		SummarizerModel:    envOr("SUMMARIZER_MODEL", "gpt-4o-mini"),
		SummarizerAPIKey:   os.Getenv("SUMMARIZER_API_KEY"),
		SummarizerBaseURL:  os.Getenv("SUMMARIZER_BASE_URL"),
		SummarizerRPS:      envFloat("SUMMARIZER_RPS", 0),

		Tokenizer:        strings.ToLower(envOr("TOKENIZER", "estimate")),
		TiktokenEncoding: envOr("TIKTOKEN_ENCODING", "cl100k_base"),

		ChunkSize:         envInt("CHUNK_SIZE", defaultChunkSize),
		MaxTokens:         envInt("MAX_TOKENS", defaultMaxTokens),
		SummaryMaxLength:  envInt("SUMMARY_MAX_LENGTH", defaultSummaryMaxLength),
		SummaryMinLength:  envInt("SUMMARY_MIN_LENGTH", defaultSummaryMinLength),
		ChunkTimeout:      envDuration("CHUNK_TIMEOUT", 2*time.Minute),
		StructureAcademic: envBool("STRUCTURE_ACADEMIC", true),

		MaxUploadBytes:    envInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		AllowedExtensions: splitList(envOr("ALLOWED_EXTENSIONS", defaultExtensions)),

		PDFBackend:           strings.ToLower(envOr("PDF_BACKEND", "ledongthuc")),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		SummaryDBPath: os.Getenv("SUMMARY_DB_PATH"),
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.SummaryMaxLength <= 0 {
		cfg.SummaryMaxLength = defaultSummaryMaxLength
	}
	if cfg.SummaryMinLength < 0 {
		cfg.SummaryMinLength = defaultSummaryMinLength
	}
	if cfg.ChunkTimeout < 0 {
		cfg.ChunkTimeout = 0
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.SummaryMinLength > c.SummaryMaxLength {
		return fmt.Errorf("SUMMARY_MIN_LENGTH (%d) exceeds SUMMARY_MAX_LENGTH (%d)", c.SummaryMinLength, c.SummaryMaxLength)
	}
	if c.IsProduction() && c.APIKey == "" {
		return fmt.Errorf("BINKREAD_API_KEY is required in production")
	}

	switch c.SummarizerProvider {
	case "openai", "openrouter", "anthropic":
		if c.SummarizerAPIKey == "" {
			return fmt.Errorf("SUMMARIZER_API_KEY is required for provider %q", c.SummarizerProvider)
		}
	case "ollama", "lead":
	default:
		return fmt.Errorf("unknown SUMMARIZER_PROVIDER %q", c.SummarizerProvider)
	}

	switch c.Tokenizer {
	case "estimate", "tiktoken":
	default:
		return fmt.Errorf("unknown TOKENIZER %q", c.Tokenizer)
	}

	switch c.PDFBackend {
	case "ledongthuc", "fitz":
	default:
		return fmt.Errorf("unknown PDF_BACKEND %q", c.PDFBackend)
	}

	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS must list at least one extension")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitList parses "pdf, .txt,MD" into [".pdf" ".txt" ".md"].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	return out
}
