package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	Splitter    SplitterConfig  `toml:"splitter"`
	Retriever   RetrieverConfig `toml:"retriever"`
	Notes       NotesConfig     `toml:"notes"`
	Crawler     CrawlerConfig   `toml:"crawler"`
	Logging     LoggingConfig   `toml:"logging"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// EmbeddingConfig selects and configures the embedding backend
type EmbeddingConfig struct {
	Provider  string `toml:"provider" validate:"oneof=local openai gemini"` // Embedding backend
	Model     string `toml:"model"`                                        // Model name (provider-specific)
	Dimension int    `toml:"dimension" validate:"gt=0"`                    // Vector dimension, fixed per deployment
	Endpoint  string `toml:"endpoint"`                                     // Base URL for local/openai-compatible servers
	APIKey    string `toml:"api_key"`                                      // API key for remote providers
	Timeout   string `toml:"timeout"`                                      // Per-call timeout, e.g. "30s"
	BatchSize int    `toml:"batch_size" validate:"gt=0"`                   // Documents embedded per batch
}

// SplitterConfig controls chunking behavior
type SplitterConfig struct {
	ChunkSize    int `toml:"chunk_size" validate:"gt=0"`
	ChunkOverlap int `toml:"chunk_overlap" validate:"gte=0"`
}

// RetrieverConfig controls hybrid ranking and context assembly
type RetrieverConfig struct {
	VectorWeight    float64 `toml:"vector_weight" validate:"gte=0,lte=1"` // Hybrid blend weight for the vector score
	TopK            int     `toml:"top_k" validate:"gt=0"`                // Default result count
	MaxKeywords     int     `toml:"max_keywords" validate:"gt=0"`         // Query keyword set size
	MaxContextChars int     `toml:"max_context_chars" validate:"gt=0"`    // Context window character budget
}

// NotesConfig configures notes-directory ingestion
type NotesConfig struct {
	Dir             string   `toml:"dir"`              // Directory containing note files
	Extensions      []string `toml:"extensions"`       // File extensions to index (default: [".md"])
	Watch           bool     `toml:"watch"`            // Watch the directory for live changes
	ReindexSchedule string   `toml:"reindex_schedule"` // Cron schedule for full re-index sweeps (empty = disabled)
}

// CrawlerConfig configures the web page fetcher
type CrawlerConfig struct {
	UserAgent         string  `toml:"user_agent"`
	Timeout           string  `toml:"timeout"`             // Per-request timeout, e.g. "30s"
	RequestsPerSecond float64 `toml:"requests_per_second"` // Rate limit for outbound fetches
	MaxBodySize       int64   `toml:"max_body_size"`       // Max response body bytes
}

// RequestTimeout parses the configured fetch timeout, falling back to 30s
func (c *CrawlerConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns a Config populated with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           defaultDataDir(),
				ResetOnStartup: false,
			},
		},
		Embedding: EmbeddingConfig{
			Provider:  "local",
			Model:     "nomic-embed-text-v1.5",
			Dimension: 768,
			Endpoint:  "http://127.0.0.1:8086",
			Timeout:   "30s",
			BatchSize: 16,
		},
		Splitter: SplitterConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Retriever: RetrieverConfig{
			VectorWeight:    0.7,
			TopK:            5,
			MaxKeywords:     10,
			MaxContextChars: 6000,
		},
		Notes: NotesConfig{
			Dir:        "./notes",
			Extensions: []string{".md"},
			Watch:      false,
		},
		Crawler: CrawlerConfig{
			UserAgent:         "recall/1.0 (+https://github.com/recallhq/recall)",
			Timeout:           "30s",
			RequestsPerSecond: 1,
			MaxBodySize:       10 * 1024 * 1024, // 10MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// defaultDataDir returns the per-user database directory
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data/db"
	}
	return filepath.Join(home, ".local", "share", "recall", "db")
}

// EmbeddingTimeout parses the configured embedding timeout, falling back to 30s
func (c *Config) EmbeddingTimeout() time.Duration {
	d, err := time.ParseDuration(c.Embedding.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks the configuration for caller errors.
// Splitter overlap must be strictly below chunk size or the splitter makes no progress.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		return fmt.Errorf("invalid configuration: chunk_overlap (%d) must be less than chunk_size (%d)",
			c.Splitter.ChunkOverlap, c.Splitter.ChunkSize)
	}
	return nil
}

// LoadFromFile loads configuration from a single file path
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RECALL_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if badgerPath := os.Getenv("RECALL_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if provider := os.Getenv("RECALL_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
	if model := os.Getenv("RECALL_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
	if dim := os.Getenv("RECALL_EMBEDDING_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil && d > 0 {
			config.Embedding.Dimension = d
		}
	}
	if endpoint := os.Getenv("RECALL_EMBEDDING_ENDPOINT"); endpoint != "" {
		config.Embedding.Endpoint = endpoint
	}
	if key := os.Getenv("RECALL_EMBEDDING_API_KEY"); key != "" {
		config.Embedding.APIKey = key
	}

	if notesDir := os.Getenv("RECALL_NOTES_DIR"); notesDir != "" {
		config.Notes.Dir = notesDir
	}

	if level := os.Getenv("RECALL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("RECALL_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}
}
