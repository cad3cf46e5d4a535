// Package config holds the settings every catalogger component is built from.
//
// Values are layered: built-in defaults, then an optional YAML or TOML file,
// then environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config is the root configuration.
type Config struct {
	CatalogFile string `yaml:"catalog_file" toml:"catalog_file"`
	NotesFile   string `yaml:"notes_file" toml:"notes_file"`
	LogFile     string `yaml:"log_file" toml:"log_file"`
	HistoryDB   string `yaml:"history_db" toml:"history_db"`
	ReportsDir  string `yaml:"reports_dir" toml:"reports_dir"`

	LLM    LLM    `yaml:"llm" toml:"llm"`
	Books  Books  `yaml:"books" toml:"books"`
	Speech Speech `yaml:"speech" toml:"speech"`
}

// LLM configures the field extractor's language model.
type LLM struct {
	Provider    string  `yaml:"provider" toml:"provider"`
	Model       string  `yaml:"model" toml:"model"`
	Temperature float64 `yaml:"temperature" toml:"temperature"`

	OpenAIAPIKey  string `yaml:"openai_api_key" toml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url" toml:"openai_base_url"`
	OllamaURL     string `yaml:"ollama_url" toml:"ollama_url"`
	GeminiAPIKey  string `yaml:"gemini_api_key" toml:"gemini_api_key"`
}

// Books configures the Google Books metadata lookup.
type Books struct {
	APIKey                string  `yaml:"api_key" toml:"api_key"`
	Endpoint              string  `yaml:"endpoint" toml:"endpoint"`
	MaxAttempts           int     `yaml:"max_attempts" toml:"max_attempts"`
	InitialBackoffSeconds int     `yaml:"initial_backoff_seconds" toml:"initial_backoff_seconds"`
	RequestsPerSecond     float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	TimeoutSeconds        int     `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// Speech configures spoken input.
type Speech struct {
	RecordCommand []string `yaml:"record_command" toml:"record_command"`
	Model         string   `yaml:"model" toml:"model"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		CatalogFile: filepath.Join("data", "book_catalog.csv"),
		NotesFile:   filepath.Join("data", "entry_notes.txt"),
		LogFile:     filepath.Join("logs", "catalogger.log"),
		HistoryDB:   filepath.Join("data", "history.db"),
		ReportsDir:  filepath.Join("logs", "runs"),
		LLM: LLM{
			Provider:      ProviderOpenAI,
			Temperature:   0.1,
			OpenAIBaseURL: "https://api.openai.com/v1",
			OllamaURL:     "http://localhost:11434",
		},
		Books: Books{
			MaxAttempts:           3,
			InitialBackoffSeconds: 1,
			TimeoutSeconds:        30,
		},
		Speech: Speech{
			RecordCommand: []string{"arecord", "-q", "-f", "cd", "-d", "8", "{file}"},
			Model:         "whisper-1",
		},
	}
}

// Load builds a Config from defaults, the file at path (if any) and the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format: %s (supported: .yaml, .yml, .toml)", ext)
	}
	return nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.LLM.Provider, "CATALOGING_PROVIDER")
	setFromEnv(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	setFromEnv(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setFromEnv(&c.LLM.OllamaURL, "OLLAMA_HOST")
	setFromEnv(&c.LLM.OllamaURL, "OLLAMA_URL")
	setFromEnv(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setFromEnv(&c.Books.APIKey, "GOOGLE_BOOKS_API_KEY")
	setFromEnv(&c.CatalogFile, "CATALOGGER_CATALOG_FILE")
	setFromEnv(&c.NotesFile, "CATALOGGER_NOTES_FILE")

	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel(c.LLM.Provider)
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o-mini"
	case ProviderOllama:
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "mistral-small3.2:24b"
	case ProviderGemini:
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// Validate reports settings no component can work with.
func (c Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unsupported provider: %s", c.LLM.Provider))
	}
	if c.CatalogFile == "" {
		errs = append(errs, errors.New("catalog_file must be set"))
	}
	if c.NotesFile == "" {
		errs = append(errs, errors.New("notes_file must be set"))
	}
	if c.Books.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("books.max_attempts must be at least 1, got %d", c.Books.MaxAttempts))
	}
	if c.Books.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("books.requests_per_second must not be negative"))
	}

	return errors.Join(errs...)
}

// EnsureDirs creates the parent directories of every output file.
func (c Config) EnsureDirs() error {
	for _, p := range []string{c.CatalogFile, c.NotesFile, c.LogFile, c.HistoryDB} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}
	if c.ReportsDir != "" {
		if err := os.MkdirAll(c.ReportsDir, 0755); err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
