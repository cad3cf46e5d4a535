package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CATALOGING_PROVIDER", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"OLLAMA_HOST", "OLLAMA_URL", "OLLAMA_MODEL", "GEMINI_API_KEY", "GEMINI_MODEL",
		"GOOGLE_BOOKS_API_KEY", "CATALOGGER_CATALOG_FILE", "CATALOGGER_NOTES_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("data", "book_catalog.csv"), cfg.CatalogFile)
	assert.Equal(t, filepath.Join("data", "entry_notes.txt"), cfg.NotesFile)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Books.MaxAttempts)
	assert.Equal(t, 1, cfg.Books.InitialBackoffSeconds)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "catalogger.yaml")
	content := `catalog_file: /tmp/books.csv
llm:
  provider: ollama
books:
  max_attempts: 5
  requests_per_second: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/books.csv", cfg.CatalogFile)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "mistral-small3.2:24b", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.Books.MaxAttempts)
	assert.InDelta(t, 2.0, cfg.Books.RequestsPerSecond, 0.001)
	// untouched keys keep their defaults
	assert.Equal(t, filepath.Join("data", "entry_notes.txt"), cfg.NotesFile)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "catalogger.toml")
	content := `notes_file = "/tmp/notes.txt"

[llm]
provider = "gemini"
model = "gemini-2.0-flash"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/notes.txt", cfg.NotesFile)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOGING_PROVIDER", "ollama")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "llama3")
	t.Setenv("GOOGLE_BOOKS_API_KEY", "books-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.OllamaURL)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "books-key", cfg.Books.APIKey)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "unsupported extension",
			file:    "config.ini",
			content: "x=1",
			wantErr: "unsupported config format",
		},
		{
			name:    "unknown provider",
			file:    "bad.yaml",
			content: "llm:\n  provider: claude\n",
			wantErr: "unsupported provider",
		},
		{
			name:    "zero attempts",
			file:    "zero.yaml",
			content: "books:\n  max_attempts: 0\n",
			wantErr: "max_attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.CatalogFile = filepath.Join(dir, "a", "catalog.csv")
	cfg.NotesFile = filepath.Join(dir, "b", "notes.txt")
	cfg.LogFile = filepath.Join(dir, "logs", "x.log")
	cfg.HistoryDB = filepath.Join(dir, "db", "history.db")
	cfg.ReportsDir = filepath.Join(dir, "reports")

	require.NoError(t, cfg.EnsureDirs())

	for _, sub := range []string{"a", "b", "logs", "db", "reports"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
