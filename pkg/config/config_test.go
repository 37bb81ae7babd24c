package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfigFile(t, `
llm:
  model: llama3-70b-8192
  max_tokens: 1024
database:
  backend: chromem
  path: /var/lib/studychat/index
server:
  port: "9090"
  top_k: 3
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3-70b-8192", config.LLM.Model)
	assert.Equal(t, 1024, config.LLM.MaxTokens)
	assert.Equal(t, "/var/lib/studychat/index", config.Database.Path)
	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, 3, config.Server.TopK)

	// Unset fields fall back to defaults.
	assert.Equal(t, "https://api.groq.com/openai/v1", config.LLM.BaseURL)
	assert.Equal(t, "nomic-embed-text:latest", config.Encoder.Model)
	assert.Equal(t, 400, config.Processor.ChunkSize)
	assert.Equal(t, 100, config.Processor.ChunkOverlap)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "llm: [not a mapping")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("DATABASE_URL", "postgres://localhost/studychat")
	t.Setenv("PORT", "3000")

	path := writeConfigFile(t, `
server:
  port: "9090"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gsk_test", config.LLM.APIKey)
	assert.Equal(t, "postgres://localhost/studychat", config.Database.URL)
	// Environment wins over the file.
	assert.Equal(t, "3000", config.Server.Port)
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	config := &Config{}
	applyDefaults(config)

	assert.Empty(t, config.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	config := &Config{}
	applyDefaults(config)
	config.LLM.MaxTokens = 5000
	config.LLM.Temperature = 3
	config.Database.Backend = "bolt"
	config.Processor.ChunkOverlap = 400 // equals chunk_size

	errs := config.Validate()
	require.Len(t, errs, 4)

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Contains(t, fields, "llm.max_tokens")
	assert.Contains(t, fields, "llm.temperature")
	assert.Contains(t, fields, "database.backend")
	assert.Contains(t, fields, "processor.chunk_overlap")
}

func TestValidate_PgvectorRequiresURL(t *testing.T) {
	config := &Config{}
	applyDefaults(config)
	config.Database.Backend = "pgvector"
	config.Database.URL = ""

	errs := config.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "database.url", errs[0].Field)
}
