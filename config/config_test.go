package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ScenarioDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := "provider: anthropic\nmodel: claude-sonnet-4-5\nlog_level: debug\nscenario_dir: ./scenarios\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rivulet.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "./scenarios", cfg.ScenarioDir)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rivulet.yaml"), []byte("provider: anthropic\n"), 0o644))

	t.Setenv("PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rivulet.yaml"), []byte("provider: [\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestCheckCredential(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "openai key present",
			cfg:  Config{Provider: "openai", OpenAIAPIKey: "sk-test"},
		},
		{
			name:    "openai key missing",
			cfg:     Config{Provider: "openai"},
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "anthropic key missing",
			cfg:     Config{Provider: "anthropic"},
			wantErr: "ANTHROPIC_API_KEY",
		},
		{
			name: "gemini key present",
			cfg:  Config{Provider: "gemini", GeminiAPIKey: "test"},
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "wat"},
			wantErr: "unknown provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.CheckCredential()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
