package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ModelConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid openai config",
			config: ModelConfig{
				Provider: "openai",
				APIKey:   "sk-xxx",
				Model:    "gpt-4o",
			},
			wantErr: false,
		},
		{
			name: "valid ollama config without api key",
			config: ModelConfig{
				Provider: "ollama",
				Model:    "qwen2.5:14b",
				BaseURL:  "http://localhost:11434/v1",
			},
			wantErr: false,
		},
		{
			name: "missing provider",
			config: ModelConfig{
				APIKey: "sk-xxx",
				Model:  "gpt-4o",
			},
			wantErr: true,
			errMsg:  "provider is required",
		},
		{
			name: "invalid provider",
			config: ModelConfig{
				Provider: "invalid",
				APIKey:   "sk-xxx",
				Model:    "gpt-4o",
			},
			wantErr: true,
			errMsg:  "unsupported provider",
		},
		{
			name: "missing api key for openai",
			config: ModelConfig{
				Provider: "openai",
				Model:    "gpt-4o",
			},
			wantErr: true,
			errMsg:  "api_key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := &Config{
		DefaultModel: "openai",
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "sk-xxx", Model: "gpt-4o"},
		},
	}
	assert.NoError(t, valid.Validate())

	noModels := &Config{}
	assert.Error(t, noModels.Validate())

	badDefault := &Config{
		DefaultModel: "missing",
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "sk-xxx", Model: "gpt-4o"},
		},
	}
	assert.Error(t, badDefault.Validate())

	negativeBudget := &Config{
		TokenBudget: -1,
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "sk-xxx", Model: "gpt-4o"},
		},
	}
	assert.Error(t, negativeBudget.Validate())
}

func TestConfig_GetModel_envExpansion(t *testing.T) {
	t.Setenv("TEST_AUTOCOMMIT_KEY", "sk-from-env")
	cfg := &Config{
		DefaultModel: "openai",
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "${TEST_AUTOCOMMIT_KEY}", Model: "gpt-4o"},
		},
	}
	m, err := cfg.GetModel("")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", m.APIKey)
}

func TestConfig_GetLanguage(t *testing.T) {
	cfg := &Config{Language: "ja"}
	assert.Equal(t, "zh", cfg.GetLanguage("zh"), "parameter wins")
	assert.Equal(t, "ja", cfg.GetLanguage(""), "config value used")

	empty := &Config{}
	assert.Equal(t, "en", empty.GetLanguage(""), "defaults to English")
}

func TestConfig_DescriptionEnabled(t *testing.T) {
	assert.True(t, (&Config{}).DescriptionEnabled(), "enabled by default")

	off := false
	assert.False(t, (&Config{Description: &off}).DescriptionEnabled())
}

func TestConfig_ResolveGeneration(t *testing.T) {
	cfg := &Config{
		Emoji:        true,
		Language:     "ja",
		Name:         "Dev",
		Email:        "dev@example.com",
		DefaultModel: "openai",
		TokenBudget:  2048,
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "sk-xxx", Model: "gpt-4o", BaseURL: "https://api.openai.com/v1"},
		},
		Retry: &RetryConfig{Enabled: true, MaxAttempts: 5, BackoffBase: 1, BackoffMax: 8},
	}

	gen, err := cfg.ResolveGeneration("", "")
	require.NoError(t, err)

	assert.True(t, gen.Description)
	assert.True(t, gen.Emoji)
	assert.Equal(t, "ja", gen.Language)
	assert.Equal(t, "openai", gen.Provider)
	assert.Equal(t, "gpt-4o", gen.Model)
	assert.Equal(t, "https://api.openai.com/v1", gen.APIHost)
	assert.Equal(t, "sk-xxx", gen.APIKey)
	assert.Equal(t, 5, gen.MaxRetries)
	assert.Equal(t, 2048, gen.TokenBudget)
	assert.Equal(t, "Dev", gen.Name)
}

func TestConfig_ResolveGeneration_retryDisabled(t *testing.T) {
	cfg := &Config{
		DefaultModel: "openai",
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "sk-xxx", Model: "gpt-4o"},
		},
		Retry: &RetryConfig{Enabled: false, MaxAttempts: 5, BackoffBase: 1, BackoffMax: 8},
	}
	gen, err := cfg.ResolveGeneration("", "")
	require.NoError(t, err)
	assert.Equal(t, 0, gen.MaxRetries)
}

func TestConfig_SetKeyGetKey(t *testing.T) {
	cfg := &Config{
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "sk-xxx", Model: "gpt-4o"},
		},
	}

	require.NoError(t, cfg.SetKey("emoji", "true"))
	v, err := cfg.GetKey("emoji")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, cfg.SetKey("language", "ko"))
	assert.Equal(t, "ko", cfg.Language)

	require.NoError(t, cfg.SetKey("default_model", "openai"))
	assert.Error(t, cfg.SetKey("default_model", "missing"))

	assert.Error(t, cfg.SetKey("language", "klingon"))
	assert.Error(t, cfg.SetKey("token_budget", "-5"))
	assert.Error(t, cfg.SetKey("nope", "x"))
	_, err = cfg.GetKey("nope")
	assert.Error(t, err)
}

func TestLoadFromFile_roundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	off := false
	cfg := &Config{
		Description:  &off,
		Emoji:        true,
		Language:     "zh",
		Name:         "Dev",
		Email:        "dev@example.com",
		DefaultModel: "deepseek",
		TokenBudget:  1024,
		Models: map[string]ModelConfig{
			"deepseek": {Provider: "deepseek", APIKey: "sk-xxx", Model: "deepseek-chat"},
		},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.False(t, loaded.DescriptionEnabled())
	assert.True(t, loaded.Emoji)
	assert.Equal(t, "zh", loaded.Language)
	assert.Equal(t, "deepseek", loaded.DefaultModel)
	assert.Equal(t, 1024, loaded.TokenBudget)
	require.Contains(t, loaded.Models, "deepseek")
	assert.Equal(t, "deepseek-chat", loaded.Models["deepseek"].Model)
}

func TestLoadFromFile_missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_missingEverywhere(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)
	t.Setenv("HOME", dir)

	_, err = Load("")
	assert.Error(t, err)
}
