package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/huimingz/autocommit-go/pkg/lang"
)

// DefaultFileName is the config file looked up in the working directory and
// the user's home directory.
const DefaultFileName = ".autocommit.yaml"

// Supported providers
var supportedProviders = map[string]bool{
	"openai":   true,
	"deepseek": true,
	"ollama":   true,
	"gemini":   true,
	"grok":     true,
}

// SupportedProviders returns a list of supported providers
func SupportedProviders() []string {
	providers := make([]string, 0, len(supportedProviders))
	for p := range supportedProviders {
		providers = append(providers, p)
	}
	return providers
}

// Config represents the on-disk application configuration
type Config struct {
	Description  *bool                  `yaml:"description" mapstructure:"description"`
	Emoji        bool                   `yaml:"emoji" mapstructure:"emoji"`
	Language     string                 `yaml:"language" mapstructure:"language"`
	Name         string                 `yaml:"name" mapstructure:"name"`
	Email        string                 `yaml:"email" mapstructure:"email"`
	DefaultModel string                 `yaml:"default_model" mapstructure:"default_model"`
	Models       map[string]ModelConfig `yaml:"models" mapstructure:"models"`
	TokenBudget  int                    `yaml:"token_budget" mapstructure:"token_budget"`
	Retry        *RetryConfig           `yaml:"retry" mapstructure:"retry"`
}

// ModelConfig represents a single model configuration
type ModelConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Model    string `yaml:"model" mapstructure:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// RetryConfig represents the retry configuration
type RetryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBase float64 `yaml:"backoff_base" mapstructure:"backoff_base"` // in seconds
	BackoffMax  float64 `yaml:"backoff_max" mapstructure:"backoff_max"`   // in seconds
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BackoffBase: 1.0,
		BackoffMax:  8.0,
	}
}

// Validate validates the retry configuration
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be non-negative")
	}
	if r.BackoffBase < 0 {
		return fmt.Errorf("backoff_base must be non-negative")
	}
	if r.BackoffMax < r.BackoffBase {
		return fmt.Errorf("backoff_max must be greater than or equal to backoff_base")
	}
	return nil
}

// Validate validates the model configuration
func (m *ModelConfig) Validate() error {
	if m.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !supportedProviders[m.Provider] {
		return fmt.Errorf("unsupported provider: %s", m.Provider)
	}
	if m.Model == "" {
		return fmt.Errorf("model is required")
	}
	// API key is required for all providers except ollama
	if m.Provider != "ollama" && m.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %s", m.Provider)
	}
	return nil
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}

	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default model '%s' not found in models configuration", c.DefaultModel)
		}
	}

	for name, model := range c.Models {
		if err := model.Validate(); err != nil {
			return fmt.Errorf("invalid model '%s': %w", name, err)
		}
	}

	if c.TokenBudget < 0 {
		return fmt.Errorf("token_budget must be non-negative")
	}

	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	return nil
}

// GetModel returns the model configuration by name
// Priority: parameter > env variable (AUTOCOMMIT_MODEL) > default_model
func (c *Config) GetModel(modelName string) (*ModelConfig, error) {
	if modelName == "" {
		modelName = os.Getenv("AUTOCOMMIT_MODEL")
	}
	if modelName == "" {
		modelName = c.DefaultModel
	}
	if modelName == "" {
		return nil, fmt.Errorf("no model specified and no default model configured")
	}

	model, ok := c.Models[modelName]
	if !ok {
		return nil, fmt.Errorf("model '%s' not found in configuration", modelName)
	}

	// Expand environment variables in API key
	model.APIKey = expandEnv(model.APIKey)

	return &model, nil
}

// GetLanguage returns the language to use
// Priority: parameter > env variable (AUTOCOMMIT_LANG) > config file > default (en)
func (c *Config) GetLanguage(langParam string) string {
	if langParam != "" {
		return langParam
	}
	if envLang := os.Getenv("AUTOCOMMIT_LANG"); envLang != "" {
		return envLang
	}
	if c.Language != "" {
		return c.Language
	}
	return lang.DefaultLanguage().String()
}

// GetRetryConfig returns the retry configuration with defaults applied
func (c *Config) GetRetryConfig() *RetryConfig {
	if c.Retry == nil {
		return DefaultRetryConfig()
	}
	defaults := DefaultRetryConfig()
	if c.Retry.MaxAttempts < 0 {
		c.Retry.MaxAttempts = defaults.MaxAttempts
	}
	if c.Retry.BackoffBase < 0 {
		c.Retry.BackoffBase = defaults.BackoffBase
	}
	if c.Retry.BackoffMax < 0 {
		c.Retry.BackoffMax = defaults.BackoffMax
	}
	return c.Retry
}

// DescriptionEnabled reports whether a commit body should be requested.
// Enabled unless the config explicitly turns it off.
func (c *Config) DescriptionEnabled() bool {
	return c.Description == nil || *c.Description
}

// Generation is the resolved, immutable set of settings one pipeline run
// receives. It is constructed once per invocation and never written back.
type Generation struct {
	Description bool   // request a commit body
	Emoji       bool   // request a gitmoji prefix
	Language    string // output language code
	Provider    string
	Model       string
	APIHost     string
	APIKey      string
	MaxRetries  int
	TokenBudget int
	Name        string // commit author, pass-through only
	Email       string // commit author, pass-through only
}

// ResolveGeneration builds the Generation value for one run.
// modelName and langParam are CLI overrides; empty means use config/env.
func (c *Config) ResolveGeneration(modelName, langParam string) (Generation, error) {
	model, err := c.GetModel(modelName)
	if err != nil {
		return Generation{}, err
	}
	if err := model.Validate(); err != nil {
		return Generation{}, err
	}

	retry := c.GetRetryConfig()
	maxRetries := retry.MaxAttempts
	if !retry.Enabled {
		maxRetries = 0
	}

	return Generation{
		Description: c.DescriptionEnabled(),
		Emoji:       c.Emoji,
		Language:    lang.ParseLanguage(c.GetLanguage(langParam)).String(),
		Provider:    model.Provider,
		Model:       model.Model,
		APIHost:     model.BaseURL,
		APIKey:      model.APIKey,
		MaxRetries:  maxRetries,
		TokenBudget: c.TokenBudget,
		Name:        c.Name,
		Email:       c.Email,
	}, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// LoadFromFile loads configuration from a file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Load loads configuration with the following priority:
// 1. Custom path if provided
// 2. Current directory .autocommit.yaml
// 3. Home directory ~/.autocommit.yaml
func Load(customPath string) (*Config, error) {
	if customPath != "" {
		return LoadFromFile(customPath)
	}

	if cfg, err := LoadFromFile(DefaultFileName); err == nil {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	homeCfgPath := filepath.Join(homeDir, DefaultFileName)
	if cfg, err := LoadFromFile(homeCfgPath); err == nil {
		return cfg, nil
	}

	return nil, fmt.Errorf("no configuration file found. Run 'autocommit init' to create one")
}

// SettableKeys lists the keys the `config set` command accepts.
func SettableKeys() []string {
	return []string{
		"description", "emoji", "language", "name", "email",
		"default_model", "token_budget",
	}
}

// GetKey returns the current value of a settable key as a string.
func (c *Config) GetKey(key string) (string, error) {
	switch key {
	case "description":
		return strconv.FormatBool(c.DescriptionEnabled()), nil
	case "emoji":
		return strconv.FormatBool(c.Emoji), nil
	case "language":
		return c.GetLanguage(""), nil
	case "name":
		return c.Name, nil
	case "email":
		return c.Email, nil
	case "default_model":
		return c.DefaultModel, nil
	case "token_budget":
		return strconv.Itoa(c.TokenBudget), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// SetKey updates a settable key from its string form.
func (c *Config) SetKey(key, value string) error {
	switch key {
	case "description":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for description: %q", value)
		}
		c.Description = &b
	case "emoji":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for emoji: %q", value)
		}
		c.Emoji = b
	case "language":
		l := lang.Language(value)
		if !l.IsValid() {
			return fmt.Errorf("unsupported language: %q", value)
		}
		c.Language = value
	case "name":
		c.Name = value
	case "email":
		c.Email = value
	case "default_model":
		if _, ok := c.Models[value]; !ok {
			return fmt.Errorf("model '%s' not found in models configuration", value)
		}
		c.DefaultModel = value
	case "token_budget":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for token_budget: %q", value)
		}
		c.TokenBudget = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Save writes the configuration back to path as YAML.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("description", c.DescriptionEnabled())
	v.Set("emoji", c.Emoji)
	v.Set("language", c.Language)
	v.Set("name", c.Name)
	v.Set("email", c.Email)
	v.Set("default_model", c.DefaultModel)
	if c.TokenBudget > 0 {
		v.Set("token_budget", c.TokenBudget)
	}
	models := make(map[string]map[string]string, len(c.Models))
	for name, m := range c.Models {
		entry := map[string]string{
			"provider": m.Provider,
			"model":    m.Model,
		}
		if m.APIKey != "" {
			entry["api_key"] = m.APIKey
		}
		if m.BaseURL != "" {
			entry["base_url"] = m.BaseURL
		}
		models[name] = entry
	}
	v.Set("models", models)
	if c.Retry != nil {
		v.Set("retry", map[string]interface{}{
			"enabled":      c.Retry.Enabled,
			"max_attempts": c.Retry.MaxAttempts,
			"backoff_base": c.Retry.BackoffBase,
			"backoff_max":  c.Retry.BackoffMax,
		})
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
