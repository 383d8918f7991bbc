// Package config loads the dictate binary configuration from a YAML file,
// DICTATE_* environment variables and built-in defaults, in that order of
// precedence (environment first).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/jinzhu/copier"
	"github.com/spf13/viper"

	"github.com/koscakluka/ema-dictation/core/prompts"
)

const (
	AppName   = "ema-dictation"
	EnvPrefix = "DICTATE"

	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config stores all configuration of the dictate binary.
type Config struct {
	Deepgram DeepgramConfig `mapstructure:"deepgram" json:"deepgram"`
	LLM      LLMConfig      `mapstructure:"llm" json:"llm"`
	Audio    AudioConfig    `mapstructure:"audio" json:"audio"`
	Prompt   PromptConfig   `mapstructure:"prompt" json:"prompt"`
	Output   OutputConfig   `mapstructure:"output" json:"output"`
	History  HistoryConfig  `mapstructure:"history" json:"history"`
}

type DeepgramConfig struct {
	APIKey   string `mapstructure:"api_key" json:"api_key,omitempty" jsonschema:"description=Falls back to DEEPGRAM_API_KEY"`
	URL      string `mapstructure:"url" json:"url,omitempty"`
	Model    string `mapstructure:"model" json:"model"`
	Language string `mapstructure:"language" json:"language"`
	// HardFinalizePadding is the silence sent ahead of a forced finalize.
	HardFinalizePadding time.Duration `mapstructure:"hard_finalize_padding" json:"hard_finalize_padding"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider" json:"provider" jsonschema:"enum=groq,enum=openai"`
	Model       string  `mapstructure:"model" json:"model,omitempty"`
	APIKey      string  `mapstructure:"api_key" json:"api_key,omitempty" jsonschema:"description=Falls back to GROQ_API_KEY or OPENAI_API_KEY"`
	BaseURL     string  `mapstructure:"base_url" json:"base_url,omitempty"`
	Temperature float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`
}

type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate" json:"sample_rate" jsonschema:"enum=8000,enum=16000,enum=24000,enum=32000,enum=44100,enum=48000"`
	// Device is a capture device ID or name, see `dictate devices`.
	Device string `mapstructure:"device" json:"device,omitempty" jsonschema:"description=Capture device ID or name; the system default when empty"`
}

type OutputConfig struct {
	Clipboard bool `mapstructure:"clipboard" json:"clipboard" jsonschema:"description=Copy each formatted dictation to the clipboard"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" json:"path,omitempty" jsonschema:"description=Database file; history.db in the user config directory when empty"`
	// Limit caps the stored entries, zero keeps everything.
	Limit int `mapstructure:"limit" json:"limit"`
}

// PromptConfig mirrors prompts.SectionConfig field for field.
type PromptConfig struct {
	MainOverride string `mapstructure:"main_override" json:"main_override,omitempty"`

	AdvancedEnabled  bool   `mapstructure:"advanced_enabled" json:"advanced_enabled"`
	AdvancedOverride string `mapstructure:"advanced_override" json:"advanced_override,omitempty"`

	DictionaryEnabled  bool   `mapstructure:"dictionary_enabled" json:"dictionary_enabled"`
	DictionaryOverride string `mapstructure:"dictionary_override" json:"dictionary_override,omitempty"`
}

var supportedSampleRates = []int{8000, 16000, 24000, 32000, 44100, 48000}

// LoadConfig reads configuration from configPath, or from dictate.yaml in the
// working directory or the user config directory when configPath is empty.
// A missing file is not an error when no explicit path is given.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
		v.SetConfigName("dictate")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("deepgram.api_key", EnvPrefix+"_DEEPGRAM_API_KEY", "DEEPGRAM_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deepgram.api_key", "")
	v.SetDefault("deepgram.url", "")
	v.SetDefault("deepgram.model", "nova-3")
	v.SetDefault("deepgram.language", "en-US")
	v.SetDefault("deepgram.hard_finalize_padding", 300*time.Millisecond)

	v.SetDefault("llm.provider", ProviderGroq)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)

	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.device", "")

	v.SetDefault("output.clipboard", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("history.limit", 500)

	defaults := prompts.DefaultSectionConfig()
	v.SetDefault("prompt.main_override", "")
	v.SetDefault("prompt.advanced_enabled", defaults.AdvancedEnabled)
	v.SetDefault("prompt.advanced_override", "")
	v.SetDefault("prompt.dictionary_enabled", defaults.DictionaryEnabled)
	v.SetDefault("prompt.dictionary_override", "")
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGroq, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, c.LLM.Provider)
	}
	if !slices.Contains(supportedSampleRates, c.Audio.SampleRate) {
		return fmt.Errorf("%w: unsupported sample rate %d", ErrInvalidConfig, c.Audio.SampleRate)
	}
	if c.Deepgram.HardFinalizePadding < 0 {
		return fmt.Errorf("%w: negative hard finalize padding", ErrInvalidConfig)
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("%w: negative max tokens", ErrInvalidConfig)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("%w: negative history limit", ErrInvalidConfig)
	}
	return nil
}

// PromptSections converts the prompt block into the composer's config.
func (c *Config) PromptSections() (prompts.SectionConfig, error) {
	var sections prompts.SectionConfig
	if err := copier.Copy(&sections, &c.Prompt); err != nil {
		return prompts.SectionConfig{}, fmt.Errorf("failed to copy prompt sections: %w", err)
	}
	return sections, nil
}

// ResolvedAPIKey returns the configured key or the provider's conventional
// environment variable.
func (c LLMConfig) ResolvedAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	switch c.Provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GROQ_API_KEY")
	}
}

// ResolvedPath returns the configured database file or history.db in the
// user config directory.
func (c HistoryConfig) ResolvedPath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppName, "history.db"), nil
}

// Schema returns the JSON schema of the configuration file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Config{})
	schema.Title = "dictate configuration"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config schema: %w", err)
	}
	return data, nil
}
