// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/jonathan/architect/internal/llm"
)

// Storage backends.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Defaults applied to unset fields.
const (
	DefaultStorage        = StorageFile
	DefaultDataDir        = ".architect"
	DefaultHTTPPort       = 8080
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultEnvironment    = "production"
	DefaultMatchThreshold = 0.6
	DefaultUndoWindow     = 5 * time.Second
)

// Duration is a time.Duration that reads "5s" style strings from JSON and the environment.
type Duration time.Duration

// Decode implements envconfig.Decoder.
func (d *Duration) Decode(value string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.Decode(s)
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or milliseconds: %w", err)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the process configuration. Every field may come from a JSON file and
// is then overridden by the matching environment variable when that is set.
type Config struct {
	// AI
	APIKey        string `json:"api_key,omitempty"        envconfig:"GEMINI_API_KEY"`
	ModelLite     string `json:"model_lite,omitempty"     envconfig:"ARCHITECT_MODEL_LITE"`
	ModelStandard string `json:"model_standard,omitempty" envconfig:"ARCHITECT_MODEL_STANDARD"`
	ModelAdvanced string `json:"model_advanced,omitempty" envconfig:"ARCHITECT_MODEL_ADVANCED"`
	ModelSpeech   string `json:"model_speech,omitempty"   envconfig:"ARCHITECT_MODEL_SPEECH"`
	Voice         string `json:"voice,omitempty"          envconfig:"ARCHITECT_VOICE"`
	AudioPlayer   string `json:"audio_player,omitempty"   envconfig:"ARCHITECT_AUDIO_PLAYER"` // e.g. "aplay -q"

	// Storage
	Storage     string `json:"storage,omitempty"      envconfig:"ARCHITECT_STORAGE"`
	DataDir     string `json:"data_dir,omitempty"     envconfig:"ARCHITECT_DATA_DIR"`
	DatabaseURL string `json:"database_url,omitempty" envconfig:"DATABASE_URL"`

	// Behavior
	MatchThreshold  float64  `json:"match_threshold,omitempty"  envconfig:"ARCHITECT_MATCH_THRESHOLD"`
	UndoWindow      Duration `json:"undo_window,omitempty"      envconfig:"ARCHITECT_UNDO_WINDOW"`
	ConnectivityURL string   `json:"connectivity_url,omitempty" envconfig:"ARCHITECT_CONNECTIVITY_URL"`
	BrowserRender   bool     `json:"browser_render,omitempty"   envconfig:"ARCHITECT_BROWSER_RENDER"` // storefront audits fall back to headless Chrome

	// Service
	HTTPPort    int    `json:"http_port,omitempty"   envconfig:"HTTP_PORT"`
	LogLevel    string `json:"log_level,omitempty"   envconfig:"LOG_LEVEL"`
	LogFormat   string `json:"log_format,omitempty"  envconfig:"LOG_FORMAT"`
	Environment string `json:"environment,omitempty" envconfig:"ENVIRONMENT"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv overlays environment variables onto cfg. Unset variables leave fields untouched.
// API_KEY is accepted when GEMINI_API_KEY is absent.
func FromEnv(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("API_KEY")
	}
	return nil
}

// Load reads the optional JSON file at path, applies the environment, fills defaults and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := FromEnv(cfg); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Storage:        DefaultStorage,
		DataDir:        DefaultDataDir,
		MatchThreshold: DefaultMatchThreshold,
		UndoWindow:     Duration(DefaultUndoWindow),
		HTTPPort:       DefaultHTTPPort,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Environment:    DefaultEnvironment,
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("config error: unknown storage %q (want file, memory or postgres)", c.Storage)
	}
	if c.Storage == StoragePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for postgres storage")
	}
	if c.Storage == StorageFile && c.DataDir == "" {
		return fmt.Errorf("config error: 'data_dir' is required for file storage")
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("config error: 'match_threshold' must be in (0, 1]")
	}
	if c.UndoWindow <= 0 {
		return fmt.Errorf("config error: 'undo_window' must be positive")
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("config error: 'http_port' out of range")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.ModelLite, defaults.ModelLite)
	fill(&result.ModelStandard, defaults.ModelStandard)
	fill(&result.ModelAdvanced, defaults.ModelAdvanced)
	fill(&result.ModelSpeech, defaults.ModelSpeech)
	fill(&result.Voice, defaults.Voice)
	fill(&result.AudioPlayer, defaults.AudioPlayer)
	fill(&result.Storage, defaults.Storage)
	fill(&result.DataDir, defaults.DataDir)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.ConnectivityURL, defaults.ConnectivityURL)
	fill(&result.LogLevel, defaults.LogLevel)
	fill(&result.LogFormat, defaults.LogFormat)
	fill(&result.Environment, defaults.Environment)

	// Numeric fields: use default if zero
	if result.MatchThreshold == 0 {
		result.MatchThreshold = defaults.MatchThreshold
	}
	if result.UndoWindow == 0 {
		result.UndoWindow = defaults.UndoWindow
	}
	if result.HTTPPort == 0 {
		result.HTTPPort = defaults.HTTPPort
	}
	result.BrowserRender = result.BrowserRender || defaults.BrowserRender

	return result
}

// Undo returns the undo window as a time.Duration.
func (c *Config) Undo() time.Duration {
	return time.Duration(c.UndoWindow)
}

// LogFormatOrEnv returns "console" in development, otherwise the configured format.
func (c *Config) LogFormatOrEnv() string {
	if strings.EqualFold(c.Environment, "development") {
		return "console"
	}
	return c.LogFormat
}

// LLMConfig returns the model configuration with any per-tier overrides applied.
func (c *Config) LLMConfig() *llm.Config {
	out := llm.DefaultConfig()
	overrides := map[llm.ModelTier]string{
		llm.TierLite:     c.ModelLite,
		llm.TierStandard: c.ModelStandard,
		llm.TierAdvanced: c.ModelAdvanced,
		llm.TierSpeech:   c.ModelSpeech,
	}
	for tier, model := range overrides {
		if model != "" {
			out = out.WithModel(tier, model)
		}
	}
	if c.Voice != "" {
		out.Voice = c.Voice
	}
	return out
}

// PlayerArgs splits AudioPlayer into a command and its arguments.
func (c *Config) PlayerArgs() (string, []string) {
	fields := strings.Fields(c.AudioPlayer)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
