package newsroom

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// VendorConfig names a provider and carries its free-form settings map,
// decoded per provider with configutil.
type VendorConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type RetryConfig struct {
	MaxAttempts   int     `mapstructure:"max_attempts"`
	BaseDelayMS   int     `mapstructure:"base_delay_ms"`
	MaxDelayMS    int     `mapstructure:"max_delay_ms"`
	Jitter        float64 `mapstructure:"jitter"`
	CallTimeoutMS int     `mapstructure:"call_timeout_ms"`
}

type ResearchConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type MetricsConfig struct {
	JSONLPath string `mapstructure:"jsonl_path"`
}

// Config is the top-level newsroom configuration: voice overrides and
// synthesis defaults for the pipeline, plus collaborator credentials.
type Config struct {
	Format        string            `mapstructure:"format"`
	FailurePolicy string            `mapstructure:"failure_policy"`
	Concurrency   int               `mapstructure:"concurrency"`
	Voices        map[string]string `mapstructure:"voices"`
	TTS           VendorConfig      `mapstructure:"tts"`
	ScriptGen     VendorConfig      `mapstructure:"scriptgen"`
	Research      ResearchConfig    `mapstructure:"research"`
	Retry         RetryConfig       `mapstructure:"retry"`
	Metrics       MetricsConfig     `mapstructure:"metrics"`
	LogLevel      string            `mapstructure:"log_level"`
	LogFormat     string            `mapstructure:"log_format"`
}

// LoadConfig reads a YAML config file with defaults and ${ENV} expansion.
// An empty path yields pure defaults, so the CLI works with env vars only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("format", "news")
	v.SetDefault("failure_policy", "fail_fast")
	v.SetDefault("concurrency", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("tts.provider", "elevenlabs")
	v.SetDefault("tts.settings.api_key", "${ELEVENLABS_API_KEY}")
	v.SetDefault("tts.settings.model_id", "eleven_v3")
	v.SetDefault("tts.settings.output_format", "mp3_44100_128")
	v.SetDefault("scriptgen.provider", "openai")
	v.SetDefault("scriptgen.settings.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("scriptgen.settings.model", "gpt-4o-mini")
	v.SetDefault("research.api_key", "${BRAVE_API_KEY}")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay_ms", 500)
	v.SetDefault("retry.max_delay_ms", 5000)
	v.SetDefault("retry.jitter", 0.2)
	v.SetDefault("retry.call_timeout_ms", 90000)
	v.SetDefault("metrics.jsonl_path", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	expandEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.TTS.Provider) == "" {
		return fmt.Errorf("tts.provider is required")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0")
	}
	return nil
}

// expandEnv resolves ${VAR} references in string config values. Unset
// variables expand to empty strings, which provider constructors reject
// when the value is required.
func expandEnv(cfg *Config) {
	cfg.Format = os.ExpandEnv(cfg.Format)
	cfg.FailurePolicy = os.ExpandEnv(cfg.FailurePolicy)
	cfg.Research.APIKey = os.ExpandEnv(cfg.Research.APIKey)
	cfg.Metrics.JSONLPath = os.ExpandEnv(cfg.Metrics.JSONLPath)
	for k, val := range cfg.Voices {
		cfg.Voices[k] = os.ExpandEnv(val)
	}
	cfg.TTS.Settings = expandSettings(cfg.TTS.Settings)
	cfg.ScriptGen.Settings = expandSettings(cfg.ScriptGen.Settings)
}

func expandSettings(settings map[string]any) map[string]any {
	for k, v := range settings {
		if s, ok := v.(string); ok {
			settings[k] = os.ExpandEnv(s)
		}
	}
	return settings
}
