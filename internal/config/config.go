package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageBadger   = "badger"
	StorageInmemory = "inmemory"

	ViewsEmbedded = "embedded"
	ViewsHTTP     = "http"
)

type Config struct {
	Service ServiceConfig `yaml:"service"`
	Storage StorageConfig `yaml:"storage"`
	Views   ViewsConfig   `yaml:"views"`
	Log     LogConfig     `yaml:"log"`
}

type ServiceConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	APIKey      string `yaml:"api_key"`
	// Name of env variable holding api key, takes precedence over APIKey.
	APIKeyEnv string `yaml:"api_key_env"`
}

func (s ServiceConfig) EffectiveAPIKey() string {
	if s.APIKeyEnv != "" {
		if key := os.Getenv(s.APIKeyEnv); key != "" {
			return key
		}
	}
	return s.APIKey
}

type StorageConfig struct {
	// One of: badger | inmemory.
	Backend   string `yaml:"backend"`
	BadgerDir string `yaml:"badger_dir"`
}

type ViewsConfig struct {
	// One of: embedded | http.
	Source  string        `yaml:"source"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Port:        7000, //nolint: mnd
			MetricsPort: 9100, //nolint: mnd
		},
		Storage: StorageConfig{
			Backend:   StorageBadger,
			BadgerDir: "./badger",
		},
		Views: ViewsConfig{
			Source:  ViewsEmbedded,
			Timeout: 5 * time.Second, //nolint: mnd
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads yaml config from path on top of defaults.
// Missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Service.Port <= 0 {
		errs = append(errs, fmt.Errorf("service port must be positive, got: %d", cfg.Service.Port))
	}
	if cfg.Service.MetricsPort < 0 {
		errs = append(errs, fmt.Errorf("metrics port must not be negative, got: %d", cfg.Service.MetricsPort))
	}

	switch cfg.Storage.Backend {
	case StorageBadger:
		if cfg.Storage.BadgerDir == "" {
			errs = append(errs, errors.New("badger dir is required for badger storage"))
		}
	case StorageInmemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend))
	}

	switch cfg.Views.Source {
	case ViewsEmbedded:
	case ViewsHTTP:
		if cfg.Views.BaseURL == "" {
			errs = append(errs, errors.New("base url is required for http views"))
		}
		if cfg.Views.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("views timeout must be positive, got: %s", cfg.Views.Timeout))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown views source: %q", cfg.Views.Source))
	}

	return errors.Join(errs...)
}
