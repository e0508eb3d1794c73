package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const defaultBaseURL = "https://tracker.endocode.com"

// KeyError reports a required configuration key that is missing or
// empty. It is fatal before any processing starts.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("missing required configuration key %q", e.Key)
}

// Config is loaded once at startup and read-only afterwards. The task
// mappings translate local tracker task ids into Redmine resources.
type Config struct {
	APIKey        string  `toml:"api_key"`
	BaseURL       string  `toml:"base_url"`
	ContractHours float64 `toml:"contract_hours"`
	DBPath        string  `toml:"db_path"`

	TaskProjectMapping  map[string]string `toml:"task_project_mapping"`
	TaskActivityMapping map[string]int    `toml:"task_activity_mapping"`
	TaskIssueMapping    map[string]int    `toml:"task_issue_mapping"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:             defaultBaseURL,
		ContractHours:       40.0,
		TaskProjectMapping:  map[string]string{},
		TaskActivityMapping: map[string]int{},
		TaskIssueMapping:    map[string]int{},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "timy"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.ContractHours <= 0 {
		cfg.ContractHours = 40.0
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIMY_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("TIMY_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TIMY_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
