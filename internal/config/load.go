package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads and parses a TOML config file. Unknown keys are fatal —
// silently ignoring a typo in a config file leads to hard-to-debug
// behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise
// returns defaults. Supports the zero-config case where everything
// comes from the environment.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve produces the effective configuration from the override
// chain: defaults -> config file -> .env file -> environment.
// configPath overrides the config file location when non-empty
// (CLI flag), else MEDIASOURCE_CONFIG, else the default path.
func Resolve(configPath string) (*Config, error) {
	// A .env file in the working directory seeds the environment, as the
	// system always supported. Existing environment variables win.
	_ = godotenv.Load()

	path := DefaultConfigPath()
	if env := os.Getenv(EnvConfig); env != "" {
		path = env
	}

	if configPath != "" {
		path = configPath
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)

	return cfg, nil
}
