package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration in ~/.config/pdfsearch/config.yml.
type GlobalConfig struct {
	StoreRoot  string `yaml:"store_root,omitempty"`
	OllamaURL  string `yaml:"ollama_url,omitempty"`
	Model      string `yaml:"model,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"`
	DefaultK   int    `yaml:"default_k,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "pdfsearch"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultK is the neighbor count used when neither flag nor config
	// sets one.
	DefaultK = 5
)

// Environment variable overrides, loaded after the YAML file. Commands
// call godotenv.Load first so a local .env file can supply them.
const (
	EnvOllamaURL = "PDFSEARCH_OLLAMA_URL"
	EnvModel     = "PDFSEARCH_MODEL"
	EnvDims      = "PDFSEARCH_DIMENSIONS"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pdfsearch/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. Returns an empty config (not an error) if the
// file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := &GlobalConfig{}

	path := GlobalConfigPath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if url := os.Getenv(EnvOllamaURL); url != "" {
		cfg.OllamaURL = url
	}
	if model := os.Getenv(EnvModel); model != "" {
		cfg.Model = model
	}
	if dims := os.Getenv(EnvDims); dims != "" {
		if n, err := strconv.Atoi(dims); err == nil && n > 0 {
			cfg.Dimensions = n
		}
	}

	if cfg.StoreRoot != "" {
		cfg.StoreRoot = ExpandTilde(cfg.StoreRoot)
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = DefaultK
	}

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetStoreRoot returns the configured store root, or "" if unset.
func GetStoreRoot() string {
	cfg, _ := LoadGlobalConfig()
	if cfg == nil {
		return ""
	}
	return cfg.StoreRoot
}

// ExpandTilde expands a leading ~/ in a path to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
