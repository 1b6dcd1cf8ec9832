package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"ai"`
	Rename struct {
		ContextWindow      int `yaml:"context_window"`
		CheckpointInterval int `yaml:"checkpoint_interval"` // 0 = provider default
	} `yaml:"rename"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Log struct {
		Filename   string `yaml:"filename"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age"`
	} `yaml:"log"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.AI.Provider = "gemini"
	cfg.Rename.ContextWindow = 2048
	cfg.Output.Dir = "relabel-out"
	cfg.Log.Filename = ".relabel.log"
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28
	return &cfg
}

// LoadConfig reads the YAML config file, layering .env and environment
// variable overrides on top. A missing config file yields defaults, not
// an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with environment variables if present
	if apiKey := os.Getenv("RELABEL_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("RELABEL_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("RELABEL_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if baseURL := os.Getenv("RELABEL_AI_BASE_URL"); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}

	return cfg, nil
}
