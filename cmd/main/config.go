package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	storeFile   = "file"
	storeSQLite = "sqlite"
)

// Config holds every setting of the command line tool.
type Config struct {
	LogLevel          string   `json:"log_level"`
	Store             string   `json:"store"` // "file" or "sqlite"
	ModelPath         string   `json:"model_path"`
	DatabasePath      string   `json:"database_path"`
	ModelName         string   `json:"model_name"`
	CorpusFiles       []string `json:"corpus_files"`
	TopN              int      `json:"top_n"`
	MinSentenceLength int      `json:"min_sentence_length"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "warn",
		Store:             storeFile,
		ModelPath:         "hmm_model.json",
		DatabasePath:      "drosera.db?_journal_mode=WAL&_busy_timeout=5000",
		ModelName:         "default",
		CorpusFiles:       []string{"mots_generes.txt", "mots_filtrés.txt"},
		TopN:              3,
		MinSentenceLength: 15,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The defaults are still usable without a file on disk.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return config, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store {
	case storeFile:
		if c.ModelPath == "" {
			return fmt.Errorf("model_path is required for the %q store", storeFile)
		}
	case storeSQLite:
		if c.DatabasePath == "" || c.ModelName == "" {
			return fmt.Errorf("database_path and model_name are required for the %q store", storeSQLite)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", c.TopN)
	}
	return nil
}

// parseLogLevel maps a config level name to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
