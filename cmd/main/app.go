package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/CTAG07/Drosera/pkg/markov"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	topN       int
	logLevel   string

	config *Config
	logger *slog.Logger
	hmm    *markov.HMM
	close  func()
}

// open loads the configuration, builds the logger, opens the model store and
// loads the stored model, if any.
func (a *app) open(ctx context.Context) error {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.topN > 0 {
		config.TopN = a.topN
	}
	if a.logLevel != "" {
		config.LogLevel = a.logLevel
	}
	a.config = config

	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))

	store, closeStore, err := openStore(config, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open model store: %w", err)
	}
	a.close = closeStore

	a.hmm = markov.NewHMM(store)
	a.hmm.SetLogger(a.logger)
	a.hmm.LoadExisting(ctx)
	return nil
}

func (a *app) shutdown() {
	if a.close != nil {
		a.close()
		a.close = nil
	}
}

// openStore returns the store selected by the configuration and a function
// releasing its resources.
func openStore(config *Config, logger *slog.Logger) (markov.Store, func(), error) {
	if config.Store != storeSQLite {
		return markov.NewFileStore(config.ModelPath), func() {}, nil
	}

	db, err := initDB(config.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = markov.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup markov schema: %w", err)
	}
	store, err := markov.NewSQLStore(db, config.ModelName)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare model store: %w", err)
	}
	logger.Debug("Using SQLite model store",
		slog.String("driver", sqliteDriver),
		slog.String("model_name", config.ModelName),
	)
	return store, func() {
		store.Close()
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}, nil
}
