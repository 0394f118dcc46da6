package markov

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/natefinch/atomic"
)

// ErrNoModel is returned by Store.Load when nothing has been saved yet.
var ErrNoModel = errors.New("no stored model")

// Store persists a whole Model. Implementations never save partial records.
type Store interface {
	// Load returns the stored model, or ErrNoModel if there is none.
	Load(ctx context.Context) (*Model, error)
	// Save replaces the stored model with m.
	Save(ctx context.Context, m *Model) error
}

// LoadOrEmpty loads the model held by store. A missing, unreadable or corrupt
// record is not fatal: it is logged and an empty model is returned instead.
// The boolean reports whether an existing model was loaded.
func LoadOrEmpty(ctx context.Context, store Store, logger *slog.Logger) (*Model, bool) {
	m, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoModel) {
			logger.DebugContext(ctx, "No stored model, starting empty")
		} else {
			logger.WarnContext(ctx, "Failed to load stored model, starting empty", slog.Any("error", err))
		}
		return NewModel(), false
	}
	logger.InfoContext(ctx, "Model loaded",
		slog.Int("states", len(m.States)),
		slog.Int("previous_trainings", len(m.TrainingHistory)),
	)
	return m, true
}

// FileStore keeps the model as an indented JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the model file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and validates the model file.
func (s *FileStore) Load(_ context.Context) (*Model, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("could not open model file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	return ImportModel(f)
}

// Save writes the model atomically, so a failed write never leaves a
// truncated file behind.
func (s *FileStore) Save(_ context.Context, m *Model) error {
	var buf bytes.Buffer
	if err := ExportModel(&buf, m); err != nil {
		return fmt.Errorf("could not encode model: %w", err)
	}
	if err := atomic.WriteFile(s.path, &buf); err != nil {
		return fmt.Errorf("could not write model file: %w", err)
	}
	return nil
}
