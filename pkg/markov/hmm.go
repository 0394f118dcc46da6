package markov

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// HMM owns the current model of a single caller and keeps it in sync with a
// Store: the model is loaded once and saved after every training session.
// It is not safe for concurrent use.
type HMM struct {
	model     *Model
	store     Store
	learnOpts []LearnOption
	logger    *slog.Logger
}

// NewHMM returns an HMM holding an empty model. A nil store disables
// persistence. The options are applied to every training session.
func NewHMM(store Store, opts ...LearnOption) *HMM {
	return &HMM{
		model:     NewModel(),
		store:     store,
		learnOpts: opts,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the HMM. By default, all logs are discarded.
func (h *HMM) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

// LoadExisting replaces the current model with the stored one. It reports
// whether a model was loaded; on any failure the HMM starts from an empty
// model.
func (h *HMM) LoadExisting(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	m, ok := LoadOrEmpty(ctx, h.store, h.logger)
	h.model = m
	return ok
}

// LearnFromText trains on text and then saves the new model. The trained
// model is kept even when saving fails; the save error is logged and
// returned so the caller can report it.
func (h *HMM) LearnFromText(ctx context.Context, text string) error {
	h.model = Learn(h.model, text, h.learnOpts...)
	last := h.model.TrainingHistory[len(h.model.TrainingHistory)-1]
	h.logger.InfoContext(ctx, "Training completed",
		slog.Int("text_length", last.TextLength),
		slog.Int("new_states", last.NewStates),
		slog.Int("total_states", last.TotalStates),
	)
	return h.save(ctx)
}

// Import merges a model exported elsewhere into the current one and saves
// the result.
func (h *HMM) Import(ctx context.Context, r io.Reader) error {
	imported, err := ImportModel(r)
	if err != nil {
		return err
	}
	h.model = MergeModels(h.model, imported)
	h.logger.InfoContext(ctx, "Model imported",
		slog.Int("states_imported", len(imported.States)),
		slog.Int("trainings_imported", len(imported.TrainingHistory)),
		slog.Int("total_states", len(h.model.States)),
	)
	return h.save(ctx)
}

// Export writes the current model to w.
func (h *HMM) Export(w io.Writer) error {
	return ExportModel(w, h.model)
}

// Predict ranks the likely successors of input. See Predict.
func (h *HMM) Predict(input string, topN int) PredictionResult {
	result := Predict(h.model, input, topN)
	if err := result.Err(); err != nil {
		h.logger.Debug("Prediction for unknown character", slog.String("input", input))
	}
	return result
}

// Info summarizes the current model.
func (h *HMM) Info() ModelInfo {
	return Info(h.model)
}

// Model returns the current model. Callers must not modify it.
func (h *HMM) Model() *Model {
	return h.model
}

func (h *HMM) save(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	if err := h.store.Save(ctx, h.model); err != nil {
		h.logger.ErrorContext(ctx, "Failed to save model", slog.Any("error", err))
		return fmt.Errorf("model trained but not saved: %w", err)
	}
	h.logger.InfoContext(ctx, "Model saved",
		slog.Int("states", len(h.model.States)),
		slog.Int("trainings", len(h.model.TrainingHistory)),
	)
	return nil
}
