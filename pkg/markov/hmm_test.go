package markov

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMMLearnPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "hmm_model.json"))

	h := NewHMM(store, WithClock(fixedClock()))
	h.SetLogger(discardLogger)
	assert.False(t, h.LoadExisting(ctx))
	require.NoError(t, h.LearnFromText(ctx, trainingCorpus))

	reloaded := NewHMM(store)
	require.True(t, reloaded.LoadExisting(ctx))
	assert.Equal(t, withoutTimestamps(h.Model()), withoutTimestamps(reloaded.Model()))

	require.NoError(t, reloaded.LearnFromText(ctx, "encore un texte"))
	assert.Equal(t, 2, reloaded.Info().TrainingIterations)
}

func TestHMMKeepsModelWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	h := NewHMM(store)

	err := h.LearnFromText(ctx, "bonjour")
	assert.True(t, errors.Is(err, errDiskFull))
	assert.Equal(t, 1, store.saves)

	info := h.Info()
	assert.Equal(t, 1, info.TrainingIterations)
	assert.Equal(t, 7, info.TotalCharacters)

	result := h.Predict("b", 3)
	assert.NoError(t, result.Err())
	assert.Equal(t, "o", result.Predictions[0].Character)
}

func TestHMMWithoutStore(t *testing.T) {
	ctx := context.Background()
	h := NewHMM(nil)

	assert.False(t, h.LoadExisting(ctx))
	assert.Equal(t, NeverTrained, h.Info().LastTraining)
	require.NoError(t, h.LearnFromText(ctx, "abc"))

	result := h.Predict("x", 3)
	assert.True(t, errors.Is(result.Err(), ErrUnknownState))
	assert.Empty(t, result.Predictions)
}

func TestHMMExportImport(t *testing.T) {
	ctx := context.Background()

	source := NewHMM(nil, WithClock(fixedClock()))
	require.NoError(t, source.LearnFromText(ctx, "abab"))
	var buf bytes.Buffer
	require.NoError(t, source.Export(&buf))

	store := NewFileStore(filepath.Join(t.TempDir(), "merged.json"))
	target := NewHMM(store, WithClock(fixedClock()))
	require.NoError(t, target.LearnFromText(ctx, "bcd"))
	require.NoError(t, target.Import(ctx, &buf))

	assert.Equal(t, []string{"b", "c", "d", "a"}, target.Model().States)
	assert.Equal(t, 2, target.Info().TrainingIterations)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, target.Model().States, saved.States)

	assert.Error(t, target.Import(ctx, bytes.NewBufferString("not json")))
}
