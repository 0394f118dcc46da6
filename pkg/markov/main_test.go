package markov

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// trainingCorpus is a short French text used across tests.
const trainingCorpus = `L'intelligence artificielle transforme notre monde moderne.
Les algorithmes d'apprentissage automatique analysent les données.
La reconnaissance vocale permet la communication naturelle.`

// rowTolerance is the allowed deviation of a row sum from 1.
const rowTolerance = 1e-9

var testEpoch = time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)

// fixedClock returns a clock that advances one minute per call.
func fixedClock() func() time.Time {
	next := testEpoch
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

// newTrainedModel learns trainingCorpus with a deterministic clock.
func newTrainedModel(t *testing.T) *Model {
	t.Helper()
	return Learn(nil, trainingCorpus, WithClock(fixedClock()))
}

// setupTestDB opens a fresh SQLite database in a temporary directory with the
// schema installed. It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}
	return db
}

// withoutTimestamps returns a copy of m with every timestamp cleared, for
// content comparisons.
func withoutTimestamps(m *Model) *Model {
	c := m.Clone()
	c.LastUpdate = time.Time{}
	for i := range c.TrainingHistory {
		c.TrainingHistory[i].Timestamp = time.Time{}
	}
	return c
}

func rowSum(row map[string]float64) float64 {
	var total float64
	for _, p := range row {
		total += p
	}
	return total
}

// failingStore loads nothing and refuses every save.
type failingStore struct {
	saves int
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Load(context.Context) (*Model, error) {
	return nil, ErrNoModel
}

func (s *failingStore) Save(context.Context, *Model) error {
	s.saves++
	return errDiskFull
}
