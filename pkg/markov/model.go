package markov

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"
)

// TransitionCounts holds cumulative raw pair counts: counts[a][b] is how many
// times b followed a across all training text.
type TransitionCounts map[string]map[string]int

// Matrix is a row-stochastic probability table keyed by character. Each row
// sums to 1.
type Matrix map[string]map[string]float64

// TrainingEvent records a single call to Learn.
type TrainingEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	TextLength  int       `json:"textLength"`  // normalized characters consumed
	NewStates   int       `json:"newStates"`   // states first seen in this session
	TotalStates int       `json:"totalStates"` // state count after the session
}

// Model is the complete learned state and the unit of persistence.
type Model struct {
	States           []string           `json:"states"`
	TransitionMatrix Matrix             `json:"transitionMatrix"`
	EmissionMatrix   Matrix             `json:"emissionMatrix"`
	InitialProbs     map[string]float64 `json:"initialProbs"`
	CharacterCounts  map[string]int     `json:"characterCounts"`
	TransitionCounts TransitionCounts   `json:"transitionCounts"`
	TotalCharacters  int                `json:"totalCharacters"`
	TrainingHistory  []TrainingEvent    `json:"trainingHistory"`
	LastUpdate       time.Time          `json:"lastUpdate"`
}

// NewModel returns an empty, untrained model.
func NewModel() *Model {
	return &Model{
		States:           []string{},
		TransitionMatrix: Matrix{},
		EmissionMatrix:   Matrix{},
		InitialProbs:     map[string]float64{},
		CharacterCounts:  map[string]int{},
		TransitionCounts: TransitionCounts{},
		TrainingHistory:  []TrainingEvent{},
	}
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	c := NewModel()
	c.States = append(c.States, m.States...)
	c.TransitionMatrix = m.TransitionMatrix.clone()
	c.EmissionMatrix = m.EmissionMatrix.clone()
	for k, v := range m.InitialProbs {
		c.InitialProbs[k] = v
	}
	for k, v := range m.CharacterCounts {
		c.CharacterCounts[k] = v
	}
	c.TransitionCounts = MergeTransitionCounts(m.TransitionCounts, nil)
	c.TotalCharacters = m.TotalCharacters
	c.TrainingHistory = append(c.TrainingHistory, m.TrainingHistory...)
	c.LastUpdate = m.LastUpdate
	return c
}

// HasState reports whether s belongs to the model's state set.
func (m *Model) HasState(s string) bool {
	for _, state := range m.States {
		if state == s {
			return true
		}
	}
	return false
}

func (mx Matrix) clone() Matrix {
	c := make(Matrix, len(mx))
	for k, row := range mx {
		r := make(map[string]float64, len(row))
		for k2, v := range row {
			r[k2] = v
		}
		c[k] = r
	}
	return c
}

// validate rejects records that cannot have been produced by Learn and fills
// in sections missing from older or hand-written records.
func (m *Model) validate() error {
	seen := make(map[string]struct{}, len(m.States))
	for _, s := range m.States {
		if utf8.RuneCountInString(s) != 1 {
			return fmt.Errorf("state %q is not a single character", s)
		}
		if _, ok := seen[s]; ok {
			return fmt.Errorf("duplicate state %q", s)
		}
		seen[s] = struct{}{}
	}
	if m.TotalCharacters < 0 {
		return errors.New("negative character total")
	}

	if m.States == nil {
		m.States = []string{}
	}
	if m.TransitionMatrix == nil {
		m.TransitionMatrix = Matrix{}
	}
	if m.EmissionMatrix == nil {
		m.EmissionMatrix = Matrix{}
	}
	if m.InitialProbs == nil {
		m.InitialProbs = map[string]float64{}
	}
	if m.CharacterCounts == nil {
		m.CharacterCounts = map[string]int{}
	}
	if m.TransitionCounts == nil {
		// Records without counts still carry what was learned in their matrix.
		m.TransitionCounts = CountsFromMatrix(m.TransitionMatrix, m.States)
	}
	if m.TrainingHistory == nil {
		m.TrainingHistory = []TrainingEvent{}
	}
	return nil
}

// ExportModel serializes a model as indented JSON and writes it to w.
func ExportModel(w io.Writer, m *Model) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	// Characters such as '<' and '&' are states like any other.
	encoder.SetEscapeHTML(false)
	return encoder.Encode(m)
}

// ImportModel reads a model previously written by ExportModel.
func ImportModel(r io.Reader) (*Model, error) {
	var imported Model
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return nil, fmt.Errorf("failed to decode json model: %w", err)
	}
	if err := imported.validate(); err != nil {
		return nil, fmt.Errorf("invalid model record: %w", err)
	}
	return &imported, nil
}

// MergeModels combines two independently trained models into a new one.
// States, character counts and transition counts are added together and the
// training histories are concatenated; the matrices are then rebuilt over the
// merged state set. Neither input is modified.
func MergeModels(base, other *Model) *Model {
	merged := base.Clone()
	merged.States = MergeStates(merged.States, other.States)
	for c, n := range other.CharacterCounts {
		merged.CharacterCounts[c] += n
	}
	merged.TotalCharacters += other.TotalCharacters
	merged.InitialProbs = initialProbabilities(merged.CharacterCounts, merged.TotalCharacters)
	merged.TransitionCounts = MergeTransitionCounts(merged.TransitionCounts, other.TransitionCounts)
	merged.TransitionMatrix = BuildTransitionMatrix(merged.TransitionCounts, merged.States)
	merged.EmissionMatrix = BuildEmissionMatrix(merged.States)
	merged.TrainingHistory = append(merged.TrainingHistory, other.TrainingHistory...)
	if other.LastUpdate.After(merged.LastUpdate) {
		merged.LastUpdate = other.LastUpdate
	}
	return merged
}
