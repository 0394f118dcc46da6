package markov

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownState is reported when a prediction is requested for a character
// the model has never seen.
var ErrUnknownState = errors.New("character not found in model")

// defaultEmission is used for candidates missing from the emission matrix.
const defaultEmission = 0.8

// Prediction is one ranked candidate for the next character.
type Prediction struct {
	Character string `json:"character"`
	// Probability, EmissionProb and CombinedScore are the percentage
	// renderings of the raw values below.
	Probability   string `json:"probability"`
	EmissionProb  string `json:"emissionProb"`
	CombinedScore string `json:"combinedScore"`

	Transition float64 `json:"-"`
	Emission   float64 `json:"-"`
	Combined   float64 `json:"-"`
}

// PredictionResult is the answer to a prediction query. When the input
// character is unknown, Error is set and Predictions is empty.
type PredictionResult struct {
	InputCharacter   string       `json:"inputCharacter"`
	Predictions      []Prediction `json:"predictions"`
	TotalPredictions int          `json:"totalPredictions"`
	ModelVersion     int          `json:"modelVersion"`
	Error            string       `json:"error,omitempty"`

	err error
}

// Err returns ErrUnknownState, wrapped with the queried character, when the
// query failed, and nil otherwise.
func (r PredictionResult) Err() error {
	return r.err
}

// Predict ranks the successors of input by transition probability and keeps
// the topN best; topN <= 0 keeps all of them. Equal probabilities keep the
// state order, so results are reproducible. The combined score multiplies the
// transition probability by the candidate's self-emission probability; it is
// reported alongside but does not affect the ranking.
func Predict(m *Model, input string, topN int) PredictionResult {
	if !m.HasState(input) {
		err := fmt.Errorf("%w: %q", ErrUnknownState, input)
		return PredictionResult{
			InputCharacter: input,
			Predictions:    []Prediction{},
			ModelVersion:   len(m.TrainingHistory),
			Error:          fmt.Sprintf("character '%s' not found in model", input),
			err:            err,
		}
	}

	row := m.TransitionMatrix[input]
	candidates := make([]Prediction, 0, len(row))
	for _, next := range rowOrder(m.States, row) {
		transition := row[next]
		if transition <= 0 {
			continue
		}
		emission, ok := m.EmissionMatrix[next][next]
		if !ok {
			emission = defaultEmission
		}
		candidates = append(candidates, Prediction{
			Character:  next,
			Transition: transition,
			Emission:   emission,
			Combined:   transition * emission,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Transition > candidates[j].Transition
	})
	if topN > 0 && topN < len(candidates) {
		candidates = candidates[:topN]
	}
	for i := range candidates {
		c := &candidates[i]
		c.Probability = fmt.Sprintf("%.4f%%", c.Transition*100)
		c.EmissionProb = fmt.Sprintf("%.4f%%", c.Emission*100)
		c.CombinedScore = fmt.Sprintf("%.6f%%", c.Combined*100)
	}

	return PredictionResult{
		InputCharacter:   input,
		Predictions:      candidates,
		TotalPredictions: len(row),
		ModelVersion:     len(m.TrainingHistory),
	}
}

// rowOrder lists the keys of row in state order. Keys outside the state set
// only occur in hand-edited records; they follow, sorted.
func rowOrder(states []string, row map[string]float64) []string {
	keys := make([]string, 0, len(row))
	listed := make(map[string]struct{}, len(row))
	for _, s := range states {
		if _, ok := row[s]; ok {
			keys = append(keys, s)
			listed[s] = struct{}{}
		}
	}
	var extra []string
	for k := range row {
		if _, ok := listed[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
