package markov

import (
	"math"
	"time"
	"unicode/utf8"
)

// learnOptions configures Learn.
type learnOptions struct {
	now func() time.Time
}

// LearnOption is a function that configures a training session.
type LearnOption func(*learnOptions)

// WithClock sets the time source used to stamp training events.
// Default: time.Now
func WithClock(now func() time.Time) LearnOption {
	return func(o *learnOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// BuildTransitionCounts groups pairs by their first character and counts the
// second characters of each group.
func BuildTransitionCounts(pairs []Pair) TransitionCounts {
	counts := make(TransitionCounts)
	for _, p := range pairs {
		row, ok := counts[p.First]
		if !ok {
			row = make(map[string]int)
			counts[p.First] = row
		}
		row[p.Second]++
	}
	return counts
}

// MergeTransitionCounts adds two count tables together, treating missing
// entries on either side as zero. The inputs are left untouched.
func MergeTransitionCounts(a, b TransitionCounts) TransitionCounts {
	merged := make(TransitionCounts, len(a))
	for _, src := range []TransitionCounts{a, b} {
		for first, row := range src {
			dst, ok := merged[first]
			if !ok {
				dst = make(map[string]int, len(row))
				merged[first] = dst
			}
			for second, n := range row {
				dst[second] += n
			}
		}
	}
	return merged
}

// SmoothCounts applies add-one smoothing over the full state set: every state
// gets a row, and every entry of that row is its raw count plus one. Rows for
// states that never appeared as a first character are therefore uniform.
func SmoothCounts(counts TransitionCounts, states []string) TransitionCounts {
	smoothed := make(TransitionCounts, len(states))
	for _, first := range states {
		row := make(map[string]int, len(states))
		for _, second := range states {
			row[second] = counts[first][second] + 1
		}
		smoothed[first] = row
	}
	return smoothed
}

// NormalizeCounts divides every row by its sum. Empty rows are dropped.
func NormalizeCounts(counts TransitionCounts) Matrix {
	matrix := make(Matrix, len(counts))
	for first, row := range counts {
		var total int
		for _, n := range row {
			total += n
		}
		if total == 0 {
			continue
		}
		probs := make(map[string]float64, len(row))
		for second, n := range row {
			probs[second] = float64(n) / float64(total)
		}
		matrix[first] = probs
	}
	return matrix
}

// BuildTransitionMatrix turns cumulative counts into a smoothed transition
// matrix over states. It depends only on its inputs, so rebuilding from the
// same counts always yields the same matrix.
func BuildTransitionMatrix(counts TransitionCounts, states []string) Matrix {
	return NormalizeCounts(SmoothCounts(counts, states))
}

// maxSeedTotal bounds the pseudo-count total recovered for a single row.
const maxSeedTotal = 1 << 20

// CountsFromMatrix recovers raw counts from a transition matrix that was saved
// without them. A row with a positive entry for every state is read as add-one
// smoothed, so its smallest entry stands for a count of zero. Any other row is
// read as plain proportions, its smallest entry standing for a count of one.
// Rebuilding a smoothed matrix from the recovered counts gives back the
// original probabilities.
func CountsFromMatrix(matrix Matrix, states []string) TransitionCounts {
	counts := make(TransitionCounts, len(matrix))
	for first, row := range matrix {
		minP := math.Inf(1)
		for _, p := range row {
			if p > 0 && p < minP {
				minP = p
			}
		}
		if math.IsInf(minP, 1) {
			continue
		}

		smoothed := len(states) > 0
		for _, s := range states {
			if row[s] <= 0 {
				smoothed = false
				break
			}
		}
		offset := 0
		if smoothed {
			offset = 1
		}

		scale := math.Min(1/minP, maxSeedTotal)
		seeded := make(map[string]int, len(row))
		for second, p := range row {
			if p <= 0 {
				continue
			}
			if n := int(math.Round(p*scale)) - offset; n > 0 {
				seeded[second] = n
			}
		}
		if len(seeded) > 0 {
			counts[first] = seeded
		}
	}
	return counts
}

func initialProbabilities(counts map[string]int, total int) map[string]float64 {
	probs := make(map[string]float64, len(counts))
	if total == 0 {
		return probs
	}
	for c, n := range counts {
		probs[c] = float64(n) / float64(total)
	}
	return probs
}

// Learn trains on text and returns the resulting model. The previous model is
// not modified; a nil previous model is treated as empty.
//
// The text is normalized, its characters are added to the state set and the
// cumulative counts, and both matrices are rebuilt over the new state set.
// A TrainingEvent is appended to the history.
func Learn(prev *Model, text string, opts ...LearnOption) *Model {
	options := &learnOptions{now: time.Now}
	for _, opt := range opts {
		opt(options)
	}
	if prev == nil {
		prev = NewModel()
	}

	processed := NormalizeText(text)
	next := prev.Clone()

	knownStates := len(next.States)
	next.States = MergeStates(next.States, ExtractUniqueChars(processed))

	for c, n := range CountCharacters(processed) {
		next.CharacterCounts[c] += n
	}
	textLength := utf8.RuneCountInString(processed)
	next.TotalCharacters += textLength
	next.InitialProbs = initialProbabilities(next.CharacterCounts, next.TotalCharacters)

	batch := BuildTransitionCounts(CreateCharacterPairs(processed))
	next.TransitionCounts = MergeTransitionCounts(next.TransitionCounts, batch)
	next.TransitionMatrix = BuildTransitionMatrix(next.TransitionCounts, next.States)
	next.EmissionMatrix = BuildEmissionMatrix(next.States)

	stamp := options.now().UTC().Truncate(time.Millisecond)
	next.TrainingHistory = append(next.TrainingHistory, TrainingEvent{
		Timestamp:   stamp,
		TextLength:  textLength,
		NewStates:   len(next.States) - knownStates,
		TotalStates: len(next.States),
	})
	next.LastUpdate = stamp
	return next
}
