package markov

import "time"

// NeverTrained is reported as the last training time of an untrained model.
const NeverTrained = "never"

// ModelInfo summarizes a model for display.
type ModelInfo struct {
	NumberOfStates     int    `json:"numberOfStates"`
	TotalCharacters    int    `json:"totalCharacters"`
	TrainingIterations int    `json:"trainingIterations"`
	LastTraining       string `json:"lastTraining"` // RFC 3339, or NeverTrained
}

// Info returns the summary of m.
func Info(m *Model) ModelInfo {
	info := ModelInfo{
		NumberOfStates:     len(m.States),
		TotalCharacters:    m.TotalCharacters,
		TrainingIterations: len(m.TrainingHistory),
		LastTraining:       NeverTrained,
	}
	if last, ok := LastTraining(m); ok {
		info.LastTraining = last.Format(time.RFC3339Nano)
	}
	return info
}

// LastTraining returns the timestamp of the most recent training event.
func LastTraining(m *Model) (time.Time, bool) {
	if len(m.TrainingHistory) == 0 {
		return time.Time{}, false
	}
	return m.TrainingHistory[len(m.TrainingHistory)-1].Timestamp, true
}
