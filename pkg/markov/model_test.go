package markov

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	m := newTrainedModel(t)

	var buf bytes.Buffer
	require.NoError(t, ExportModel(&buf, m))

	imported, err := ImportModel(&buf)
	require.NoError(t, err)

	assert.Equal(t, withoutTimestamps(m), withoutTimestamps(imported))
	assert.True(t, m.LastUpdate.Equal(imported.LastUpdate))
}

func TestExportUsesRecordFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportModel(&buf, newTrainedModel(t)))

	for _, field := range []string{"states", "transitionMatrix", "emissionMatrix", "characterCounts",
		"totalCharacters", "trainingHistory", "lastUpdate", "textLength", "newStates", "totalStates"} {
		assert.Contains(t, buf.String(), `"`+field+`"`)
	}
}

func TestImportModelRejectsBadRecords(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "Not JSON", input: "{states:"},
		{name: "Wrong type", input: `{"states": 3}`},
		{name: "Multi-character state", input: `{"states": ["ab"]}`},
		{name: "Duplicate state", input: `{"states": ["a", "a"]}`},
		{name: "Negative total", input: `{"states": [], "totalCharacters": -1}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ImportModel(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}
}

func TestImportModelFillsMissingSections(t *testing.T) {
	m, err := ImportModel(strings.NewReader(`{"states": ["a", "b"], "totalCharacters": 2}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, m.States)
	assert.NotNil(t, m.TransitionCounts)
	assert.NotNil(t, m.CharacterCounts)
	assert.NotNil(t, m.TrainingHistory)

	// The filled-in model can keep learning.
	next := Learn(m, "ab", WithClock(fixedClock()))
	assert.InDelta(t, 1.0, rowSum(next.TransitionMatrix["a"]), rowTolerance)
	assert.Equal(t, TransitionCounts{"a": {"b": 1}}, next.TransitionCounts)
}

// recordWithoutCounts is a model record that carries its transition matrix but
// no transitionCounts section.
const recordWithoutCounts = `{
  "states": ["a", "b", "c"],
  "transitionMatrix": {
    "a": {"a": 0.05, "b": 0.9, "c": 0.05},
    "b": {"a": 0.5, "b": 0.25, "c": 0.25},
    "c": {"a": 0.3333333333333333, "b": 0.3333333333333333, "c": 0.3333333333333333}
  },
  "emissionMatrix": {},
  "initialProbs": {"a": 0.5, "b": 0.5},
  "characterCounts": {"a": 18, "b": 18},
  "totalCharacters": 36,
  "trainingHistory": [
    {"timestamp": "2026-03-14T09:26:53.000Z", "textLength": 36, "newStates": 2, "totalStates": 2}
  ],
  "lastUpdate": "2026-03-14T09:26:53.000Z"
}`

func TestImportModelKeepsTransitionsWithoutCounts(t *testing.T) {
	m, err := ImportModel(strings.NewReader(recordWithoutCounts))
	require.NoError(t, err)
	require.InDelta(t, 0.9, m.TransitionMatrix["a"]["b"], rowTolerance)
	assert.Equal(t, TransitionCounts{"a": {"b": 17}, "b": {"a": 1}}, m.TransitionCounts)

	clock := WithClock(fixedClock())

	testCases := []struct {
		name string
		text string
	}{
		{name: "Empty text", text: ""},
		{name: "Single known character", text: "c"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := Learn(m, tc.text, clock)
			assertMatricesEqual(t, m.TransitionMatrix, next.TransitionMatrix)
		})
	}

	// New observations are added on top of the loaded ones.
	next := Learn(m, "ab", clock)
	assert.InDelta(t, 19.0/21.0, next.TransitionMatrix["a"]["b"], rowTolerance)
	assert.InDelta(t, 2.0/4.0, next.TransitionMatrix["b"]["a"], rowTolerance)

	// Once saved again, the record carries its counts.
	var buf bytes.Buffer
	require.NoError(t, ExportModel(&buf, next))
	reloaded, err := ImportModel(&buf)
	require.NoError(t, err)
	assert.Equal(t, next.TransitionCounts, reloaded.TransitionCounts)
}

func TestMergeModels(t *testing.T) {
	clock := WithClock(fixedClock())
	left := Learn(nil, "abab", clock)
	right := Learn(nil, "bcd", clock)

	merged := MergeModels(left, right)

	assert.Equal(t, []string{"a", "b", "c", "d"}, merged.States)
	assert.Equal(t, 7, merged.TotalCharacters)
	assert.Equal(t, map[string]int{"a": 2, "b": 3, "c": 1, "d": 1}, merged.CharacterCounts)
	assert.Equal(t, TransitionCounts{"a": {"b": 2}, "b": {"a": 1, "c": 1}, "c": {"d": 1}}, merged.TransitionCounts)
	assert.Len(t, merged.TrainingHistory, 2)
	assert.True(t, merged.LastUpdate.Equal(right.LastUpdate))

	for _, s := range merged.States {
		assert.InDelta(t, 1.0, rowSum(merged.TransitionMatrix[s]), rowTolerance)
		assert.InDelta(t, 1.0, rowSum(merged.EmissionMatrix[s]), rowTolerance)
	}

	// Inputs are untouched.
	assert.Equal(t, []string{"a", "b"}, left.States)
	assert.Equal(t, []string{"b", "c", "d"}, right.States)
}

func TestCloneIsDeep(t *testing.T) {
	m := newTrainedModel(t)
	c := m.Clone()

	c.States[0] = "#"
	c.TransitionMatrix[m.States[0]][m.States[0]] = 42
	c.TransitionCounts["zz"] = map[string]int{"z": 1}
	c.CharacterCounts[m.States[0]] = -1

	assert.NotEqual(t, "#", m.States[0])
	assert.NotEqual(t, 42.0, m.TransitionMatrix[m.States[0]][m.States[0]])
	assert.NotContains(t, m.TransitionCounts, "zz")
	assert.NotEqual(t, -1, m.CharacterCounts[m.States[0]])
}

func TestInfo(t *testing.T) {
	empty := Info(NewModel())
	assert.Equal(t, ModelInfo{LastTraining: NeverTrained}, empty)

	m := newTrainedModel(t)
	info := Info(m)
	assert.Equal(t, len(m.States), info.NumberOfStates)
	assert.Equal(t, m.TotalCharacters, info.TotalCharacters)
	assert.Equal(t, 1, info.TrainingIterations)
	assert.Equal(t, "2026-03-14T09:26:53Z", info.LastTraining)
}
