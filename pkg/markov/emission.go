package markov

const (
	// emissionFloor is the base probability of observing any character.
	emissionFloor = 0.01
	// correctEmission is the probability of observing the intended character.
	correctEmission = 0.8
	// typoMass is shared among the keys adjacent to the intended one.
	typoMass = 0.15
)

// KeyboardLayout maps each key of a French AZERTY keyboard to its physical
// neighbours. It drives the typo model of BuildEmissionMatrix.
var KeyboardLayout = map[string][]string{
	"a": {"z", "q", "s"}, "z": {"a", "e", "s", "d"}, "e": {"z", "r", "d", "f"},
	"r": {"e", "t", "f", "g"}, "t": {"r", "y", "g", "h"}, "y": {"t", "u", "h", "j"},
	"u": {"y", "i", "j", "k"}, "i": {"u", "o", "k", "l"}, "o": {"i", "p", "l", "m"},
	"p": {"o", "m"}, "q": {"a", "w", "s"}, "s": {"q", "a", "z", "d", "w", "x"},
	"d": {"s", "z", "e", "f", "x", "c"}, "f": {"d", "e", "r", "g", "c", "v"},
	"g": {"f", "r", "t", "h", "v", "b"}, "h": {"g", "t", "y", "j", "b", "n"},
	"j": {"h", "y", "u", "k", "n", ","}, "k": {"j", "u", "i", "l", ",", ";"},
	"l": {"k", "i", "o", "m", ";", ":"}, "m": {"l", "o", "p", ":", "!"},
	"w": {"q", "s", "x"}, "x": {"w", "s", "d", "c"}, "c": {"x", "d", "f", "v"},
	"v": {"c", "f", "g", "b"}, "b": {"v", "g", "h", "n"}, "n": {"b", "h", "j", ","},
	",": {"n", "j", "k", ";"}, ";": {"k", "l", ":"}, ":": {"l", "m", "!"},
	"!": {"m", ":"}, " ": {" "},
}

// BuildEmissionMatrix derives, for every state, the probability of observing
// each state when that one was intended. The intended character dominates,
// keyboard neighbours present in the state set share the typo mass, and
// every other state keeps a small floor. The result depends only on states.
func BuildEmissionMatrix(states []string) Matrix {
	present := make(map[string]struct{}, len(states))
	for _, s := range states {
		present[s] = struct{}{}
	}

	matrix := make(Matrix, len(states))
	for _, intended := range states {
		row := make(map[string]float64, len(states))
		for _, observed := range states {
			row[observed] = emissionFloor
		}
		row[intended] = correctEmission

		var adjacent []string
		for _, key := range KeyboardLayout[intended] {
			if _, ok := present[key]; ok {
				adjacent = append(adjacent, key)
			}
		}
		if len(adjacent) > 0 {
			share := typoMass / float64(len(adjacent))
			for _, key := range adjacent {
				row[key] += share
			}
		}

		normalizeRow(row)
		matrix[intended] = row
	}
	return matrix
}

func normalizeRow(row map[string]float64) {
	var total float64
	for _, p := range row {
		total += p
	}
	if total == 0 {
		return
	}
	for k, p := range row {
		row[k] = p / total
	}
}
