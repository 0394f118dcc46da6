package corpus

import (
	"fmt"
	"math/rand/v2"
	"os"
)

// SourceDefault is the source name reported when the built-in text is used.
const SourceDefault = "default"

// DefaultFiles are the corpus files looked for, in order, when no others are
// configured.
var DefaultFiles = []string{"mots_generes.txt", "mots_filtrés.txt"}

// DefaultText is the built-in corpus used when no file is available.
const DefaultText = `
L'intelligence artificielle transforme notre monde moderne.
Les algorithmes d'apprentissage automatique analysent les données.
La reconnaissance vocale permet la communication naturelle.
Les réseaux de neurones imitent le cerveau humain.
La programmation fonctionnelle utilise des pipes élégants.
Les modèles statistiques prédisent les comportements futurs.
`

// Load returns the content of the first file in files that exists, together
// with its path. When none exists it returns DefaultText and SourceDefault.
// A file that exists but cannot be read is an error.
func Load(files ...string) (text string, source string, err error) {
	for _, file := range files {
		if _, statErr := os.Stat(file); statErr != nil {
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("failed to read corpus file '%s': %w", file, err)
		}
		return string(data), file, nil
	}
	return DefaultText, SourceDefault, nil
}

// RandomSentence picks one sentence uniformly. A nil rng uses the global
// source. It reports false when sentences is empty.
func RandomSentence(sentences []string, rng *rand.Rand) (string, bool) {
	if len(sentences) == 0 {
		return "", false
	}
	var i int
	if rng == nil {
		i = rand.IntN(len(sentences))
	} else {
		i = rng.IntN(len(sentences))
	}
	return sentences[i], true
}
