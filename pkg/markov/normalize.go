package markov

import (
	"regexp"
	"strings"
)

// frenchLetters lists the accented letters kept by NormalizeText in addition
// to ASCII word characters.
const frenchLetters = "àáâãäåçèéêëìíîïñòóôõöùúûüýÿ"

var (
	// disallowedRegex matches anything that is not a word character,
	// whitespace, or one of the accented letters above.
	disallowedRegex = regexp.MustCompile(`[^\w\s` + frenchLetters + `]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases text, replaces every character outside the
// supported alphabet with a space, collapses runs of whitespace into a single
// space and trims the result. It accepts any input.
func NormalizeText(text string) string {
	text = strings.ToLower(text)
	text = disallowedRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
