package markov

// Pair is two consecutive characters of a normalized text.
type Pair struct {
	First  string
	Second string
}

// ExtractUniqueChars returns the distinct characters of text in order of
// first appearance.
func ExtractUniqueChars(text string) []string {
	seen := make(map[rune]struct{})
	chars := make([]string, 0)
	for _, r := range text {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		chars = append(chars, string(r))
	}
	return chars
}

// CountCharacters returns how often each character occurs in text. The counts
// cover this text only; merging them into cumulative counts is up to the caller.
func CountCharacters(text string) map[string]int {
	counts := make(map[string]int)
	for _, r := range text {
		counts[string(r)]++
	}
	return counts
}

// CreateCharacterPairs slides a window of two characters over text. The
// result has one pair fewer than text has characters, and is empty for
// texts shorter than two characters.
func CreateCharacterPairs(text string) []Pair {
	runes := []rune(text)
	if len(runes) < 2 {
		return []Pair{}
	}
	pairs := make([]Pair, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		pairs = append(pairs, Pair{First: string(runes[i]), Second: string(runes[i+1])})
	}
	return pairs
}

// MergeStates returns the ordered union of existing and added. Existing
// states keep their position; unseen states are appended in order.
func MergeStates(existing, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			merged = append(merged, s)
		}
	}
	return merged
}
