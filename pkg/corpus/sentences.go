package corpus

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SentenceSplitter cuts text into sentences on terminal punctuation and
// keeps only those long enough to be worth exploring.
// Its behavior can be customized with functional options.
type SentenceSplitter struct {
	boundaryRegex *regexp.Regexp
	minLength     int
}

// Option Is a function that configures a SentenceSplitter.
type Option func(*SentenceSplitter)

// WithBoundaryRegex sets the regex string matching sentence boundaries.
// Default: `[.!?]+`
func WithBoundaryRegex(boundaryRegex string) Option {
	return func(s *SentenceSplitter) {
		s.boundaryRegex = regexp.MustCompile(boundaryRegex)
	}
}

// WithMinLength sets the length, in characters, a trimmed sentence must
// exceed to be kept.
// Default: 15
func WithMinLength(n int) Option {
	return func(s *SentenceSplitter) {
		s.minLength = n
	}
}

// NewSentenceSplitter creates a splitter with default settings, which can be
// overridden by providing one or more Option functions.
func NewSentenceSplitter(opts ...Option) *SentenceSplitter {
	s := &SentenceSplitter{
		boundaryRegex: regexp.MustCompile(`[.!?]+`),
		minLength:     15,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split returns the trimmed sentences of text longer than the minimum length,
// in order of appearance.
func (s *SentenceSplitter) Split(text string) []string {
	sentences := make([]string, 0)
	for _, part := range s.boundaryRegex.Split(text, -1) {
		sentence := strings.TrimSpace(part)
		if sentence == "" || utf8.RuneCountInString(sentence) <= s.minLength {
			continue
		}
		sentences = append(sentences, sentence)
	}
	return sentences
}
