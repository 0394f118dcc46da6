// Package shell runs the interactive session: it shows a sentence with
// numbered positions and, for each position the user picks, prints the
// model's guesses for the following character.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/CTAG07/Drosera/pkg/markov"
	"github.com/fatih/color"
)

// QuitCommand ends the session.
const QuitCommand = "q"

const ruleWidth = 60

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Predictor is satisfied by *markov.HMM.
type Predictor interface {
	Predict(input string, topN int) markov.PredictionResult
}

// Selector runs the position-selection loop over one sentence.
type Selector struct {
	sentence  []rune
	predictor Predictor
	in        *bufio.Scanner
	out       io.Writer
	topN      int
	logger    *slog.Logger
}

// NewSelector returns a Selector reading answers from in and writing to out.
// topN values below 1 fall back to 3.
func NewSelector(sentence string, predictor Predictor, in io.Reader, out io.Writer, topN int) *Selector {
	if topN < 1 {
		topN = 3
	}
	return &Selector{
		sentence:  []rune(sentence),
		predictor: predictor,
		in:        bufio.NewScanner(in),
		out:       out,
		topN:      topN,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Selector. By default, all logs are discarded.
func (s *Selector) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// DisplayChar renders a character for the console, spelling out spaces.
func DisplayChar(c string) string {
	if c == " " {
		return "[SPACE]"
	}
	return c
}

// DisplaySentence prints the sentence and one line per position.
func (s *Selector) DisplaySentence() {
	_, _ = cyan.Fprintf(s.out, "\nSelected sentence:\n")
	_, _ = fmt.Fprintf(s.out, "%q\n", string(s.sentence))
	_, _ = fmt.Fprintf(s.out, "\nLength: %d characters\n\n", len(s.sentence))
	_, _ = cyan.Fprintf(s.out, "Available characters:\n")
	for i, r := range s.sentence {
		_, _ = fmt.Fprintf(s.out, "   Position %02d: '%s'\n", i, DisplayChar(string(r)))
	}
}

// Run prompts for positions until the user quits, the input ends, or ctx is
// cancelled. Invalid answers are reported and asked again.
func (s *Selector) Run(ctx context.Context) error {
	if len(s.sentence) == 0 {
		return fmt.Errorf("no sentence to explore")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(s.out, "\nChoose a position (0-%d) or %q to quit: ", len(s.sentence)-1, QuitCommand)
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return fmt.Errorf("failed to read answer: %w", err)
			}
			_, _ = fmt.Fprintln(s.out)
			return nil
		}

		answer := strings.TrimSpace(s.in.Text())
		if strings.EqualFold(answer, QuitCommand) {
			_, _ = green.Fprintf(s.out, "\nGoodbye!\n")
			return nil
		}

		position, err := strconv.Atoi(answer)
		if err != nil || position < 0 || position >= len(s.sentence) {
			_, _ = yellow.Fprintf(s.out, "Invalid position. Enter a number between 0 and %d\n", len(s.sentence)-1)
			continue
		}
		s.showPosition(position)
	}
}

func (s *Selector) showPosition(position int) {
	selected := string(s.sentence[position])
	_, _ = fmt.Fprintf(s.out, "\nCharacter at position %d: '%s'\n", position, DisplayChar(selected))

	result := s.predictor.Predict(selected, s.topN)
	s.logger.Debug("Prediction requested",
		slog.Int("position", position),
		slog.String("character", selected),
		slog.Int("predictions", len(result.Predictions)),
	)
	if result.Error != "" {
		_, _ = red.Fprintf(s.out, "%s\n", result.Error)
		_, _ = fmt.Fprintf(s.out, "\n%s\n", strings.Repeat("=", ruleWidth))
		return
	}

	_, _ = cyan.Fprintf(s.out, "\nTop %d probabilities for the next character:\n", s.topN)
	_, _ = fmt.Fprintf(s.out, "%s\n", strings.Repeat("=", ruleWidth))
	for i, p := range result.Predictions {
		_, _ = fmt.Fprintf(s.out, "   %d. '%s' → %s\n", i+1, DisplayChar(p.Character), p.Probability)
	}

	if position+1 < len(s.sentence) {
		actual := string(s.sentence[position+1])
		_, _ = fmt.Fprintf(s.out, "\nCheck:\n")
		if p, ok := findPrediction(result.Predictions, actual); ok {
			_, _ = green.Fprintf(s.out, "   Actual next character '%s' predicted with %s\n", DisplayChar(actual), p.Probability)
		} else {
			_, _ = yellow.Fprintf(s.out, "   Actual next character '%s' not in the top %d\n", DisplayChar(actual), s.topN)
		}
	} else {
		_, _ = fmt.Fprintf(s.out, "\nEnd of sentence reached, no next character.\n")
	}
	_, _ = fmt.Fprintf(s.out, "\n%s\n", strings.Repeat("=", ruleWidth))
}

func findPrediction(predictions []markov.Prediction, c string) (markov.Prediction, bool) {
	for _, p := range predictions {
		if p.Character == c {
			return p, true
		}
	}
	return markov.Prediction{}, false
}
