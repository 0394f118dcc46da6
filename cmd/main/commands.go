package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/CTAG07/Drosera/pkg/corpus"
	"github.com/CTAG07/Drosera/pkg/markov"
	"github.com/CTAG07/Drosera/pkg/shell"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "drosera",
		Short: "Character-level Markov model for French text",
		Long: `Drosera learns which character tends to follow which from French text,
then lets you pick a position in a sentence and see its best guesses for the
next character.

Without a subcommand it trains on the corpus and starts an interactive session.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.shutdown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.json", "path to the configuration file")
	root.PersistentFlags().IntVarP(&a.topN, "top", "n", 0, "number of predictions to show (overrides top_n)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")

	root.AddCommand(
		newTrainCmd(a),
		newPredictCmd(a),
		newInfoCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "train [file...]",
		Short: "Train the model on text files, or on the configured corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			texts := make(map[string]string)
			sources := args
			if len(args) == 0 {
				text, source, err := corpus.Load(a.config.CorpusFiles...)
				if err != nil {
					return err
				}
				texts[source] = text
				sources = []string{source}
			} else {
				for _, file := range args {
					data, err := os.ReadFile(file)
					if err != nil {
						return fmt.Errorf("failed to read training file: %w", err)
					}
					texts[file] = string(data)
				}
			}

			for _, source := range sources {
				if err := a.hmm.LearnFromText(ctx, texts[source]); err != nil {
					_, _ = yellow.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
				_, _ = green.Fprintf(cmd.OutOrStdout(), "✓ Trained on %s\n", source)
			}
			printInfo(cmd.OutOrStdout(), a.hmm.Info())
			return nil
		},
	}
}

func newPredictCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <character>",
		Short: "Show the most likely characters following the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if utf8.RuneCountInString(args[0]) != 1 {
				return fmt.Errorf("expected a single character, got %q", args[0])
			}
			result := a.hmm.Predict(args[0], a.config.TopN)
			if err := result.Err(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Predictions after '%s' (model version %d, %d candidates):\n",
				shell.DisplayChar(result.InputCharacter), result.ModelVersion, result.TotalPredictions)
			for i, p := range result.Predictions {
				_, _ = fmt.Fprintf(out, "   %d. '%s'  transition %s  emission %s  combined %s\n",
					i+1, shell.DisplayChar(p.Character), p.Probability, p.EmissionProb, p.CombinedScore)
			}
			return nil
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Summarize the stored model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printInfo(cmd.OutOrStdout(), a.hmm.Info())
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the model as JSON to a file or standard output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.hmm.Export(cmd.OutOrStdout())
			}
			var buf bytes.Buffer
			if err := a.hmm.Export(&buf); err != nil {
				return err
			}
			if err := atomic.WriteFile(args[0], &buf); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			_, _ = green.Fprintf(cmd.OutOrStdout(), "✓ Model exported to %s\n", args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a model exported elsewhere into the stored one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import: %w", err)
			}
			defer func(f *os.File) {
				_ = f.Close()
			}(f)
			if err = a.hmm.Import(cmd.Context(), f); err != nil {
				return err
			}
			_, _ = green.Fprintf(cmd.OutOrStdout(), "✓ Model imported from %s\n", args[0])
			printInfo(cmd.OutOrStdout(), a.hmm.Info())
			return nil
		},
	}
}

// runInteractive trains on the corpus, picks a random sentence from it and
// hands over to the position-selection shell.
func (a *app) runInteractive(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	text, source, err := corpus.Load(a.config.CorpusFiles...)
	if err != nil {
		return err
	}
	if source == corpus.SourceDefault {
		_, _ = yellow.Fprintf(out, "No corpus file found, using the built-in text\n")
	} else {
		_, _ = green.Fprintf(out, "✓ Loaded corpus '%s'\n", source)
	}

	splitter := corpus.NewSentenceSplitter(corpus.WithMinLength(a.config.MinSentenceLength))
	sentence, ok := corpus.RandomSentence(splitter.Split(text), nil)
	if !ok {
		return fmt.Errorf("corpus '%s' has no sentence longer than %d characters", source, a.config.MinSentenceLength)
	}

	if err = a.hmm.LearnFromText(ctx, text); err != nil {
		_, _ = yellow.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	printInfo(out, a.hmm.Info())

	selector := shell.NewSelector(sentence, a.hmm, cmd.InOrStdin(), out, a.config.TopN)
	selector.SetLogger(a.logger)
	selector.DisplaySentence()
	_, _ = fmt.Fprintf(out, "\nPick a position to see the probabilities of the next character.\n")
	_, _ = fmt.Fprintf(out, "The best %d predictions are shown. Type %q to quit.\n", a.config.TopN, shell.QuitCommand)

	if err = selector.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printInfo(w io.Writer, info markov.ModelInfo) {
	last := info.LastTraining
	if t, err := time.Parse(time.RFC3339Nano, last); err == nil {
		last = fmt.Sprintf("%s (%s)", humanize.Time(t), last)
	}
	_, _ = fmt.Fprintf(w, "\nModel:\n")
	_, _ = fmt.Fprintf(w, "   - States (characters): %d\n", info.NumberOfStates)
	_, _ = fmt.Fprintf(w, "   - Characters seen: %s\n", humanize.Comma(int64(info.TotalCharacters)))
	_, _ = fmt.Fprintf(w, "   - Trainings: %d\n", info.TrainingIterations)
	_, _ = fmt.Fprintf(w, "   - Last training: %s\n", last)
}
