/*
Package markov provides a small character-level Markov model for predicting
the next character of French text.

A Model is learned from raw text with Learn, which normalizes the text,
accumulates character and pair counts, and rebuilds a Laplace-smoothed
transition matrix together with a keyboard-adjacency emission matrix. Learn
never mutates its input: every training session produces a new Model, which
callers persist through a Store.

Predict ranks the candidate successors of a character by transition
probability. The HMM type wraps a Model, a Store and a logger for callers that
want the load, train, save and predict cycle handled for them.
*/
package markov
