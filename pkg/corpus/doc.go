// Package corpus supplies training text and the sentences shown to users:
// it reads the first available corpus file, falls back to a built-in French
// text, and splits text into sentences.
package corpus
