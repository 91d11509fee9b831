// Package prompt reads answers from an interactive user. Every question
// blocks until a non-blank answer is given; the only other way out is the
// input stream ending.
package prompt
