// Package textutil provides small string helpers shared by the pipeline and
// the CLI: rune-safe truncation and whitespace normalisation.
package textutil
