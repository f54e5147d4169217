// Package normalisers provides implementations of the Normaliser interface
// for the formats the guidance document can be shipped in. Each normaliser
// knows how to extract text content from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; Default returns one
// with every built-in normaliser.
package normalisers
