// Package file provides the TOML-backed ConfigStore.
//
// Nested tables are flattened to dotted keys on load ("embedding.model")
// and expanded back into tables on save.
package file
