package domain

import "time"

// IndexOptions controls a collection rebuild.
// Zero values fall back to the configured defaults.
type IndexOptions struct {
	SourcePath     string
	DocumentName   string
	CollectionName string
	MaxChars       int
}

// IndexReport describes a completed rebuild.
type IndexReport struct {
	Collection string
	SourcePath string
	Chunks     int

	// Replaced is the entry count of the collection that was dropped.
	Replaced int

	Dimensions int
	Model      string
	Duration   time.Duration
}
