// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// AnswerReceived carries the result of one question.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// CollectionLoaded carries the collection summary shown in the status bar.
type CollectionLoaded struct {
	Info *domain.CollectionInfo
	Err  error
}

// Quit signals the application should exit.
type Quit struct{}
