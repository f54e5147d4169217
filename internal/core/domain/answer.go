package domain

import (
	"fmt"
	"strings"
)

// DefaultTopK is the number of matches requested when a caller gives none.
const DefaultTopK = 3

// NoGuidanceAnswer is returned in place of an answer when the collection
// yields no matches. It is a normal response, not an error.
const NoGuidanceAnswer = "I could not find any relevant ISO 27001 guidance for this question."

// AskRequest is a question for the query service. It is never persisted.
type AskRequest struct {
	Question string
	TopK     int
}

// Validate checks the request without touching any backend.
// maxTopK <= 0 disables the upper bound.
func (r AskRequest) Validate(maxTopK int) error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: question must not be empty", ErrInvalidInput)
	}
	if r.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidInput, r.TopK)
	}
	if maxTopK > 0 && r.TopK > maxTopK {
		return fmt.Errorf("%w: top_k must be at most %d, got %d", ErrInvalidInput, maxTopK, r.TopK)
	}
	return nil
}

// Answer is the retrieval result for a question.
type Answer struct {
	// Question echoes the request.
	Question string

	// Answer is the nearest chunk's text, or NoGuidanceAnswer.
	Answer string

	// Contexts holds every match's text in descending similarity order.
	// Empty, never nil, when nothing matched.
	Contexts []string

	// Matches carries ids and scores alongside Contexts.
	Matches []Match
}

// Found reports whether the answer came from a match.
func (a *Answer) Found() bool {
	return len(a.Matches) > 0
}

// NewAnswer builds an Answer from ranked matches.
func NewAnswer(question string, matches []Match) *Answer {
	if len(matches) == 0 {
		return &Answer{
			Question: question,
			Answer:   NoGuidanceAnswer,
			Contexts: []string{},
			Matches:  []Match{},
		}
	}

	contexts := make([]string, len(matches))
	for i := range matches {
		contexts[i] = matches[i].Content
	}

	return &Answer{
		Question: question,
		Answer:   matches[0].Content,
		Contexts: contexts,
		Matches:  matches,
	}
}
