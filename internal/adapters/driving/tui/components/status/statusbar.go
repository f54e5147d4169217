// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/styles"
)

// State represents the current chat state for display.
type State string

const (
	StateReady  State = "ready"
	StateAsking State = "asking"
	StateError  State = "error"
)

// Bar displays the collection summary, state and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	collection string
	count      int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	// The style's horizontal padding counts against the width.
	padding := b.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	if b.state == StateAsking {
		return b.styles.Muted.Render("Searching controls...")
	}
	if b.state == StateError {
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	}

	if b.collection == "" {
		return b.styles.Muted.Render("Ready")
	}
	summary := fmt.Sprintf("%s (%d chunks)", b.collection, b.count)
	if b.count == 0 {
		return b.styles.Warning.Render(summary + " - run isoguide index")
	}
	return b.styles.Normal.Render(summary)
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the error message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetCollection records the collection summary.
func (b *Bar) SetCollection(name string, count int) {
	b.collection = name
	b.count = count
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}
