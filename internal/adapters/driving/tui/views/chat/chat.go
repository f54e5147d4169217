// Package chat provides the question-and-answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
)

// chrome is the number of lines used by header, input and status bar.
const chrome = 7

// exchange is one question with its outcome. History lives in the view only.
type exchange struct {
	question string
	answer   *domain.Answer
	err      error
}

// View is the chat transcript with a question input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model

	ask  driving.AskService
	topK int
	ctx  context.Context

	history []exchange
	asking  bool
	width   int
	height  int
}

// NewView creates a chat view asking with topK passages per question.
func NewView(s *styles.Styles, km *keymap.KeyMap, ask driving.AskService, topK int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		statusbar: status.NewBar(s, km),
		viewport:  viewport.New(80, 24-chrome),
		ask:       ask,
		topK:      topK,
		ctx:       context.Background(),
	}
	v.render()
	return v
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.asking = false
		v.history = append(v.history, exchange{question: msg.Question, answer: msg.Answer, err: msg.Err})
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		} else {
			v.statusbar.SetState(status.StateReady)
			v.statusbar.SetMessage("")
		}
		v.render()
		v.viewport.GotoBottom()
		return v, nil

	case messages.CollectionLoaded:
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.statusbar.SetCollection(msg.Info.Name, msg.Info.Count)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Clear):
		v.history = nil
		v.render()
		return v, nil

	case keymap.Matches(key, v.keymap.Ask):
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.asking {
			return v, nil
		}
		v.asking = true
		v.input.Reset()
		v.statusbar.SetState(status.StateAsking)
		return v, v.performAsk(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// performAsk runs the question off the update loop.
func (v *View) performAsk(question string) tea.Cmd {
	ask, ctx, topK := v.ask, v.ctx, v.topK
	return func() tea.Msg {
		answer, err := ask.Ask(ctx, domain.AskRequest{Question: question, TopK: topK})
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// render rebuilds the transcript content.
func (v *View) render() {
	if len(v.history) == 0 {
		v.viewport.SetContent(v.styles.Muted.Render(
			"Type a question such as \"What is a clean desk policy?\" and press enter."))
		return
	}

	wrap := v.viewport.Width - 4
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	for i, ex := range v.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Render("> " + ex.question))
		b.WriteString("\n")

		if ex.err != nil {
			b.WriteString(v.styles.Error.Width(wrap).Render("Error: " + ex.err.Error()))
			continue
		}

		b.WriteString(v.styles.Answer.Width(wrap).Render(ex.answer.Answer))
		for j := 1; j < len(ex.answer.Matches); j++ {
			m := ex.answer.Matches[j]
			b.WriteString("\n")
			b.WriteString(v.styles.Score.Render(fmt.Sprintf("  [%d] %.3f", j+1, m.Score)))
			b.WriteString("\n")
			b.WriteString(v.styles.Context.Width(wrap).Render(m.Content))
		}
	}
	v.viewport.SetContent(b.String())
}

// View renders the chat.
func (v *View) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("ISOGuide"),
		"",
		v.viewport.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sizes the transcript, input and status bar.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	v.viewport.Width = width
	v.viewport.Height = max(height-chrome, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.render()
}

// History returns the number of exchanges shown.
func (v *View) History() int {
	return len(v.history)
}

// Asking reports whether a question is in flight.
func (v *View) Asking() bool {
	return v.asking
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// SetInput sets the input text.
func (v *View) SetInput(value string) {
	v.input.SetValue(value)
}

// Input returns the input text.
func (v *View) Input() string {
	return v.input.Value()
}
