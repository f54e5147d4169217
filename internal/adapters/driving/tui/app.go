package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui/views/chat"
)

// App is the TUI application following the Elm architecture.
type App struct {
	ports    *Ports
	ctx      context.Context
	chatView *chat.View

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingAskService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		chatView: chat.NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), ports.Ask, ports.TopK),
	}, nil
}

// WithContext sets the context for the app and its questions.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("isoguide"),
		a.chatView.Init(),
		a.loadCollection(),
	)
}

func (a *App) loadCollection() tea.Cmd {
	ask, ctx := a.ports.Ask, a.ctx
	return func() tea.Msg {
		info, err := ask.Info(ctx)
		return messages.CollectionLoaded{Info: info, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case messages.Quit:
		return a, tea.Quit
	}

	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.chatView.View()
}

// SetDimensions sets the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}
