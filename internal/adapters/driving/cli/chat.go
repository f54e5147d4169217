package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/isoguide/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions in an interactive terminal UI",
	Long: `Opens a full-screen chat over the collection. Each question is answered
with the nearest chunk and its supporting contexts.

Controls:
  Enter          - Ask
  PgUp/PgDn      - Scroll history
  Ctrl+L         - Clear history
  Esc / Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	c, err := openContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck

	app, err := tui.NewApp(&tui.Ports{
		Ask:  c.Ask,
		TopK: c.Settings.Server.DefaultTopK,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
