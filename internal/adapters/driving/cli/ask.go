package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about ISO 27001 controls",
	Long: `Embeds the question, retrieves the nearest chunks from the collection
and prints the closest one as the answer, followed by the top-k contexts.

Examples:
  isoguide ask "What does the standard say about access reviews?"
  isoguide ask -k 5 --json "password policy"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "contexts to retrieve, at least 1 (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput mirrors the HTTP /ask response.
type askOutput struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Contexts []string      `json:"contexts"`
	Matches  []matchOutput `json:"matches"`
}

type matchOutput struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	c, err := openContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck

	topK := askTopK
	if !cmd.Flags().Changed("top-k") {
		topK = c.Settings.Server.DefaultTopK
	}

	answer, err := c.Ask.Ask(cmd.Context(), domain.AskRequest{
		Question: strings.Join(args, " "),
		TopK:     topK,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if askJSON {
		return writeAnswerJSON(out, answer)
	}
	writeAnswerText(out, answer)
	return nil
}

func writeAnswerJSON(w io.Writer, answer *domain.Answer) error {
	res := askOutput{
		Question: answer.Question,
		Answer:   answer.Answer,
		Contexts: answer.Contexts,
		Matches:  make([]matchOutput, 0, len(answer.Matches)),
	}
	if res.Contexts == nil {
		res.Contexts = []string{}
	}
	for _, m := range answer.Matches {
		res.Matches = append(res.Matches, matchOutput{ChunkID: m.ChunkID, Score: m.Score})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// answerStyles renders plain text unless w is a terminal.
type answerStyles struct {
	heading lipgloss.Style
	answer  lipgloss.Style
	score   lipgloss.Style
	context lipgloss.Style
}

func newAnswerStyles(w io.Writer) answerStyles {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		plain := lipgloss.NewStyle()
		return answerStyles{heading: plain, answer: plain, score: plain, context: plain}
	}

	r := lipgloss.NewRenderer(f)
	return answerStyles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		answer:  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		score:   r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		context: r.NewStyle().Foreground(lipgloss.Color("#A0A0A0")),
	}
}

func writeAnswerText(w io.Writer, answer *domain.Answer) {
	st := newAnswerStyles(w)

	fmt.Fprintln(w, st.heading.Render("Answer"))
	fmt.Fprintln(w, st.answer.Render(answer.Answer))
	if !answer.Found() {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.heading.Render("Contexts"))
	for i, m := range answer.Matches {
		fmt.Fprintf(w, "%d. %s %s\n", i+1,
			st.score.Render(fmt.Sprintf("[%.3f]", m.Score)),
			st.context.Render(preview(m.Content, 100)))
	}
}
