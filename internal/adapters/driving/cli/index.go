package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/logger"
)

var (
	indexSource   string
	indexMaxChars int
	indexVerify   string
	indexTopK     int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector collection from the guidance document",
	Long: `Loads the guidance document, splits it into paragraph chunks, embeds
every chunk and rebuilds the collection from scratch. Any existing
collection with the same name is dropped first.

Examples:
  isoguide index
  isoguide index --source docs/iso27001.pdf --max-chars 800
  isoguide index --verify "What is the clean desk policy?"`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexSource, "source", "", "document to index (default from settings)")
	indexCmd.Flags().IntVar(&indexMaxChars, "max-chars", 0, "maximum chunk length (default from settings)")
	indexCmd.Flags().StringVar(&indexVerify, "verify", "", "run this question against the new collection")
	indexCmd.Flags().IntVarP(&indexTopK, "top-k", "k", domain.DefaultTopK, "matches to show with --verify")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	c, err := openContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck

	logger.Section("Index")
	report, err := c.Index.Build(cmd.Context(), domain.IndexOptions{
		SourcePath: indexSource,
		MaxChars:   indexMaxChars,
	})
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %s into %s\n", report.Chunks, report.SourcePath, report.Collection)
	cmd.Printf("  Model:    %s (%d dims)\n", report.Model, report.Dimensions)
	if report.Replaced > 0 {
		cmd.Printf("  Replaced: %d entries\n", report.Replaced)
	}
	cmd.Printf("  Took:     %s\n", report.Duration.Round(time.Millisecond))

	if indexVerify == "" {
		return nil
	}

	matches, err := c.Index.Verify(cmd.Context(), indexVerify, indexTopK)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	cmd.Printf("\nTop %d for %q:\n", len(matches), indexVerify)
	for i, m := range matches {
		cmd.Printf("  %d. [%.3f] %s: %s\n", i+1, m.Score, m.ChunkID, preview(m.Content, 80))
	}
	return nil
}

// preview flattens s to a single line of at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
