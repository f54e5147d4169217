package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driven"
)

var dropYes bool

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Inspect and manage vector collections",
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections in the vector store",
	Args:  cobra.NoArgs,
	RunE:  runCollectionList,
}

var collectionInfoCmd = &cobra.Command{
	Use:   "info [name]",
	Short: "Show a collection's size and embedding model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollectionInfo,
}

var collectionDropCmd = &cobra.Command{
	Use:   "drop [name]",
	Short: "Delete a collection and all its entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollectionDrop,
}

func init() {
	collectionDropCmd.Flags().BoolVarP(&dropYes, "yes", "y", false, "skip the confirmation prompt")
	collectionCmd.AddCommand(collectionListCmd, collectionInfoCmd, collectionDropCmd)
	rootCmd.AddCommand(collectionCmd)
}

// withStore opens the configured store without an embedding service.
func withStore(cmd *cobra.Command, fn func(driven.VectorStore, *domain.Settings) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), &settings.Storage)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck
	return fn(store, settings)
}

func collectionName(args []string, settings *domain.Settings) string {
	if len(args) > 0 {
		return args[0]
	}
	return settings.Storage.Collection
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(store driven.VectorStore, _ *domain.Settings) error {
		infos, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list collections: %w", err)
		}
		if len(infos) == 0 {
			cmd.Println("No collections. Run 'isoguide index' to build one.")
			return nil
		}
		for _, info := range infos {
			cmd.Printf("%-24s %6d entries  %s\n", info.Name, info.Count, modelLabel(info))
		}
		return nil
	})
}

func runCollectionInfo(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(store driven.VectorStore, settings *domain.Settings) error {
		name := collectionName(args, settings)
		infos, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list collections: %w", err)
		}
		for _, info := range infos {
			if info.Name != name {
				continue
			}
			cmd.Printf("Name:     %s\n", info.Name)
			cmd.Printf("Backend:  %s\n", settings.Storage.Backend)
			cmd.Printf("Entries:  %d\n", info.Count)
			cmd.Printf("Model:    %s\n", modelLabel(info))
			if !info.CreatedAt.IsZero() {
				cmd.Printf("Created:  %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		}
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	})
}

func runCollectionDrop(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(store driven.VectorStore, settings *domain.Settings) error {
		name := collectionName(args, settings)

		if !dropYes {
			cmd.Printf("Drop collection %s? [y/N]: ", name)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				cmd.Println("Cancelled.")
				return nil
			}
		}

		err := store.Delete(cmd.Context(), name)
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("Collection %s does not exist.\n", name)
			return nil
		}
		if err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
		cmd.Printf("Dropped collection %s.\n", name)
		return nil
	})
}

func modelLabel(info domain.CollectionInfo) string {
	switch {
	case info.Model == "" && info.Dimensions == 0:
		return "(no embeddings)"
	case info.Model == "":
		return fmt.Sprintf("%d dims", info.Dimensions)
	default:
		return fmt.Sprintf("%s, %d dims", info.Model, info.Dimensions)
	}
}
