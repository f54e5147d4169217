package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

func TestCollectionCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range collectionCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["info"])
	assert.True(t, names["drop"])
}

func TestCollectionList_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "collection", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No collections")
}

func TestCollectionList_AfterIndex(t *testing.T) {
	indexed(t)

	out, err := execute(t, "collection", "list")

	require.NoError(t, err)
	assert.Contains(t, out, domain.DefaultCollectionName)
	assert.Contains(t, out, "2 entries")
	assert.Contains(t, out, "hash, 1024 dims")
}

func TestCollectionInfo(t *testing.T) {
	indexed(t)

	out, err := execute(t, "collection", "info")

	require.NoError(t, err)
	assert.Contains(t, out, "Name:     "+domain.DefaultCollectionName)
	assert.Contains(t, out, "Backend:  memory")
	assert.Contains(t, out, "Entries:  2")
	assert.Contains(t, out, "Model:    hash, 1024 dims")
}

func TestCollectionInfo_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "collection", "info", "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollectionDrop_Yes(t *testing.T) {
	env := indexed(t)

	out, err := execute(t, "collection", "drop", "--yes")

	require.NoError(t, err)
	assert.Contains(t, out, "Dropped collection "+domain.DefaultCollectionName)
	infos, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestCollectionDrop_PromptConfirmed(t *testing.T) {
	env := indexed(t)

	out, err := executeWith(t, context.Background(), strings.NewReader("y\n"), "collection", "drop")

	require.NoError(t, err)
	assert.Contains(t, out, "Drop collection "+domain.DefaultCollectionName+"? [y/N]")
	assert.Contains(t, out, "Dropped collection")
	infos, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestCollectionDrop_PromptDeclined(t *testing.T) {
	env := indexed(t)

	out, err := executeWith(t, context.Background(), strings.NewReader("\n"), "collection", "drop")

	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	infos, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestCollectionDrop_Missing(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "collection", "drop", "-y", "nope")

	require.NoError(t, err)
	assert.Contains(t, out, "Collection nope does not exist.")
}

func TestModelLabel(t *testing.T) {
	assert.Equal(t, "(no embeddings)", modelLabel(domain.CollectionInfo{}))
	assert.Equal(t, "384 dims", modelLabel(domain.CollectionInfo{Dimensions: 384}))
	assert.Equal(t, "all-minilm, 384 dims", modelLabel(domain.CollectionInfo{Model: "all-minilm", Dimensions: 384}))
}
