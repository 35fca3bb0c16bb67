package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reva-ai/extract-cli/internal/model"
)

func TestSQLiteStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	store.Load()
	for _, r := range sampleResults() {
		store.Record(r)
	}
	require.NoError(t, store.Flush())
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	state := reopened.Load()
	require.Len(t, state.Results, 3)
	assert.Equal(t, "Clean text.", state.Results["1"].Abstract)
	assert.Equal(t, []string{"carbon pricing", "climate policy"}, state.Results["1"].Keywords)
	assert.Equal(t, model.ErrorNoContentFound, state.Results["3"].Error)
}

func TestSQLiteStoreUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	store.Load()

	store.Record(model.ExtractionResult{
		RecordID: "1", Status: model.StatusFailed, Source: model.SourceNone,
		Error: model.ErrorFallbackUnavailable,
	})
	require.NoError(t, store.Flush())

	store.Record(model.ExtractionResult{
		RecordID: "1", Status: model.StatusSuccess, Source: model.SourceCrossref,
		Abstract: "Recovered.",
	})
	require.NoError(t, store.Flush())

	state := store.Load()
	require.Len(t, state.Results, 1)
	assert.Equal(t, model.StatusSuccess, state.Results["1"].Status)
	assert.Equal(t, model.SourceCrossref, state.Results["1"].Source)
}

func TestSQLiteStoreRepeatedFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	store.Load()

	store.Record(sampleResults()[0])
	require.NoError(t, store.Flush())
	require.NoError(t, store.Flush())
	require.NoError(t, store.Flush())

	state := store.Load()
	assert.Len(t, state.Results, 1)
}
