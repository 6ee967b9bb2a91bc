package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-search/pkg/domain"
)

func TestStorageEngine_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot"+FileExtension)

	engine := NewStorageEngine(WithSnapshotFile(path))
	_, err := engine.CreateIndexIfMissing("movies")
	require.NoError(t, err)
	_, err = engine.CreateIndexIfMissing("empty")
	require.NoError(t, err)
	_, err = engine.AddDocuments("movies", []domain.Document{
		{"id": "b", "title": "Heat", "tags": []interface{}{"crime"}},
		{"id": "a", "title": "Alien", "meta": map[string]interface{}{"year": float64(1979)}},
	}, "", domain.ReplaceDocuments)
	require.NoError(t, err)
	assert.True(t, engine.IsDirty())

	require.NoError(t, engine.SaveSnapshot())
	assert.False(t, engine.IsDirty())

	restored := NewStorageEngine(WithSnapshotFile(path))
	require.NoError(t, restored.LoadSnapshot())

	infos := restored.ListIndexes()
	require.Len(t, infos, 2)
	assert.Equal(t, "empty", infos[0].UID)
	assert.Equal(t, "movies", infos[1].UID)
	assert.Equal(t, "id", infos[1].PrimaryKey)

	docs, err := restored.Browse("movies", domain.BrowseQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0]["id"], "insertion order survives a snapshot")
	assert.Equal(t, "Alien", docs[1]["title"])
	assert.Equal(t, []interface{}{"crime"}, docs[0]["tags"])
	assert.Equal(t, map[string]interface{}{"year": float64(1979)}, docs[1]["meta"])
}

func TestStorageEngine_LoadMissingSnapshot(t *testing.T) {
	engine := NewStorageEngine(WithSnapshotFile(filepath.Join(t.TempDir(), "absent.gose")))
	assert.NoError(t, engine.LoadSnapshot())
	assert.Empty(t, engine.ListIndexes())
}

func TestStorageEngine_LoadCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.gose")
	require.NoError(t, os.WriteFile(path, []byte("NOPE-not-a-snapshot"), 0o644))

	engine := NewStorageEngine(WithSnapshotFile(path))
	assert.Error(t, engine.LoadSnapshot())
}

func TestStorageEngine_BackgroundSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.gose")
	engine := NewStorageEngine(WithSnapshotFile(path), WithBackgroundSave(10*time.Millisecond))
	engine.StartBackgroundWorkers()
	defer engine.StopBackgroundWorkers()

	_, err := engine.CreateIndexIfMissing("movies")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil && !engine.IsDirty()
	}, 2*time.Second, 10*time.Millisecond)

	engine.StopBackgroundWorkers()
	engine.StopBackgroundWorkers()
}

func TestStorageEngine_ChangeDuringSaveStaysDirty(t *testing.T) {
	engine := NewStorageEngine()
	_, err := engine.CreateIndexIfMissing("movies")
	require.NoError(t, err)

	// a save started here exports the state before the next write
	generation := engine.currentGeneration()
	_, err = engine.AddDocuments("movies", []domain.Document{{"id": "1"}}, "", domain.ReplaceDocuments)
	require.NoError(t, err)

	engine.markSaved(generation)
	assert.True(t, engine.IsDirty(), "the write after export still needs saving")

	engine.markSaved(engine.currentGeneration())
	assert.False(t, engine.IsDirty())
}
