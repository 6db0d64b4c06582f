package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
)

func TestReloader_SwapsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshotFile(t, dir, SampleData())

	source := NewFileSource(path)
	store := NewStore(nil)
	require.NoError(t, store.Reload(context.Background(), source))
	first := store.Current()
	require.NotNil(t, first)

	reloader, err := NewReloader(store, source, path, logging.NewNop())
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	reloader.OnReload(func(err error) { reloaded <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = reloader.Run(ctx)
	}()

	// Rewrite the file with one extra concept and wait for the swap.
	data := SampleData()
	data.Concepts = append(data.Concepts, data.Concepts[3])
	data.Concepts[4].ID = 5
	data.Concepts[4].Name = "Hematocrit"
	data.Concepts[4].LocalizedName = "Hematokrit"
	data.Concepts[4].Synonyms = []string{"HCT"}
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reload did not happen")
	}

	snap := store.Current()
	assert.NotSame(t, first, snap)
	assert.Equal(t, 5, snap.Catalog.Len())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not stop on cancellation")
	}
}

func TestReloader_BadUpdateKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshotFile(t, dir, SampleData())

	source := NewFileSource(path)
	store := NewStore(nil)
	require.NoError(t, store.Reload(context.Background(), source))
	first := store.Current()

	reloader, err := NewReloader(store, source, path, logging.NewNop())
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	reloader.OnReload(func(err error) { reloaded <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = reloader.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	select {
	case err := <-reloaded:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reload attempt did not happen")
	}

	assert.Same(t, first, store.Current())
}

func TestNewReloader_MissingDirectory(t *testing.T) {
	store := NewStore(nil)
	_, err := NewReloader(store, NewSampleSource(), "/nonexistent/dir/snapshot.json", logging.NewNop())
	assert.Error(t, err)
}
