package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	filename := filepath.Join(t.TempDir(), "table.gob")
	s := New(filename)
	defer s.Close()

	_, err := s.Load(ctx)
	assert.True(t, store.IsNotFound(err))
	assert.True(t, errs.Is(err, errs.Storage))

	q, err := qlearning.New(qlearning.DefaultConfig(), 0)
	require.NoError(t, err)
	_, err = q.UpdateValue("s1", 1, 1.0, "s2")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, q.Snapshot()))
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, q.Snapshot(), snap)

	// No temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(filename))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "table.gob"))
	config := qlearning.DefaultConfig()

	q, err := store.Restore(ctx, s, config, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Len())

	_, err = q.UpdateValue("s1", 0, 1.0, "s2")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, q.Snapshot()))

	restored, err := store.Restore(ctx, s, config, 0)
	require.NoError(t, err)
	assert.Equal(t, q.Values("s1"), restored.Values("s1"))

	config.Actions = 3
	_, err = store.Restore(ctx, s, config, 0)
	assert.True(t, errs.Is(err, errs.InvalidConfiguration))
}

func TestLoadCorrupt(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "table.gob")
	require.NoError(t, os.WriteFile(filename, []byte("garbage"), 0o644))

	_, err := New(filename).Load(context.Background())
	assert.True(t, errs.Is(err, errs.Storage))
	assert.False(t, store.IsNotFound(err))
}

func TestSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(filepath.Join(t.TempDir(), "t")).Save(ctx, qlearning.Snapshot{})
	assert.True(t, errs.Is(err, errs.Storage))
}
