package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_SetLastAppliedWeight_IsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Entry{})
	l := New(store, nil)

	for _, w := range []int{3, 10, 7, 10, 2} {
		require.NoError(t, l.SetLastAppliedWeight(ctx, w))
	}

	w, err := l.LastAppliedWeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, w)
	// Only the increases were persisted
	assert.Equal(t, 2, store.Saves())
}

func TestLedger_MarkInstalled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Entry{LastAppliedWeight: 5})
	l := New(store, nil)

	installed, err := l.HasBeenInstalled(ctx)
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, l.MarkInstalled(ctx))
	require.NoError(t, l.MarkInstalled(ctx))

	e, found, err := l.Entry(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Entry{AlreadyInstalled: true, LastAppliedWeight: 5}, e)
	assert.Equal(t, 1, store.Saves())
}

func TestLedger_WithoutPackageRecord(t *testing.T) {
	// Given: a project where the package is not a locked dependency
	ctx := context.Background()
	store := NewMemoryStoreWithoutRecord()
	l := New(store, nil)

	// When: reading and writing
	require.NoError(t, l.SetLastAppliedWeight(ctx, 13))
	require.NoError(t, l.MarkInstalled(ctx))

	// Then: reads give zero values and writes are skipped
	w, err := l.LastAppliedWeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, w)
	installed, err := l.HasBeenInstalled(ctx)
	require.NoError(t, err)
	assert.False(t, installed)
	assert.Equal(t, 0, store.Saves())
}

func TestMemoryStore_UpdateSkipsUnchangedEntry(t *testing.T) {
	store := NewMemoryStore(Entry{LastAppliedWeight: 4})

	err := store.Update(context.Background(), func(e *Entry) bool {
		e.LastAppliedWeight = 99
		return false
	})

	require.NoError(t, err)
	e, _, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, e.LastAppliedWeight)
	assert.Equal(t, 0, store.Saves())
}
