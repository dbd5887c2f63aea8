package snapshotstore

import "io"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestMemSnapshotStoreNewHasNoCurrentUntilFinalized(t *testing.T) {
	store := NewMemSnapshotStore()

	_, ok := store.Current()
	assert.False(t, ok)

	sink, err := store.New(5, 100)
	require.NoError(t, err)

	_, writeErr := sink.Write([]byte("snapshot-body"))
	require.NoError(t, writeErr)

	require.NoError(t, store.Finalize(sink))

	handle, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, uint64(5), handle.Index)
	assert.Equal(t, int64(100), handle.Timestamp)
}

func TestMemSnapshotStoreOpenReturnsFinalizedBody(t *testing.T) {
	store := NewMemSnapshotStore()

	sink, err := store.New(1, 0)
	require.NoError(t, err)
	sink.Write([]byte("hello"))
	require.NoError(t, store.Finalize(sink))

	handle, _ := store.Current()

	reader, err := store.Open(handle)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestMemSnapshotStoreAbandonNeverBecomesCurrent(t *testing.T) {
	store := NewMemSnapshotStore()

	sink, err := store.New(9, 0)
	require.NoError(t, err)
	sink.Write([]byte("discarded"))

	require.NoError(t, store.Abandon(sink))

	_, ok := store.Current()
	assert.False(t, ok)
}
