package registry

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/coldharbor/rsm/pkg/kvservice"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/userservice"

func TestServiceRegistryMaterializeOrReplaceAssignsIncrementingIDs(t *testing.T) {
	r := NewServiceRegistry()
	r.RegisterType("kv", kvservice.Constructor)

	first, created, err := r.MaterializeOrReplace("orders", "kv")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(1), first.ServiceID)

	again, created, err := r.MaterializeOrReplace("orders", "kv")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created, err := r.MaterializeOrReplace("billing", "kv")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(2), other.ServiceID)
}

func TestServiceRegistryMaterializeUnknownTypeFails(t *testing.T) {
	r := NewServiceRegistry()

	_, _, err := r.MaterializeOrReplace("orders", "kv")
	require.Error(t, err)

	var rsmErr *rsmerrors.Error
	require.ErrorAs(t, err, &rsmErr)
	assert.Equal(t, rsmerrors.UnknownService, rsmErr.Kind)
}

func TestServiceRegistryUnregisterRemovesFromBothIndices(t *testing.T) {
	r := NewServiceRegistry()
	r.RegisterType("kv", kvservice.Constructor)

	entry, _, err := r.MaterializeOrReplace("orders", "kv")
	require.NoError(t, err)

	removed, ok := r.Unregister(entry.ServiceID)
	require.True(t, ok)
	assert.Equal(t, userservice.Deleted, removed.Status)

	_, ok = r.ByID(entry.ServiceID)
	assert.False(t, ok)
	_, ok = r.ByName("orders")
	assert.False(t, ok)
}

func TestServiceRegistryInstallForSnapshotAssignsNewIdentity(t *testing.T) {
	r := NewServiceRegistry()
	r.RegisterType("kv", kvservice.Constructor)

	original, _, err := r.MaterializeOrReplace("orders", "kv")
	require.NoError(t, err)

	fresh, prior, err := r.InstallForSnapshot("orders", "kv")
	require.NoError(t, err)
	require.NotNil(t, prior)

	assert.Equal(t, original.ServiceID, prior.ServiceID)
	assert.NotEqual(t, original.ServiceID, fresh.ServiceID)

	got, ok := r.ByName("orders")
	require.True(t, ok)
	assert.Same(t, fresh, got)
}
