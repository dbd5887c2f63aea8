package manager

import "context"
import "errors"
import "testing"
import "time"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/coldharbor/rsm/pkg/config"
import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/kvservice"
import "github.com/coldharbor/rsm/pkg/logfacade"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/snapshotstore"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SnapshotInterval = time.Hour
	cfg.CompletionCheckInterval = 10 * time.Millisecond
	cfg.SnapshotCompletionTimeout = 200 * time.Millisecond
	return cfg
}

func newTestManager(t *testing.T) (*ServiceManager, *logfacade.MemLogFacade) {
	logFacade := logfacade.NewMemLogFacade(0.5)
	snapshots := snapshotstore.NewMemSnapshotStore()

	m := New(testConfig(), logFacade, snapshots, nil)
	m.RegisterServiceType("kv", kvservice.Constructor)

	require.NoError(t, m.Start())
	t.Cleanup(m.Stop)

	return m, logFacade
}

func TestApplyOpenSessionAssignsSessionIDEqualToIndex(t *testing.T) {
	m, logFacade := newTestManager(t)

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})

	result, err := m.Apply(1).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Value)
}

func TestApplyCommandPut(t *testing.T) {
	m, logFacade := newTestManager(t)

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})
	logFacade.Append(&entry.LogEntry{
		Index: 2, Kind: entry.Command,
		Command: &entry.CommandPayload{SessionID: 1, Sequence: 1, Operation: kvservice.Action{Verb: "put", Key: "k", Value: "v"}},
	})

	_, err := m.Apply(1).Wait(context.Background())
	require.NoError(t, err)

	result, err := m.Apply(2).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v", result.Value)
}

func TestApplyDuplicateSequenceReturnsCachedResult(t *testing.T) {
	m, logFacade := newTestManager(t)

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})
	logFacade.Append(&entry.LogEntry{
		Index: 2, Kind: entry.Command,
		Command: &entry.CommandPayload{SessionID: 1, Sequence: 5, Operation: kvservice.Action{Verb: "put", Key: "k", Value: "v1"}},
	})
	logFacade.Append(&entry.LogEntry{
		Index: 3, Kind: entry.Command,
		Command: &entry.CommandPayload{SessionID: 1, Sequence: 5, Operation: kvservice.Action{Verb: "put", Key: "k", Value: "v2"}},
	})

	_, err := m.Apply(1).Wait(context.Background())
	require.NoError(t, err)

	first, err := m.Apply(2).Wait(context.Background())
	require.NoError(t, err)

	second, err := m.Apply(3).Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
}

func TestApplyUnknownSessionFailsOnlyThatIndexAndAdvancesLastApplied(t *testing.T) {
	m, logFacade := newTestManager(t)

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.Command,
		Command: &entry.CommandPayload{SessionID: 99, Sequence: 1, Operation: kvservice.Action{Verb: "put", Key: "k", Value: "v"}},
	})
	logFacade.Append(&entry.LogEntry{
		Index: 2, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})

	_, err := m.Apply(1).Wait(context.Background())
	require.Error(t, err)

	result, err := m.Apply(2).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Value)
}

func TestApplyAllDrainsWithoutPendingPromise(t *testing.T) {
	m, logFacade := newTestManager(t)

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})

	m.ApplyAll(1)

	require.Eventually(t, func() bool {
		result, err := m.Apply(1).Wait(context.Background())
		return err != nil || result.Value == uint64(1)
	}, time.Second, 5*time.Millisecond)
}

func TestQueryWithVersionAlreadySatisfiedAppliesImmediately(t *testing.T) {
	m, logFacade := newTestManager(t)

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})
	logFacade.Append(&entry.LogEntry{
		Index: 2, Kind: entry.Command,
		Command: &entry.CommandPayload{SessionID: 1, Sequence: 1, Operation: kvservice.Action{Verb: "put", Key: "k", Value: "v"}},
	})
	logFacade.Append(&entry.LogEntry{
		Index: 3, Kind: entry.Query,
		Query: &entry.QueryPayload{SessionID: 1, Sequence: 1, Version: 2, Operation: kvservice.Action{Verb: "get", Key: "k"}},
	})

	result, err := m.Apply(3).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v", result.Value)
}

func TestQueryWithUnreachableVersionTimesOutWithVersionNotCaughtUp(t *testing.T) {
	m, logFacade := newTestManager(t)
	m.Config.QueryVersionWaitTimeout = 30 * time.Millisecond
	m.Config.QueryVersionPollInterval = 5 * time.Millisecond

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})
	logFacade.Append(&entry.LogEntry{
		Index: 2, Kind: entry.Query,
		Query: &entry.QueryPayload{SessionID: 1, Sequence: 1, Version: 100, Operation: kvservice.Action{Verb: "get", Key: "k"}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := m.Apply(2).Wait(ctx)
	require.Error(t, err)

	var rsmErr *rsmerrors.Error
	require.True(t, errors.As(err, &rsmErr))
	assert.Equal(t, rsmerrors.VersionNotCaughtUp, rsmErr.Kind)
}

func TestCompactCalledOnceAfterSnapshotCompletion(t *testing.T) {
	m, logFacade := newTestManager(t)

	logFacade.Append(&entry.LogEntry{
		Index: 1, Kind: entry.OpenSession,
		OpenSession: &entry.OpenSessionPayload{ServiceName: "orders", ServiceType: "kv", Timeout: time.Minute},
	})

	sessionID, err := m.Apply(1).Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), sessionID.Value)

	logFacade.Append(&entry.LogEntry{
		Index: 2, Kind: entry.CloseSession,
		CloseSession: &entry.CloseSessionPayload{SessionID: 1, Deleted: false},
	})
	_, err = m.Apply(2).Wait(context.Background())
	require.NoError(t, err)

	ordered := m.Compact()

	var calls int
	ordered.OnComplete(func(err error) { calls++ })

	require.Eventually(t, ordered.Completed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, calls)
}
