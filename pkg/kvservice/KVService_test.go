package kvservice

import "context"
import "testing"
import "time"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/coldharbor/rsm/pkg/session"

func newTestSession() *session.Session {
	return session.NewSession(1, 1, "member-a", "linearizable", time.Minute, 0)
}

func TestExecuteCommandPut(t *testing.T) {
	kv := New("orders")
	sess := newTestSession()

	result, err := kv.ExecuteCommand(context.Background(), 1, 1, 0, sess, Action{Verb: "put", Key: "k", Value: "v"})
	require.NoError(t, err)
	assert.Equal(t, "v", result.Value)
	require.Len(t, result.Events, 1)

	queryResult, err := kv.ExecuteQuery(context.Background(), 2, 2, 0, sess, Action{Verb: "get", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "v", queryResult.Value)
}

func TestExecuteCommandDuplicateSequenceReturnsCachedResult(t *testing.T) {
	kv := New("orders")
	sess := newTestSession()

	first, err := kv.ExecuteCommand(context.Background(), 1, 1, 0, sess, Action{Verb: "put", Key: "k", Value: "v1"})
	require.NoError(t, err)

	second, err := kv.ExecuteCommand(context.Background(), 1, 1, 0, sess, Action{Verb: "put", Key: "k", Value: "v2"})
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, "v1", second.Value)
}

func TestKeepAlivePurgesCachedResultsUpToSequence(t *testing.T) {
	kv := New("orders")
	sess := newTestSession()

	_, err := kv.ExecuteCommand(context.Background(), 1, 1, 0, sess, Action{Verb: "put", Key: "k", Value: "v1"})
	require.NoError(t, err)

	require.NoError(t, kv.KeepAlive(2, 100, sess, 1, 0))

	result, err := kv.ExecuteCommand(context.Background(), 3, 1, 0, sess, Action{Verb: "put", Key: "k", Value: "v2"})
	require.NoError(t, err)
	assert.Nil(t, result.Value, "purged duplicate returns no cached value and does not re-run")
}

func TestExecuteCommandDelete(t *testing.T) {
	kv := New("orders")
	sess := newTestSession()

	_, err := kv.ExecuteCommand(context.Background(), 1, 1, 0, sess, Action{Verb: "put", Key: "k", Value: "v"})
	require.NoError(t, err)

	_, err = kv.ExecuteCommand(context.Background(), 2, 2, 0, sess, Action{Verb: "delete", Key: "k"})
	require.NoError(t, err)

	result, err := kv.ExecuteQuery(context.Background(), 3, 3, 0, sess, Action{Verb: "get", Key: "k"})
	require.NoError(t, err)
	assert.Nil(t, result.Value)
}

func TestTakeSnapshotInstallSnapshotRoundTrip(t *testing.T) {
	kv := New("orders")
	sess := newTestSession()

	_, err := kv.ExecuteCommand(context.Background(), 1, 1, 0, sess, Action{Verb: "put", Key: "k", Value: "v"})
	require.NoError(t, err)

	body, err := kv.TakeSnapshot()
	require.NoError(t, err)

	restored := New("orders")
	require.NoError(t, restored.InstallSnapshot(body))

	result, err := restored.ExecuteQuery(context.Background(), 2, 1, 0, sess, Action{Verb: "get", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "v", result.Value)
}

func TestConstructorReturnsUserServiceInterface(t *testing.T) {
	instance, err := Constructor("orders")
	require.NoError(t, err)
	assert.NotNil(t, instance)
}
