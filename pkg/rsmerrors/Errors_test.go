package rsmerrors

import "errors"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestErrorMessageWithAndWithoutCause(t *testing.T) {
	plain := New(UnknownSession, "no such session")
	assert.Contains(t, plain.Error(), "UnknownSession")
	assert.Contains(t, plain.Error(), "no such session")

	cause := errors.New("boom")
	wrapped := Wrap(SnapshotIOError, "write failed", cause)
	assert.Contains(t, wrapped.Error(), "write failed")
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(CompactionError, "compaction failed", cause)

	assert.True(t, errors.Is(wrapped, cause))

	var target *Error
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, CompactionError, target.Kind)
}

func TestIsChecksKind(t *testing.T) {
	err := New(IndexOutOfBounds, "gap")

	assert.True(t, Is(err, IndexOutOfBounds))
	assert.False(t, Is(err, ProtocolError))
	assert.False(t, Is(errors.New("plain"), IndexOutOfBounds))
}
