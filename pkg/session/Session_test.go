package session

import "testing"
import "time"

import "github.com/stretchr/testify/assert"

func TestSessionExpired(t *testing.T) {
	s := NewSession(1, 10, "member-a", "linearizable", 5*time.Second, 1000)

	assert.False(t, s.Expired(4000))
	assert.True(t, s.Expired(6001))
}

func TestSessionRefreshResetsTimeout(t *testing.T) {
	s := NewSession(1, 10, "member-a", "linearizable", 5*time.Second, 1000)

	s.Refresh(5000)

	assert.False(t, s.Expired(9000))
	assert.True(t, s.Trusted)
}

func TestSessionWatermarksAreMonotonic(t *testing.T) {
	s := NewSession(1, 10, "member-a", "linearizable", time.Minute, 0)

	s.AdvanceCommandSequence(5)
	s.AdvanceCommandSequence(3)
	assert.Equal(t, uint64(5), s.CommandSequence)

	s.AdvanceEventIndex(7)
	s.AdvanceEventIndex(2)
	assert.Equal(t, uint64(7), s.EventIndex)

	s.AdvanceLastCompleted(9)
	s.AdvanceLastCompleted(1)
	assert.Equal(t, uint64(9), s.LastCompleted)
}
