package session

import "time"


//=========================================== Session


/*
	Session is a client's authenticated handle against one service.
	SessionId equals the index of the OpenSession entry that created it.

	CommandSequence, EventIndex, and LastCompleted are monotonic
	watermarks: callers must never move them backward.
*/

type Session struct {
	SessionID uint64
	ServiceID uint64
	MemberID string
	ReadConsistency string
	Timeout time.Duration

	LastUpdated int64 // wall-clock ms, as reported by the log entry that last touched this session
	Trusted bool

	CommandSequence uint64 // highest client-acked command sequence
	EventIndex uint64 // highest client-acked event index
	LastCompleted uint64 // lowest index whose linearizable events are all acked
}

func NewSession(sessionID uint64, serviceID uint64, memberID string, readConsistency string, timeout time.Duration, timestamp int64) *Session {
	return &Session{
		SessionID: sessionID,
		ServiceID: serviceID,
		MemberID: memberID,
		ReadConsistency: readConsistency,
		Timeout: timeout,
		LastUpdated: timestamp,
		Trusted: true,
	}
}

func (s *Session) Refresh(timestamp int64) {
	s.LastUpdated = timestamp
	s.Trusted = true
}

/*
	Expired reports whether, as of "now" (in entry-timestamp millis), the
	session has gone silent longer than its timeout.
*/

func (s *Session) Expired(now int64) bool {
	return now - s.LastUpdated > s.Timeout.Milliseconds()
}

/*
	AdvanceCommandSequence/AdvanceEventIndex/AdvanceLastCompleted enforce
	the monotonicity invariant: a watermark never moves backward, even if
	a stale keep-alive reports a smaller value.
*/

func (s *Session) AdvanceCommandSequence(seq uint64) {
	if seq > s.CommandSequence { s.CommandSequence = seq }
}

func (s *Session) AdvanceEventIndex(idx uint64) {
	if idx > s.EventIndex { s.EventIndex = idx }
}

func (s *Session) AdvanceLastCompleted(idx uint64) {
	if idx > s.LastCompleted { s.LastCompleted = idx }
}
