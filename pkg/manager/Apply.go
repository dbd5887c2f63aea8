package manager

import "context"
import "time"

import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/future"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/scheduler"
import "github.com/coldharbor/rsm/pkg/userservice"


//=========================================== Apply


/*
	ApplyAll is the fire-and-forget entry point: it drains every
	uncommitted index up to index with no promise attached.
*/

func (m *ServiceManager) ApplyAll(index uint64) {
	m.ServerCtx.Submit(func() { m.drain(index) })
}

/*
	Apply reserves a result slot for index before scheduling drain, so a
	caller racing the drain loop can never miss the resolution — the
	future is registered synchronously, then the drain itself always
	runs on ServerCtx. An index the drain loop has already consumed is
	no longer the reader's next index, so its future fails with
	IndexOutOfBounds.
*/

func (m *ServiceManager) Apply(index uint64) *future.Future[userservice.OperationResult] {
	fut := future.New[userservice.OperationResult]()

	m.pendingMutex.Lock()
	m.pending[index] = fut
	m.pendingMutex.Unlock()

	m.ServerCtx.Submit(func() {
		if index <= m.lastEnqueued {
			m.failPending(index, rsmerrors.New(rsmerrors.IndexOutOfBounds, "requested index was already applied"))
			return
		}

		m.drain(index)
	})

	return fut
}

func (m *ServiceManager) takePending(index uint64) *future.Future[userservice.OperationResult] {
	m.pendingMutex.Lock()
	defer m.pendingMutex.Unlock()

	fut, ok := m.pending[index]
	if ok { delete(m.pending, index) }

	return fut
}

/*
	drain walks lastEnqueued+1 … target sequentially and never skips
	ahead. A reader failure — either a gap (NextIndex
	doesn't match what's expected) or an error surfaced from Read itself —
	is treated as non-deterministic: it fails only that index's pending
	promise, halts the loop without advancing lastApplied, and will be
	retried by the next ApplyAll/Apply call. A failed user operation is
	deterministic: lastApplied still advances and only that index's
	promise is failed.

	A Query entry whose client-supplied version hasn't yet been reached by
	lastApplied is a third case: it is neither a reader failure nor a
	failed operation, so the entry is cached in deferredQuery and the loop
	returns without consuming it, handing ServerCtx back to whatever other
	submitted job — typically a later Apply/ApplyAll call delivering the
	entries this version is waiting on — will advance lastApplied. A
	short timer resubmits drain so the wait is retried rather than
	requiring an external nudge. Blocking in place here instead would
	starve ServerCtx of exactly the jobs that could satisfy the wait.
*/

func (m *ServiceManager) drain(target uint64) {
	for next := m.lastEnqueued + 1; next <= target; next++ {
		logEntry, readErr := m.nextDrainEntry(next)
		if readErr != nil {
			m.deferredQuery = nil
			m.failPending(next, readErr)
			return
		}

		if logEntry.Kind == entry.Query && logEntry.Query.Version > m.lastApplied {
			if m.deferredQuery == nil {
				m.deferredQuery = logEntry
				m.deferredQuerySince = time.Now()
			}

			if time.Since(m.deferredQuerySince) >= m.Config.QueryVersionWaitTimeout {
				m.deferredQuery = nil
				m.failPending(next, rsmerrors.New(rsmerrors.VersionNotCaughtUp, "query version never caught up before timeout"))
				return
			}

			m.retryDrain(target)
			return
		}

		m.deferredQuery = nil
		m.lastEnqueued = next

		start := time.Now()

		var result userservice.OperationResult
		var dispatchErr error

		m.StateCtx.Call(func() {
			result, dispatchErr = m.dispatchEntry(context.Background(), logEntry)
		})

		if m.Metrics != nil { m.Metrics.ApplyLatency.Observe(time.Since(start).Seconds()) }

		m.lastApplied = next
		if m.Metrics != nil { m.Metrics.LastApplied.Set(float64(m.lastApplied)) }

		if dispatchErr != nil {
			if m.Metrics != nil { m.Metrics.ApplyErrors.WithLabelValues(errorKind(dispatchErr)).Inc() }
			Log.Warn("apply failed at index", next, dispatchErr.Error())
			m.failPending(next, dispatchErr)
			continue
		}

		m.resolvePending(next, result)
	}
}

// nextDrainEntry returns deferredQuery directly when it's the entry being
// retried, so a prior Read() against the log facade is never repeated.
func (m *ServiceManager) nextDrainEntry(next uint64) (*entry.LogEntry, error) {
	if m.deferredQuery != nil && m.deferredQuery.Index == next {
		return m.deferredQuery, nil
	}

	if m.reader.NextIndex() != next {
		return nil, rsmerrors.New(rsmerrors.IndexOutOfBounds, "requested index is not the reader's next index")
	}

	return m.reader.Read()
}

func (m *ServiceManager) retryDrain(target uint64) {
	timer := scheduler.NewPeriodicTimer(m.ServerCtx, m.Config.QueryVersionPollInterval)
	timer.Start(func() {
		timer.Stop()
		m.drain(target)
	})
}

func (m *ServiceManager) failPending(index uint64, err error) {
	if fut := m.takePending(index); fut != nil { fut.Fail(err) }
}

func (m *ServiceManager) resolvePending(index uint64, result userservice.OperationResult) {
	if fut := m.takePending(index); fut != nil { fut.Resolve(result) }
}

func errorKind(err error) string {
	rsmErr, ok := err.(*rsmerrors.Error)
	if ! ok { return "unknown" }
	return rsmErr.Kind.String()
}
