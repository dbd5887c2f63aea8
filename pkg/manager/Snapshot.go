package manager

import "time"

import "github.com/google/uuid"

import "github.com/coldharbor/rsm/pkg/future"
import "github.com/coldharbor/rsm/pkg/pressure"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/scheduler"


//=========================================== Snapshot + Compaction Scheduler


/*
	Compact forces a compaction cycle outside the regular timer, returning
	a future that resolves once the cycle finishes. It runs the same
	routine the timer does, with force=true so the high-load skip gate
	never applies.
*/

func (m *ServiceManager) Compact() *future.OrderedFuture {
	resultCh := make(chan *future.OrderedFuture, 1)

	m.ServerCtx.Submit(func() {
		resultCh <- m.runSnapshotCycle(true)
	})

	return <-resultCh
}

/*
	runSnapshotCycle checks whether a snapshot+compaction cycle should
	run, called from a job already running on the server context (the
	timer fires jobs there, and Compact submits one explicitly). The
	periodic timer that normally drives this re-arms itself
	unconditionally on its own interval, so there's nothing for this
	routine to reschedule when it declines to act; the re-invocation
	after a completed compaction simply runs the same decision again
	immediately, with force=false, rather than waiting for the next tick.
*/

func (m *ServiceManager) runSnapshotCycle(force bool) *future.OrderedFuture {
	if m.compactionFuture != nil && ! m.compactionFuture.Completed() {
		return m.compactionFuture
	}

	lastApplied := m.lastApplied

	if ! force {
		if ! m.LogFacade.IsCompactable(lastApplied) { return nil }
		if m.LogFacade.CompactableIndex(lastApplied) <= m.lastCompacted { return nil }
	}

	diskPressure := false
	memPressure := false

	if diskStats, err := pressure.CalculateDiskStats(m.Config.DataDir); err == nil {
		diskPressure = pressure.DiskPressure(diskStats, m.Config.MaxSegmentSize, m.Config.FreeDiskBuffer)
		if m.Metrics != nil { m.Metrics.DiskPressure.Set(boolToFloat(diskPressure)) }
	} else {
		Log.Warn("failed to read disk stats", err.Error())
	}

	if memStats, err := pressure.CalculateMemStats(); err == nil {
		memPressure = pressure.MemoryPressure(m.Config.StorageKind, memStats, m.Config.FreeMemoryBuffer)
	} else {
		Log.Warn("failed to read mem stats", err.Error())
	}

	highLoad := m.LoadMon.IsUnderHighLoad()
	if m.Metrics != nil { m.Metrics.LoadMonitorRate.Set(m.LoadMon.Rate()) }

	if ! force && ! memPressure && m.Config.DynamicCompactionEnabled && ! diskPressure && highLoad {
		return nil
	}

	m.lastCompacted = lastApplied

	correlationID := uuid.NewString()
	ordered := future.NewOrdered()
	m.compactionFuture = ordered

	snapshotIndex := lastApplied

	Log.Info("starting snapshot", correlationID, "at index", snapshotIndex)
	if m.Metrics != nil { m.Metrics.SnapshotsStarted.Inc() }

	var writeErr error

	m.StateCtx.Call(func() {
		writeErr = m.writeSnapshot(snapshotIndex)
	})

	if writeErr != nil {
		Log.Error("snapshot write failed", correlationID, writeErr.Error())
		ordered.Complete(writeErr)
		return ordered
	}

	go m.pollSnapshotCompletion(snapshotIndex, correlationID, ordered)

	return ordered
}

func boolToFloat(b bool) float64 {
	if b { return 1 }
	return 0
}

func (m *ServiceManager) writeSnapshot(index uint64) error {
	sink, newErr := m.Snapshots.New(index, nowMillis())
	if newErr != nil { return rsmerrors.Wrap(rsmerrors.SnapshotIOError, "failed to create snapshot sink", newErr) }

	if writeErr := m.ServiceCtx.TakeSnapshot(sink); writeErr != nil {
		if abandonErr := m.Snapshots.Abandon(sink); abandonErr != nil { Log.Warn("failed to abandon sink after write error", abandonErr.Error()) }
		return rsmerrors.Wrap(rsmerrors.SnapshotIOError, "failed to write snapshot body", writeErr)
	}

	if finalizeErr := m.Snapshots.Finalize(sink); finalizeErr != nil {
		return rsmerrors.Wrap(rsmerrors.SnapshotIOError, "failed to finalize snapshot sink", finalizeErr)
	}

	return nil
}

/*
	pollSnapshotCompletion waits on CompletionCheckInterval rounds, state
	context per round, for every session's lastCompleted to catch up to
	snapshotIndex, bounded by SnapshotCompletionTimeout so it never polls
	forever if a session never acknowledges.
*/

func (m *ServiceManager) pollSnapshotCompletion(snapshotIndex uint64, correlationID string, ordered *future.OrderedFuture) {
	var elapsed time.Duration
	ticker := scheduler.NewPeriodicTimer(m.StateCtx, m.Config.CompletionCheckInterval)

	doneCh := make(chan struct{})

	ticker.Start(func() {
		caughtUp := m.sessionsCaughtUpTo(snapshotIndex)

		elapsed += m.Config.CompletionCheckInterval

		if caughtUp {
			m.finalizeSnapshotCompletion(snapshotIndex, correlationID, ordered)
			close(doneCh)
			return
		}

		if elapsed >= m.Config.SnapshotCompletionTimeout {
			Log.Warn("abandoning snapshot", correlationID, "after completion timeout")
			if m.Metrics != nil { m.Metrics.SnapshotsAbandoned.Inc() }
			ordered.Complete(rsmerrors.New(rsmerrors.SnapshotIOError, "snapshot completion timed out"))
			close(doneCh)
		}
	})

	<-doneCh
	ticker.Stop()
}

func (m *ServiceManager) sessionsCaughtUpTo(snapshotIndex uint64) bool {
	for _, sess := range m.Sessions.All() {
		if sess.LastCompleted < snapshotIndex { return false }
	}

	return true
}

/*
	finalizeSnapshotCompletion compacts immediately unless under high
	load with no disk pressure present, in which case compaction is
	delayed by a jittered interval to desynchronize peers.
*/

func (m *ServiceManager) finalizeSnapshotCompletion(snapshotIndex uint64, correlationID string, ordered *future.OrderedFuture) {
	if m.Metrics != nil { m.Metrics.SnapshotsFinalized.Inc() }

	highLoad := m.LoadMon.IsUnderHighLoad()

	diskPressure := false
	if diskStats, err := pressure.CalculateDiskStats(m.Config.DataDir); err == nil {
		diskPressure = pressure.DiskPressure(diskStats, m.Config.MaxSegmentSize, m.Config.FreeDiskBuffer)
	}

	runCompaction := func() {
		m.ServerCtx.Submit(func() {
			m.compact(snapshotIndex, correlationID, ordered)
		})
	}

	if ! highLoad || diskPressure {
		runCompaction()
		return
	}

	delay := scheduler.Jittered(m.Config.CompactionDesyncDelay)
	timer := scheduler.NewPeriodicTimer(m.ServerCtx, delay)
	timer.Start(func() {
		timer.Stop()
		runCompaction()
	})
}

/*
	compact calls log.compact(snapshotIndex) and unconditionally resolves
	and clears the compaction future — a compaction error is logged, not
	propagated as a failure, so callers always unblock — then re-invokes
	the snapshot routine non-recursively.
*/

func (m *ServiceManager) compact(snapshotIndex uint64, correlationID string, ordered *future.OrderedFuture) {
	if compactErr := m.LogFacade.Compact(snapshotIndex); compactErr != nil {
		Log.Error("compaction failed", correlationID, compactErr.Error())
		ordered.Complete(rsmerrors.Wrap(rsmerrors.CompactionError, "log compaction failed", compactErr))
	} else {
		if m.Metrics != nil { m.Metrics.CompactionsRun.Inc() }
		Log.Info("compaction complete", correlationID, "at index", snapshotIndex)
		ordered.Complete(nil)
	}

	m.compactionFuture = nil

	m.runSnapshotCycle(false)
}
