package servicecontext

import "context"

import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/session"
import "github.com/coldharbor/rsm/pkg/userservice"
import "github.com/coldharbor/rsm/pkg/utils"


//=========================================== Dispatch


/*
	OpenSession assigns SessionId = entry.index, materializes or looks up
	the named service, and hands the new session to the
	service's own open-session hook before registering it — a service that
	rejects the session (e.g. unknown auth) leaves no registry trace.
*/

func (sc *ServiceContext) OpenSession(index uint64, timestamp int64, payload *entry.OpenSessionPayload) (uint64, error) {
	svcEntry, _, materializeErr := sc.Services.MaterializeOrReplace(payload.ServiceName, payload.ServiceType)
	if materializeErr != nil { return 0, materializeErr }

	sess := session.NewSession(index, svcEntry.ServiceID, payload.MemberID, payload.ReadConsistency, payload.Timeout, timestamp)

	if openErr := svcEntry.Instance.OpenSession(sess); openErr != nil { return 0, openErr }

	sc.Sessions.Add(sess)

	return sess.SessionID, nil
}

/*
	KeepAlive walks the parallel (sessionId, commandSequence, eventIndex)
	vectors, refreshing and garbage-collecting each touched session through
	its owning service, then fires completeKeepAlive once per distinct
	service touched, then sweeps expired sessions belonging to deleted
	services. Returns the sessionIds that were successfully refreshed.
*/

func (sc *ServiceContext) KeepAlive(index uint64, timestamp int64, payload *entry.KeepAlivePayload) ([]uint64, error) {
	var succeeded []uint64
	touchedServices := make(map[uint64]struct{})

	for i, sessionID := range payload.SessionIDs {
		sess, ok := sc.Sessions.Get(sessionID)
		if ! ok { continue }

		svcEntry, ok := sc.Services.ByID(sess.ServiceID)
		if ! ok { continue }

		cmdSeq := payload.CommandSequences[i]
		evtIdx := payload.EventIndexes[i]

		if err := svcEntry.Instance.KeepAlive(index, timestamp, sess, cmdSeq, evtIdx); err != nil {
			Log.Warn("keep-alive failed for session", sessionID, err.Error())
			continue
		}

		succeeded = append(succeeded, sessionID)
		touchedServices[sess.ServiceID] = struct{}{}
	}

	for serviceID := range touchedServices {
		if svcEntry, ok := sc.Services.ByID(serviceID); ok {
			if err := svcEntry.Instance.CompleteKeepAlive(index, timestamp); err != nil {
				Log.Warn("completeKeepAlive failed for service", serviceID, err.Error())
			}
		}
	}

	sc.sweepExpired(timestamp)

	return succeeded, nil
}

/*
	sweepExpired removes and expires every session belonging to a deleted
	service that has also timed out relative to timestamp — a session
	whose service is merely busy, not deleted, is never swept here.
*/

func (sc *ServiceContext) sweepExpired(timestamp int64) int {
	expired := utils.Filter(sc.Sessions.All(), func(sess *session.Session) bool {
		svcEntry, ok := sc.Services.ByID(sess.ServiceID)
		if ok && svcEntry.Status != userservice.Deleted { return false }
		return sess.Expired(timestamp)
	})

	for _, sess := range expired { sc.Sessions.Remove(sess.SessionID) }
	swept := len(expired)

	if swept > 0 { Log.Info("keep-alive sweep expired", swept, "sessions") }

	return swept
}

/*
	CloseSession invokes the service's close hook and, when the caller
	marks the session's owning service deleted, unregisters the service
	and purges every session it owns — the purge is what gives a
	subsequent OpenSession under the same name a fresh ServiceId with no
	inherited sessions.
*/

func (sc *ServiceContext) CloseSession(index uint64, timestamp int64, sessionID uint64, deleted bool) error {
	sess, ok := sc.Sessions.Get(sessionID)
	if ! ok { return rsmerrors.New(rsmerrors.UnknownSession, "close session: no such session") }

	svcEntry, ok := sc.Services.ByID(sess.ServiceID)
	if ! ok { return rsmerrors.New(rsmerrors.UnknownService, "close session: no such service") }

	if closeErr := svcEntry.Instance.CloseSession(index, timestamp, sess, deleted); closeErr != nil { return closeErr }

	sc.Sessions.Remove(sessionID)

	if deleted {
		sc.Services.Unregister(svcEntry.ServiceID)
		for _, orphan := range sc.Sessions.RemoveByService(svcEntry.ServiceID) {
			Log.Info("purged orphaned session", orphan.SessionID, "on delete of service", svcEntry.ServiceID)
		}
	}

	return nil
}

/*
	Command dispatches a mutating operation to the owning service.
	Duplicate detection — a sequence already at or below the session's
	watermark — is the service's responsibility (it holds the cached
	per-sequence results); this context only records the load event and
	advances the session's watermark on success.
*/

func (sc *ServiceContext) Command(ctx context.Context, index uint64, timestamp int64, payload *entry.CommandPayload) (userservice.OperationResult, error) {
	sess, ok := sc.Sessions.Get(payload.SessionID)
	if ! ok { return userservice.OperationResult{}, rsmerrors.New(rsmerrors.UnknownSession, "command: no such session") }

	svcEntry, ok := sc.Services.ByID(sess.ServiceID)
	if ! ok { return userservice.OperationResult{}, rsmerrors.New(rsmerrors.UnknownService, "command: no such service") }

	sc.Load.RecordEvent()

	result, execErr := svcEntry.Instance.ExecuteCommand(ctx, index, payload.Sequence, timestamp, sess, payload.Operation)
	if execErr != nil { return userservice.OperationResult{}, execErr }

	sess.AdvanceCommandSequence(payload.Sequence)
	sess.AdvanceLastCompleted(index)

	return result, nil
}

/*
	Query dispatches a read-only operation. Queries never advance a
	session's command sequence and never publish events.
*/

func (sc *ServiceContext) Query(ctx context.Context, index uint64, timestamp int64, payload *entry.QueryPayload) (userservice.OperationResult, error) {
	sess, ok := sc.Sessions.Get(payload.SessionID)
	if ! ok { return userservice.OperationResult{}, rsmerrors.New(rsmerrors.UnknownSession, "query: no such session") }

	svcEntry, ok := sc.Services.ByID(sess.ServiceID)
	if ! ok { return userservice.OperationResult{}, rsmerrors.New(rsmerrors.UnknownService, "query: no such service") }

	return svcEntry.Instance.ExecuteQuery(ctx, index, payload.Sequence, timestamp, sess, payload.Operation)
}

/*
	Metadata answers either every live session (no session id supplied) or
	just those sharing the named session's service.
*/

func (sc *ServiceContext) Metadata(payload *entry.MetadataPayload) ([]MetadataEntry, error) {
	var sessions []*session.Session

	if payload.SessionID == nil {
		sessions = sc.Sessions.All()
	} else {
		sess, ok := sc.Sessions.Get(*payload.SessionID)
		if ! ok { return nil, rsmerrors.New(rsmerrors.UnknownSession, "metadata: no such session") }

		sessions = sc.Sessions.SessionsForService(sess.ServiceID)
	}

	out := make([]MetadataEntry, 0, len(sessions))
	for _, sess := range sessions {
		svcEntry, ok := sc.Services.ByID(sess.ServiceID)
		if ! ok { continue }

		out = append(out, MetadataEntry{ SessionID: sess.SessionID, ServiceName: svcEntry.ServiceName, ServiceType: svcEntry.Type })
	}

	return out, nil
}

/*
	Heartbeat services Initialize and Configuration entries, which affect
	every live service's session timing without any other side effect.
*/

func (sc *ServiceContext) Heartbeat(index uint64, timestamp int64) error {
	for _, svcEntry := range sc.Services.All() {
		if err := svcEntry.Instance.KeepAliveSessions(index, timestamp); err != nil {
			Log.Warn("heartbeat failed for service", svcEntry.ServiceID, err.Error())
		}
	}

	return nil
}
