package manager

import "context"

import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/snapshotstore"
import "github.com/coldharbor/rsm/pkg/userservice"


//=========================================== Dispatch


/*
	dispatchEntry runs on the state context (via StateCtx.Call) and
	applies the snapshot skip/install/dispatch rules for a single log
	entry. By the time a Query reaches here, drain has already confirmed
	lastApplied caught up to its client-supplied version, so dispatchEntry
	just routes it straight to ServiceCtx.Query, bypassing the snapshot
	skip/install pipeline entirely — it's read-only and needs no log
	positioning against a snapshot boundary. Every other kind first
	consults the current snapshot: already-covered entries are skipped as
	a no-op success, and an entry immediately following the snapshot's
	index triggers an install before the entry itself runs.
*/

func (m *ServiceManager) dispatchEntry(ctx context.Context, e *entry.LogEntry) (userservice.OperationResult, error) {
	if e.Kind == entry.Query {
		return m.ServiceCtx.Query(ctx, e.Index, e.Timestamp, e.Query)
	}

	if handle, ok := m.Snapshots.Current(); ok {
		if handle.Index >= e.Index {
			return userservice.OperationResult{}, nil
		}

		if handle.Index == e.Index-1 {
			if installErr := m.installCurrentSnapshot(handle); installErr != nil {
				return userservice.OperationResult{}, installErr
			}
		}
	}

	switch e.Kind {
	case entry.Command:
		return m.ServiceCtx.Command(ctx, e.Index, e.Timestamp, e.Command)

	case entry.OpenSession:
		sessionID, err := m.ServiceCtx.OpenSession(e.Index, e.Timestamp, e.OpenSession)
		return userservice.OperationResult{ Value: sessionID }, err

	case entry.KeepAlive:
		succeeded, err := m.ServiceCtx.KeepAlive(e.Index, e.Timestamp, e.KeepAlive)
		return userservice.OperationResult{ Value: succeeded }, err

	case entry.CloseSession:
		err := m.ServiceCtx.CloseSession(e.Index, e.Timestamp, e.CloseSession.SessionID, e.CloseSession.Deleted)
		return userservice.OperationResult{}, err

	case entry.Metadata:
		entries, err := m.ServiceCtx.Metadata(e.Metadata)
		return userservice.OperationResult{ Value: entries }, err

	case entry.Initialize, entry.Configuration:
		err := m.ServiceCtx.Heartbeat(e.Index, e.Timestamp)
		return userservice.OperationResult{}, err

	default:
		return userservice.OperationResult{}, rsmerrors.New(rsmerrors.ProtocolError, "unrecognized log entry kind")
	}
}

func (m *ServiceManager) installCurrentSnapshot(handle snapshotstore.Handle) error {
	reader, openErr := m.Snapshots.Open(handle)
	if openErr != nil { return rsmerrors.Wrap(rsmerrors.SnapshotIOError, "failed to open current snapshot for install", openErr) }
	defer reader.Close()

	if installErr := m.ServiceCtx.InstallSnapshot(reader); installErr != nil {
		return rsmerrors.Wrap(rsmerrors.SnapshotIOError, "failed to install snapshot", installErr)
	}

	return nil
}
