package manager

import "sync"
import "time"

import "github.com/coldharbor/rsm/pkg/config"
import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/future"
import "github.com/coldharbor/rsm/pkg/loadmonitor"
import "github.com/coldharbor/rsm/pkg/logfacade"
import "github.com/coldharbor/rsm/pkg/logger"
import "github.com/coldharbor/rsm/pkg/metrics"
import "github.com/coldharbor/rsm/pkg/registry"
import "github.com/coldharbor/rsm/pkg/scheduler"
import "github.com/coldharbor/rsm/pkg/servicecontext"
import "github.com/coldharbor/rsm/pkg/session"
import "github.com/coldharbor/rsm/pkg/snapshotstore"
import "github.com/coldharbor/rsm/pkg/userservice"


//=========================================== Service Manager


const NAME = "ServiceManager"
var Log = clog.NewCustomLog(NAME)

/*
	ServiceManager is the orchestrator: it owns the committed-log reader,
	the index-to-promise map, and the compaction future, and drives
	application plus the snapshot/compaction scheduler.
	Everything it owns is mutated only from within jobs submitted to
	ServerCtx or StateCtx, per the two-context concurrency model — the
	struct fields below are never touched from an arbitrary caller
	goroutine directly, with the single exception of registering a pending
	promise in Apply, which is why pendingMutex exists at all.
*/

type ServiceManager struct {
	Config *config.Config

	LogFacade logfacade.LogFacade
	Snapshots snapshotstore.SnapshotStore
	Sessions *session.SessionRegistry
	Services *registry.ServiceRegistry
	LoadMon *loadmonitor.LoadMonitor
	ServiceCtx *servicecontext.ServiceContext
	Metrics *metrics.Metrics

	ServerCtx *scheduler.Context
	StateCtx *scheduler.Context

	reader logfacade.Reader

	lastEnqueued uint64
	lastApplied uint64
	lastCompacted uint64

	pendingMutex sync.Mutex // guards the map only against Apply's reservation path; drain itself always runs on ServerCtx
	pending map[uint64]*future.Future[userservice.OperationResult]

	compactionFuture *future.OrderedFuture
	snapshotTimer *scheduler.PeriodicTimer

	// deferredQuery holds a Query entry drain has read but not yet applied
	// because lastApplied hasn't reached its client-supplied version; kept
	// here so a retry doesn't re-read it from the log facade.
	deferredQuery *entry.LogEntry
	deferredQuerySince time.Time
}
