package manager

import "github.com/coldharbor/rsm/pkg/future"
import "github.com/coldharbor/rsm/pkg/loadmonitor"
import "github.com/coldharbor/rsm/pkg/logfacade"
import "github.com/coldharbor/rsm/pkg/registry"
import "github.com/coldharbor/rsm/pkg/scheduler"
import "github.com/coldharbor/rsm/pkg/servicecontext"
import "github.com/coldharbor/rsm/pkg/session"
import "github.com/coldharbor/rsm/pkg/snapshotstore"
import "github.com/coldharbor/rsm/pkg/userservice"

import "github.com/coldharbor/rsm/pkg/config"
import "github.com/coldharbor/rsm/pkg/metrics"


//=========================================== Construction


func New(cfg *config.Config, log logfacade.LogFacade, snapshots snapshotstore.SnapshotStore, metricsInst *metrics.Metrics) *ServiceManager {
	sessions := session.NewSessionRegistry()
	services := registry.NewServiceRegistry()
	load := loadmonitor.New(cfg.LoadMonitorWindow, cfg.LoadMonitorThreshold)

	return &ServiceManager{
		Config: cfg,
		LogFacade: log,
		Snapshots: snapshots,
		Sessions: sessions,
		Services: services,
		LoadMon: load,
		ServiceCtx: servicecontext.New(sessions, services, load),
		Metrics: metricsInst,

		ServerCtx: scheduler.NewContext("server"),
		StateCtx: scheduler.NewContext("state"),

		pending: make(map[uint64]*future.Future[userservice.OperationResult]),
	}
}

// RegisterServiceType exposes the registry's constructor table so callers
// wire their user service implementations before traffic starts.
func (m *ServiceManager) RegisterServiceType(serviceType string, constructor userservice.Constructor) {
	m.Services.RegisterType(serviceType, constructor)
}

/*
	Start rebuilds lastEnqueued/lastApplied/lastCompacted from the log
	facade's first retained index — the only persisted fact the core
	itself is responsible for reconstructing on restart — and arms the
	snapshot/compaction timer.
*/

func (m *ServiceManager) Start() error {
	first, firstErr := m.LogFacade.FirstIndex()
	if firstErr != nil { return firstErr }

	if first == 0 { first = 1 }

	m.lastEnqueued = first - 1
	m.lastApplied = first - 1
	m.lastCompacted = first - 1

	m.reader = m.LogFacade.Reader()

	m.snapshotTimer = scheduler.NewPeriodicTimer(m.ServerCtx, m.Config.SnapshotInterval)
	m.snapshotTimer.Start(func() { m.runSnapshotCycle(false) })

	Log.Info("service manager started, lastApplied", m.lastApplied)

	return nil
}

func (m *ServiceManager) Stop() {
	if m.snapshotTimer != nil { m.snapshotTimer.Stop() }
	m.ServerCtx.Stop()
	m.StateCtx.Stop()
}
