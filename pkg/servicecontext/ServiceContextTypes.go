package servicecontext

import "github.com/coldharbor/rsm/pkg/logger"
import "github.com/coldharbor/rsm/pkg/loadmonitor"
import "github.com/coldharbor/rsm/pkg/registry"
import "github.com/coldharbor/rsm/pkg/session"


//=========================================== Service Context


const NAME = "ServiceContext"
var Log = clog.NewCustomLog(NAME)

/*
	ServiceContext is the per-service execution envelope: it owns no
	service instances itself (those belong to the ServiceRegistry) but
	is the single place every entry kind is dispatched
	through on the state context. It borrows sessions and services by id
	through their registries rather than holding references, per the
	registry-as-owner design note.
*/

type ServiceContext struct {
	Sessions *session.SessionRegistry
	Services *registry.ServiceRegistry
	Load *loadmonitor.LoadMonitor
}

func New(sessions *session.SessionRegistry, services *registry.ServiceRegistry, load *loadmonitor.LoadMonitor) *ServiceContext {
	return &ServiceContext{ Sessions: sessions, Services: services, Load: load }
}

// MetadataEntry is one row of a Metadata query's result set.
type MetadataEntry struct {
	SessionID uint64
	ServiceName string
	ServiceType string
}
