package registry

import "github.com/coldharbor/rsm/pkg/logger"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/userservice"


const NAME = "ServiceRegistry"
var Log = clog.NewCustomLog(NAME)


/*
	ServiceRegistry indexes live services by name and by id, as a plain
	mutex-guarded map rather than sync.Map: service materialization is
	rare next to the per-entry traffic the session registry sees, and the
	registry needs a single invariant (name maps to at most one live
	service) that's easier to hold under one lock than to split across
	two.
*/

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{
		byID: make(map[uint64]*userservice.ServiceEntry),
		byName: make(map[string]*userservice.ServiceEntry),
		constructors: make(map[string]userservice.Constructor),
	}
}

func (r *ServiceRegistry) RegisterType(serviceType string, constructor userservice.Constructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.constructors[serviceType] = constructor
}

func (r *ServiceRegistry) ByName(name string) (*userservice.ServiceEntry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, ok := r.byName[name]
	return entry, ok
}

func (r *ServiceRegistry) ByID(id uint64) (*userservice.ServiceEntry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, ok := r.byID[id]
	return entry, ok
}

func (r *ServiceRegistry) All() []*userservice.ServiceEntry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	all := make([]*userservice.ServiceEntry, 0, len(r.byID))
	for _, entry := range r.byID { all = append(all, entry) }

	return all
}

/*
	MaterializeOrReplace returns the live entry for a name, constructing a
	fresh one (with a freshly assigned ServiceID) if none is live. If a
	prior entry under this name existed and was explicitly replaced (via
	Unregister followed by re-open, or snapshot install), this call assigns
	a new ServiceID — callers are responsible for purging the prior
	service's sessions, since a name reuse is, per the data model, a new
	service identity.
*/

func (r *ServiceRegistry) MaterializeOrReplace(name string, serviceType string) (*userservice.ServiceEntry, bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if entry, ok := r.byName[name]; ok { return entry, false, nil }

	constructor, ok := r.constructors[serviceType]
	if ! ok { return nil, false, rsmerrors.New(rsmerrors.UnknownService, "no constructor registered for service type "+serviceType) }

	instance, constructErr := constructor(name)
	if constructErr != nil { return nil, false, rsmerrors.Wrap(rsmerrors.UnknownService, "failed to materialize service "+name, constructErr) }

	r.nextServiceID++
	entry := &userservice.ServiceEntry{
		ServiceID: r.nextServiceID,
		ServiceName: name,
		Type: serviceType,
		Instance: instance,
		Status: userservice.Active,
	}

	r.byID[entry.ServiceID] = entry
	r.byName[name] = entry

	Log.Info("materialized service", name, "with id", entry.ServiceID)

	return entry, true, nil
}

/*
	Unregister marks a service deleted and removes it from both indices.
	It does not touch the session registry; the caller purges the
	service's sessions there via RemoveByService.
*/

func (r *ServiceRegistry) Unregister(serviceID uint64) (*userservice.ServiceEntry, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, ok := r.byID[serviceID]
	if ! ok { return nil, false }

	entry.Status = userservice.Deleted

	delete(r.byID, serviceID)
	delete(r.byName, entry.ServiceName)

	return entry, true
}

/*
	InstallForSnapshot replaces whatever entry (if any) currently owns
	name with a freshly-constructed entry carrying a new ServiceID,
	returning the prior entry (nil if none) so the caller can purge its
	sessions before handing the new entry its sub-snapshot.
*/

func (r *ServiceRegistry) InstallForSnapshot(name string, serviceType string) (fresh *userservice.ServiceEntry, prior *userservice.ServiceEntry, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	prior, hadPrior := r.byName[name]

	constructor, ok := r.constructors[serviceType]
	if ! ok { return nil, nil, rsmerrors.New(rsmerrors.UnknownService, "no constructor registered for service type "+serviceType) }

	instance, constructErr := constructor(name)
	if constructErr != nil { return nil, nil, rsmerrors.Wrap(rsmerrors.UnknownService, "failed to materialize service "+name, constructErr) }

	r.nextServiceID++
	fresh = &userservice.ServiceEntry{
		ServiceID: r.nextServiceID,
		ServiceName: name,
		Type: serviceType,
		Instance: instance,
		Status: userservice.Active,
	}

	r.byID[fresh.ServiceID] = fresh
	r.byName[name] = fresh

	if hadPrior {
		delete(r.byID, prior.ServiceID)
		return fresh, prior, nil
	}

	return fresh, nil, nil
}
