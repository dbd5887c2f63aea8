package registry

import "sync"

import "github.com/coldharbor/rsm/pkg/userservice"


type ServiceRegistry struct {
	mutex sync.RWMutex

	byID map[uint64]*userservice.ServiceEntry
	byName map[string]*userservice.ServiceEntry

	constructors map[string]userservice.Constructor

	nextServiceID uint64
}
