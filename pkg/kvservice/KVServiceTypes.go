package kvservice

import "sync"

import "github.com/coldharbor/rsm/pkg/userservice"


//=========================================== KV Service


/*
	KVService is a reference implementation of userservice.Service: a
	plain in-memory key/value store with a per-collection shape
	simplified down to a single map rather than a bbolt bucket — this is
	the demo/test service, not the persistence layer; a real
	deployment's user service is an external collaborator.
*/

type KVService struct {
	mutex sync.RWMutex

	name string
	store map[string]string

	// cachedResults holds the result of the highest sequence processed
	// per session, so a retried command (sequence <= watermark) returns
	// the same value rather than re-running the mutation.
	cachedResults map[uint64]cachedCommand
}

type cachedCommand struct {
	sequence uint64
	value any
}

// Action is the operation payload a Command/Query entry carries for this service.
type Action struct {
	Verb string // "put", "get", "delete"
	Key string
	Value string
}

func New(name string) *KVService {
	return &KVService{
		name: name,
		store: make(map[string]string),
		cachedResults: make(map[uint64]cachedCommand),
	}
}

// Constructor adapts New to userservice.Constructor's signature for
// registration with a ServiceRegistry.
func Constructor(name string) (userservice.Service, error) {
	return New(name), nil
}
