package userservice

import "context"

import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/session"


//=========================================== User Service Contract


/*
	OperationResult is what a user service returns for a Command or Query.
	Events is opaque per-session output the caller is expected to push to
	its client as the session's watermark advances; the core never
	inspects its contents.
*/

type OperationResult struct {
	Value any
	Events []Event
}

type Event struct {
	Index uint64
	Payload any
}

/*
	Service is the interface a user-provided deterministic state machine
	must implement. The core calls these methods only on the state
	context, never concurrently with each other for the same service.
*/

type Service interface {
	OpenSession(sess *session.Session) error
	KeepAlive(index uint64, timestamp int64, sess *session.Session, commandSequence uint64, eventIndex uint64) error
	CompleteKeepAlive(index uint64, timestamp int64) error
	CloseSession(index uint64, timestamp int64, sess *session.Session, expired bool) error
	KeepAliveSessions(index uint64, timestamp int64) error

	ExecuteCommand(ctx context.Context, index uint64, sequence uint64, timestamp int64, sess *session.Session, op entry.Operation) (OperationResult, error)
	ExecuteQuery(ctx context.Context, index uint64, sequence uint64, timestamp int64, sess *session.Session, op entry.Operation) (OperationResult, error)

	TakeSnapshot() ([]byte, error)
	InstallSnapshot(data []byte) error
}

/*
	Constructor materializes a new Service instance for a service type
	name. Registered per type by the caller that owns the service registry
	(the actual user service implementations are out of scope for this core).
*/

type Constructor func(serviceName string) (Service, error)

type Status int

const (
	Active Status = iota
	Deleted
)

/*
	ServiceEntry is the manager's bookkeeping wrapper around a live Service
	instance: identity plus lifecycle flags, never the authority for the
	instance's own state.
*/

type ServiceEntry struct {
	ServiceID uint64
	ServiceName string
	Type string
	Instance Service
	Status Status
}
