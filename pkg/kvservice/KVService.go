package kvservice

import "context"
import "encoding/json"
import "fmt"

import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/rsmerrors"
import "github.com/coldharbor/rsm/pkg/session"
import "github.com/coldharbor/rsm/pkg/userservice"


//=========================================== Service Contract


func (kv *KVService) OpenSession(sess *session.Session) error {
	return nil
}

func (kv *KVService) KeepAlive(index uint64, timestamp int64, sess *session.Session, commandSequence uint64, eventIndex uint64) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	sess.AdvanceCommandSequence(commandSequence)
	sess.AdvanceEventIndex(eventIndex)
	sess.Refresh(timestamp)

	for seq := range kv.cachedResults {
		if seq <= commandSequence { delete(kv.cachedResults, seq) }
	}

	return nil
}

func (kv *KVService) CompleteKeepAlive(index uint64, timestamp int64) error {
	return nil
}

func (kv *KVService) CloseSession(index uint64, timestamp int64, sess *session.Session, expired bool) error {
	return nil
}

func (kv *KVService) KeepAliveSessions(index uint64, timestamp int64) error {
	return nil
}

/*
	ExecuteCommand applies a mutating Action deterministically and caches
	its result under the sequence number so a replayed duplicate returns
	the identical value without re-running the mutation. A duplicate
	(sequence <= session.CommandSequence) whose cached result KeepAlive
	has already purged returns an empty result, also without re-running
	the mutation. pkg/servicecontext does not check the sequence itself
	before calling in; this is the only place the duplicate short-circuit
	happens.
*/

func (kv *KVService) ExecuteCommand(ctx context.Context, index uint64, sequence uint64, timestamp int64, sess *session.Session, op entry.Operation) (userservice.OperationResult, error) {
	if cached, ok := kv.cachedResults[sequence]; ok {
		return userservice.OperationResult{ Value: cached.value }, nil
	}

	if sequence > 0 && sequence <= sess.CommandSequence {
		return userservice.OperationResult{}, nil
	}

	action, ok := op.(Action)
	if ! ok { return userservice.OperationResult{}, rsmerrors.New(rsmerrors.ProtocolError, "kvservice: command payload is not a kvservice.Action") }

	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	var value any

	switch action.Verb {
	case "put":
		kv.store[action.Key] = action.Value
		value = action.Value

	case "delete":
		delete(kv.store, action.Key)
		value = nil

	default:
		return userservice.OperationResult{}, rsmerrors.New(rsmerrors.ProtocolError, fmt.Sprintf("kvservice: unknown command verb %q", action.Verb))
	}

	kv.cachedResults[sequence] = cachedCommand{ sequence: sequence, value: value }

	return userservice.OperationResult{
		Value: value,
		Events: []userservice.Event{ { Index: index, Payload: action } },
	}, nil
}

func (kv *KVService) ExecuteQuery(ctx context.Context, index uint64, sequence uint64, timestamp int64, sess *session.Session, op entry.Operation) (userservice.OperationResult, error) {
	action, ok := op.(Action)
	if ! ok { return userservice.OperationResult{}, rsmerrors.New(rsmerrors.ProtocolError, "kvservice: query payload is not a kvservice.Action") }

	if action.Verb != "get" { return userservice.OperationResult{}, rsmerrors.New(rsmerrors.ProtocolError, fmt.Sprintf("kvservice: unknown query verb %q", action.Verb)) }

	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	value, found := kv.store[action.Key]
	if ! found { return userservice.OperationResult{}, nil }

	return userservice.OperationResult{ Value: value }, nil
}

type snapshotBody struct {
	Store map[string]string `json:"store"`
}

func (kv *KVService) TakeSnapshot() ([]byte, error) {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	return json.Marshal(snapshotBody{ Store: kv.store })
}

func (kv *KVService) InstallSnapshot(data []byte) error {
	var body snapshotBody
	if err := json.Unmarshal(data, &body); err != nil { return err }

	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	kv.store = body.Store
	if kv.store == nil { kv.store = make(map[string]string) }
	kv.cachedResults = make(map[uint64]cachedCommand)

	return nil
}
