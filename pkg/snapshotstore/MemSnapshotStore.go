package snapshotstore

import "bytes"
import "errors"
import "io"
import "sync"


//=========================================== In-memory Snapshot Store


/*
	MemSnapshotStore is a test double satisfying SnapshotStore without
	touching disk, mirroring logfacade.MemLogFacade's style.
*/

type MemSnapshotStore struct {
	mutex sync.Mutex

	current Handle
	hasCurrent bool
	bodies map[uint64][]byte
}

func NewMemSnapshotStore() *MemSnapshotStore {
	return &MemSnapshotStore{ bodies: make(map[uint64][]byte) }
}

type memSink struct {
	handle Handle
	buf bytes.Buffer
}

func (s *memSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *memSink) Handle() Handle { return s.handle }

func (store *MemSnapshotStore) New(index uint64, timestamp int64) (Sink, error) {
	return &memSink{ handle: Handle{ Index: index, Timestamp: timestamp } }, nil
}

func (store *MemSnapshotStore) Current() (Handle, bool) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	return store.current, store.hasCurrent
}

func (store *MemSnapshotStore) Finalize(sink Sink) error {
	ms, ok := sink.(*memSink)
	if ! ok { return errors.New("snapshotstore: foreign sink") }

	store.mutex.Lock()
	defer store.mutex.Unlock()

	store.bodies[ms.handle.Index] = append([]byte(nil), ms.buf.Bytes()...)
	store.current = ms.handle
	store.hasCurrent = true

	return nil
}

func (store *MemSnapshotStore) Abandon(sink Sink) error {
	return nil
}

func (store *MemSnapshotStore) Open(handle Handle) (io.ReadCloser, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	data, ok := store.bodies[handle.Index]
	if ! ok { return nil, errors.New("snapshotstore: no body for handle") }

	return io.NopCloser(bytes.NewReader(data)), nil
}
