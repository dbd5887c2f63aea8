package snapshotstore

import "bytes"
import "encoding/binary"
import "errors"
import "io"
import "path/filepath"

import bolt "go.etcd.io/bbolt"

import "github.com/coldharbor/rsm/pkg/logger"


//=========================================== Bolt-backed Snapshot Store


const NAME = "SnapshotStore"
var Log = clog.NewCustomLog(NAME)

var metaBucket = []byte("snapshot_meta")
var bodyBucket = []byte("snapshot_body")
var currentKey = []byte("current")

/*
	BoltSnapshotStore is the default SnapshotStore: snapshot bodies in one
	bbolt bucket keyed by encoded handle, and a pointer to the current
	handle in a second metadata bucket. A snapshot is buffered fully in
	memory while being written, building the whole byte image before
	persisting it as one bbolt transaction on Finalize.
*/

type BoltSnapshotStore struct {
	db *bolt.DB
}

func NewBoltSnapshotStore(dataDir string) (*BoltSnapshotStore, error) {
	db, openErr := bolt.Open(filepath.Join(dataDir, "snapshot.db"), 0600, nil)
	if openErr != nil { return nil, openErr }

	txErr := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(metaBucket); err != nil { return err }
		if _, err := tx.CreateBucketIfNotExists(bodyBucket); err != nil { return err }
		return nil
	})
	if txErr != nil { return nil, txErr }

	return &BoltSnapshotStore{ db: db }, nil
}

type boltSink struct {
	handle Handle
	buf bytes.Buffer
}

func (s *boltSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *boltSink) Handle() Handle { return s.handle }

func (store *BoltSnapshotStore) New(index uint64, timestamp int64) (Sink, error) {
	return &boltSink{ handle: Handle{ Index: index, Timestamp: timestamp } }, nil
}

func encodeHandle(h Handle) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], h.Index)
	binary.BigEndian.PutUint64(buf[8:16], uint64(h.Timestamp))
	return buf
}

func decodeHandle(data []byte) Handle {
	return Handle{
		Index: binary.BigEndian.Uint64(data[0:8]),
		Timestamp: int64(binary.BigEndian.Uint64(data[8:16])),
	}
}

func (store *BoltSnapshotStore) Current() (Handle, bool) {
	var handle Handle
	found := false

	viewErr := store.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(metaBucket).Get(currentKey)
		if val != nil {
			handle = decodeHandle(val)
			found = true
		}
		return nil
	})
	if viewErr != nil { return Handle{}, false }

	return handle, found
}

func (store *BoltSnapshotStore) Finalize(sink Sink) error {
	bs, ok := sink.(*boltSink)
	if ! ok { return errors.New("snapshotstore: foreign sink") }

	return store.db.Update(func(tx *bolt.Tx) error {
		bodyKey := encodeHandle(bs.handle)

		if err := tx.Bucket(bodyBucket).Put(bodyKey, bs.buf.Bytes()); err != nil { return err }
		if err := tx.Bucket(metaBucket).Put(currentKey, bodyKey); err != nil { return err }

		return nil
	})
}

func (store *BoltSnapshotStore) Abandon(sink Sink) error {
	Log.Warn("abandoning incomplete snapshot at index", sink.Handle().Index)
	return nil
}

func (store *BoltSnapshotStore) Open(handle Handle) (io.ReadCloser, error) {
	var data []byte

	viewErr := store.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bodyBucket).Get(encodeHandle(handle))
		if val == nil { return errors.New("snapshotstore: no body for handle") }

		data = append([]byte(nil), val...)
		return nil
	})
	if viewErr != nil { return nil, viewErr }

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (store *BoltSnapshotStore) Close() error {
	return store.db.Close()
}
