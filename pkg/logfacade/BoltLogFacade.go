package logfacade

import "bytes"
import "encoding/binary"
import "path/filepath"

import bolt "go.etcd.io/bbolt"

import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/logger"
import "github.com/coldharbor/rsm/pkg/rsmerrors"


//=========================================== Bolt-backed Log Facade


const NAME = "LogFacade"
var Log = clog.NewCustomLog(NAME)

var logBucket = []byte("log")

/*
	BoltLogFacade is the default LogFacade implementation: a single
	bbolt bucket keyed by big-endian uint64 index. Real deployments plug
	in whatever segment store backs the consensus layer's actual
	replicated log; only the log's compaction interface is used here,
	so this facade only ever appends in tests, never in the core's own
	code path.
*/

type BoltLogFacade struct {
	db *bolt.DB
	compactableFraction float64 // fraction of the applied span (first … lastApplied) that CompactableIndex keeps uncompacted
}

func NewBoltLogFacade(dataDir string, compactableFraction float64) (*BoltLogFacade, error) {
	db, openErr := bolt.Open(filepath.Join(dataDir, "log.db"), 0600, nil)
	if openErr != nil { return nil, openErr }

	txErr := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(logBucket)
		return createErr
	})
	if txErr != nil { return nil, txErr }

	return &BoltLogFacade{ db: db, compactableFraction: compactableFraction }, nil
}

func indexKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)
	return key
}

func keyIndex(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

// Append is a test/bootstrap helper — production deployments append
// through the consensus layer's own log, never through this facade.
func (f *BoltLogFacade) Append(e *entry.LogEntry) error {
	value, encodeErr := entry.ToBytes(e)
	if encodeErr != nil { return encodeErr }

	return f.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(logBucket).Put(indexKey(e.Index), value)
	})
}

func (f *BoltLogFacade) FirstIndex() (uint64, error) {
	var first uint64

	viewErr := f.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(logBucket).Cursor()
		key, _ := cursor.First()
		if key != nil { first = keyIndex(key) }
		return nil
	})

	return first, viewErr
}

func (f *BoltLogFacade) IsCompactable(lastApplied uint64) bool {
	first, err := f.FirstIndex()
	if err != nil || lastApplied <= first { return false }

	return lastApplied-first > 0
}

/*
	CompactableIndex reports the highest index it is worth compacting up
	to: everything at or below lastApplied that isn't within the retained
	fraction of the log the consensus layer still wants for
	fast-follower catch-up.
*/

func (f *BoltLogFacade) CompactableIndex(lastApplied uint64) uint64 {
	first, err := f.FirstIndex()
	if err != nil || lastApplied <= first { return 0 }

	retain := uint64(float64(lastApplied-first) * f.compactableFraction)
	if retain >= lastApplied { return 0 }

	return lastApplied - retain
}

func (f *BoltLogFacade) Compact(index uint64) error {
	return f.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(logBucket)
		cursor := bucket.Cursor()

		endKey := indexKey(index)

		for key, _ := cursor.First(); key != nil && bytes.Compare(key, endKey) <= 0; key, _ = cursor.Next() {
			if delErr := bucket.Delete(key); delErr != nil { return delErr }
		}

		return nil
	})
}

func (f *BoltLogFacade) Reader() Reader {
	first, _ := f.FirstIndex()
	return &boltReader{ db: f.db, next: first }
}

func (f *BoltLogFacade) Close() error {
	return f.db.Close()
}

type boltReader struct {
	db *bolt.DB
	next uint64
}

func (r *boltReader) NextIndex() uint64 { return r.next }

func (r *boltReader) Read() (*entry.LogEntry, error) {
	var value []byte

	viewErr := r.db.View(func(tx *bolt.Tx) error {
		value = tx.Bucket(logBucket).Get(indexKey(r.next))
		return nil
	})
	if viewErr != nil { return nil, viewErr }

	if value == nil {
		return nil, rsmerrors.New(rsmerrors.IndexOutOfBounds, "no log entry at requested index")
	}

	decoded, decodeErr := entry.FromBytes(value)
	if decodeErr != nil { return nil, decodeErr }

	r.next++

	return decoded, nil
}
