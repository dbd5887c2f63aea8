package snapshotstore

import "io"


//=========================================== Snapshot Store


/*
	Handle identifies a snapshot without exposing its bytes; the manager
	holds only a reference to the current one, never its raw body.
*/

type Handle struct {
	Index uint64
	Timestamp int64
}

/*
	Sink is the byte-stream destination for a snapshot in progress. The
	manager writes length-delimited per-service records to it (see
	pkg/snapshotstream) and never interprets what SnapshotStore does with
	the bytes underneath.
*/

type Sink interface {
	io.Writer
	Handle() Handle
}

/*
	SnapshotStore creates new snapshots at an index and returns a sink,
	and separately answers what the current snapshot is for install/skip
	decisions.
*/

type SnapshotStore interface {
	New(index uint64, timestamp int64) (Sink, error)
	Current() (Handle, bool)

	// Finalize commits a completed sink as the current snapshot.
	Finalize(sink Sink) error

	// Abandon discards an in-progress sink without making it current,
	// used when writing the snapshot body fails.
	Abandon(sink Sink) error

	Open(handle Handle) (io.ReadCloser, error)
}
