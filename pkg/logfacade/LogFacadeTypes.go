package logfacade

import "github.com/coldharbor/rsm/pkg/entry"


//=========================================== Log Facade


/*
	LogFacade is the narrow slice of the Raft log the core is allowed to
	touch: compaction and positioned reads. Everything else — append,
	replication, segment storage — belongs to the consensus layer and is
	an external collaborator.
*/

type LogFacade interface {
	// FirstIndex is the lowest index still retained, used to rebuild
	// lastEnqueued/lastCompacted on restart.
	FirstIndex() (uint64, error)

	IsCompactable(lastApplied uint64) bool
	CompactableIndex(lastApplied uint64) uint64
	Compact(index uint64) error

	// Reader returns a fresh positioned reader over the log.
	Reader() Reader
}

/*
	Reader walks the log strictly in order. NextIndex reports which index
	the reader is positioned to produce next; Read consumes it. The
	manager only ever reads the index equal to NextIndex(), failing the
	pending promise with IndexOutOfBounds otherwise (including an index
	that was already applied).
*/

type Reader interface {
	NextIndex() uint64
	Read() (*entry.LogEntry, error)
}
