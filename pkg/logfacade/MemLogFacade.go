package logfacade

import "sync"

import "github.com/coldharbor/rsm/pkg/entry"
import "github.com/coldharbor/rsm/pkg/rsmerrors"


//=========================================== In-memory Log Facade


/*
	MemLogFacade is a test double satisfying LogFacade without touching
	disk, used by ServiceManager's unit tests in place of a bbolt-backed
	facade against a temp dir — here there is nothing to clean up at all.
*/

type MemLogFacade struct {
	mutex sync.Mutex

	first uint64
	entries map[uint64]*entry.LogEntry
	compactableFraction float64
}

func NewMemLogFacade(compactableFraction float64) *MemLogFacade {
	return &MemLogFacade{
		first: 1,
		entries: make(map[uint64]*entry.LogEntry),
		compactableFraction: compactableFraction,
	}
}

func (f *MemLogFacade) Append(e *entry.LogEntry) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.entries[e.Index] = e
}

func (f *MemLogFacade) FirstIndex() (uint64, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.first, nil
}

func (f *MemLogFacade) IsCompactable(lastApplied uint64) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return lastApplied > f.first
}

func (f *MemLogFacade) CompactableIndex(lastApplied uint64) uint64 {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if lastApplied <= f.first { return 0 }

	retain := uint64(float64(lastApplied-f.first) * f.compactableFraction)
	if retain >= lastApplied { return 0 }

	return lastApplied - retain
}

func (f *MemLogFacade) Compact(index uint64) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for idx := range f.entries {
		if idx <= index { delete(f.entries, idx) }
	}

	if index+1 > f.first { f.first = index + 1 }

	return nil
}

func (f *MemLogFacade) Reader() Reader {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return &memReader{ facade: f, next: f.first }
}

type memReader struct {
	facade *MemLogFacade
	next uint64
}

func (r *memReader) NextIndex() uint64 { return r.next }

func (r *memReader) Read() (*entry.LogEntry, error) {
	r.facade.mutex.Lock()
	defer r.facade.mutex.Unlock()

	e, ok := r.facade.entries[r.next]
	if ! ok {
		return nil, rsmerrors.New(rsmerrors.IndexOutOfBounds, "no log entry at requested index")
	}

	r.next++

	return e, nil
}
