package future

import "sync"


//=========================================== Ordered Future


/*
	OrderedFuture is a future whose completion callbacks fire in the order
	they were registered, never in completion-race order. The compaction
	future needs this: retries must observe prior callbacks before their
	own, per the design note on ordered futures. A plain channel-based
	future cannot promise this once more than one goroutine is listening.
*/

type OrderedFuture struct {
	mutex sync.Mutex
	completed bool
	err error

	callbacks []func(error)
}

func NewOrdered() *OrderedFuture {
	return &OrderedFuture{}
}

/*
	OnComplete registers a callback, called with the future's terminal
	error (nil on success) either immediately (if already completed, to
	preserve "registered then fires" semantics for late joiners) or when
	Complete is eventually called.
*/

func (f *OrderedFuture) OnComplete(callback func(error)) {
	f.mutex.Lock()

	if f.completed {
		err := f.err
		f.mutex.Unlock()
		callback(err)
		return
	}

	f.callbacks = append(f.callbacks, callback)
	f.mutex.Unlock()
}

/*
	Complete resolves the future exactly once and fires every registered
	callback in registration order. A compaction future is always
	completed, never left failed, so that callers waiting on it unblock
	even when the compaction itself errored; Complete takes the error to
	report to callbacks, not to fail the future with.
*/

func (f *OrderedFuture) Complete(err error) {
	f.mutex.Lock()

	if f.completed {
		f.mutex.Unlock()
		return
	}

	f.completed = true
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil

	f.mutex.Unlock()

	for _, callback := range callbacks { callback(err) }
}

func (f *OrderedFuture) Completed() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.completed
}
