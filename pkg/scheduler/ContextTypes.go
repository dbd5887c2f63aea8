package scheduler

import "github.com/coldharbor/rsm/pkg/logger"


//=========================================== Cooperative Context


/*
	Context is a single-threaded cooperative execution context: one
	goroutine drains a job channel in order ("for { job := <-ch; job() }")
	instead of handing work to a pool. Jobs run one at a time; a job that
	uses Call on another Context blocks this context until that job has
	finished, which is how the manager's drain and snapshot jobs hop to
	the state context.
*/

type Context struct {
	name string
	jobs chan func()
	stop chan struct{}

	Log *clog.CustomLog
}

const DefaultQueueDepth = 256
