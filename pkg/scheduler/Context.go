package scheduler

import "github.com/coldharbor/rsm/pkg/logger"


//=========================================== Context


func NewContext(name string) *Context {
	ctx := &Context{
		name: name,
		jobs: make(chan func(), DefaultQueueDepth),
		stop: make(chan struct{}),
		Log: clog.NewCustomLog(name),
	}

	go ctx.run()

	return ctx
}

func (c *Context) run() {
	for {
		select {
		case job := <-c.jobs:
			job()
		case <-c.stop:
			return
		}
	}
}

/*
	Submit enqueues a job to run on this context's single goroutine, in
	submission order. The caller does not block on the job's completion —
	suspension points (awaiting a result) are expressed by having the job
	resolve a future.
*/

func (c *Context) Submit(job func()) {
	c.jobs <- job
}

/*
	Hop runs job on this context and, once it returns, submits next to it
	— used for the defined context-hop points (server context enqueues an
	index, then hops to the state context to dispatch it).
*/

func (c *Context) Hop(other *Context, job func(), next func()) {
	c.Submit(func() {
		job()
		other.Submit(next)
	})
}

/*
	Call submits job to this context and blocks the caller until it
	completes — the "awaiting the result of a service operation"
	suspension point named in the concurrency model, used by the
	manager's drain loop (running as a job on the server context) to
	synchronously hop to the state context and back without two contexts
	ever executing concurrently against the same entry.
*/

func (c *Context) Call(job func()) {
	done := make(chan struct{})

	c.Submit(func() {
		job()
		close(done)
	})

	<-done
}

func (c *Context) Stop() {
	close(c.stop)
}
