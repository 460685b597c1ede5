package core

import "sync"

// Invoker spawns and tracks goroutines, the way the teacher's core.Invoker
// lets tests swap in a *sync.WaitGroup-backed implementation so shutdown
// can be awaited deterministically.
type Invoker interface {
	// Spawn runs f on its own goroutine.
	Spawn(f func())
	// Stop blocks until every spawned goroutine has returned.
	Stop()
}

type defaultInvoker struct {
	group sync.WaitGroup
}

var instance = &defaultInvoker{}

// InvokerInstance returns the process-wide default Invoker, mirroring the
// teacher's singleton accessor used by Peer and ReliableTransport.
func InvokerInstance() Invoker {
	return instance
}

func (d *defaultInvoker) Spawn(f func()) {
	d.group.Add(1)
	go func() {
		defer d.group.Done()
		f()
	}()
}

func (d *defaultInvoker) Stop() {
	d.group.Wait()
}
