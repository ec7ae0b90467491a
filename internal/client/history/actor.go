package history

import (
	"context"
	"sync"
)

// Actor serializes closures on a single goroutine.
type Actor struct {
	ops     chan func()
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewActor() *Actor {
	a := &Actor{
		ops:     make(chan func()),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *Actor) loop() {
	defer close(a.stopped)
	for {
		select {
		case op := <-a.ops:
			op()
		case <-a.done:
			return
		}
	}
}

// Do runs fn on the actor and waits for it to finish. fn must not call Do.
// Once fn has been handed over it runs to completion even if ctx is
// cancelled.
func (a *Actor) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}

	select {
	case a.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// Close stops the actor after the running closure, if any, returns.
func (a *Actor) Close() {
	a.once.Do(func() { close(a.done) })
	<-a.stopped
}
