package nthm

// This file is the worker manager: the goroutine bodies spawned by Open
// and Send, and the handshake that lets the spawning call block until the
// new goroutine has actually bound its context, before handing back a
// *Pipe the caller might immediately Tether or Read.

type (
	// Worker is a function run by Open: it receives a Context scoped to
	// its own pipe and returns a result plus a status error, both
	// retrievable later via Read.
	Worker func(ctx *Context) (result any, status error)

	// Procedure is a function run by Send: a one-way task whose only
	// retrievable outcome is its status error.
	Procedure func(ctx *Context) error
)

// acknowledged spawns fn as a new goroutine counted by the relay race,
// blocking until fn has bound its own context - so the caller never
// observes a *Pipe whose goroutine has not yet started.
func (rt *Runtime) acknowledged(p *pipe, fn func(ctx *Context)) {
	ack := make(chan struct{})
	rt.sync.beforeSpawn()
	go func() {
		defer rt.sync.done()
		ctx := rt.bindContext(p)
		close(ack)
		fn(ctx)
		rt.clearContext(p)
	}()
	<-ack
}

// runWorker is the goroutine body for Open: run the worker, vacate any
// scopes it left entered, kill any children still tethered directly to p
// itself (spec.md §4.6: descendants_killed runs before either yield path,
// so a child Opened without EnterScope can't outlive its parent unread),
// then yield its result.
func (rt *Runtime) runWorker(p *pipe, w Worker) {
	rt.acknowledged(p, func(ctx *Context) {
		result, status := w(ctx)
		p.mu.Lock()
		rt.vacateScopes(p)
		p.mu.Unlock()
		rt.descendantsKilled(p)
		rt.tetheredYield(p, result, status)
	})
}

// runSend is the goroutine body for Send: run the procedure, vacate any
// scopes it left entered, kill any children still tethered directly to p
// itself, then yield its status with a nil result.
func (rt *Runtime) runSend(p *pipe, fn Procedure) {
	rt.acknowledged(p, func(ctx *Context) {
		status := fn(ctx)
		p.mu.Lock()
		rt.vacateScopes(p)
		p.mu.Unlock()
		rt.descendantsKilled(p)
		rt.tetheredYield(p, nil, status)
	})
}
