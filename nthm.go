package nthm

import "context"

// Pipe is an opaque handle to a pipe owned by some Runtime. It is valid
// from the moment Open or Send returns it until it is consumed by Read, or
// retired after being killed; any operation on an already-consumed Pipe
// reports KindInvalidPipe rather than operating on a dangling pipe.
type Pipe struct {
	p *pipe
}

func nullOrInvalid(target *Pipe) error {
	if target == nil || target.p == nil {
		return &Error{Kind: KindNullPipe}
	}
	target.p.mu.Lock()
	ok := target.p.id.ok
	target.p.mu.Unlock()
	if !ok {
		return &Error{Kind: KindInvalidPipe}
	}
	return nil
}

// Open spawns w as a new pipe, tethered to the calling Context as a
// blocker, and returns a handle to it. It fails with KindKilled if the
// caller (or any of its ancestor drains) is already killed or has
// yielded - no new work may be scheduled under a pipe that is on its way
// out.
func (ctx *Context) Open(w Worker) (*Pipe, error) {
	if ctx.rt.heritablyKilledOrYielded(ctx.p) {
		return nil, &Error{Kind: KindKilled}
	}
	child := ctx.rt.newPipe()
	ctx.rt.tether(ctx.p, child, false)
	ctx.rt.runWorker(child, w)
	return &Pipe{p: child}, nil
}

// Send spawns fn as a new pipe the same way Open does, but for a
// Procedure whose only retrievable outcome is its status.
func (ctx *Context) Send(fn Procedure) (*Pipe, error) {
	if ctx.rt.heritablyKilledOrYielded(ctx.p) {
		return nil, &Error{Kind: KindKilled}
	}
	child := ctx.rt.newPipe()
	ctx.rt.tether(ctx.p, child, false)
	ctx.rt.runSend(child, fn)
	return &Pipe{p: child}, nil
}

// Read blocks until target yields (or is killed), then consumes it:
// target is detached from the calling Context's scope and invalidated.
// Reports KindNotDrain if the calling Context is not actually target's
// current drain.
func (ctx *Context) Read(target *Pipe) (result any, status error, err error) {
	if e := nullOrInvalid(target); e != nil {
		return nil, nil, e
	}
	result, status, err = ctx.rt.tetheredRead(ctx.p, target.p)
	if e, ok := err.(*Error); ok && e.Kind == KindNotDrain {
		return result, status, err
	}
	target.p.mu.Lock()
	target.p.id.ok = false
	target.p.id.site = "read"
	target.p.mu.Unlock()
	return result, status, err
}

// Busy reports whether target has not yet yielded.
func (ctx *Context) Busy(target *Pipe) (bool, error) {
	if e := nullOrInvalid(target); e != nil {
		return false, e
	}
	target.p.mu.Lock()
	defer target.p.mu.Unlock()
	return !target.p.yielded, nil
}

// Blocked reports whether the calling Context's current scope still has
// any blockers (pipes tethered but not yet yielded).
func (ctx *Context) Blocked() bool {
	ctx.p.mu.Lock()
	defer ctx.p.mu.Unlock()
	return !ctx.p.scope.blockers.empty()
}

// Select non-destructively peeks the head of the calling Context's
// current finishers list, or returns (nil, nil) if nothing has yielded
// yet. The returned Pipe is still read normally via Read.
func (ctx *Context) Select() (*Pipe, error) {
	ctx.p.mu.Lock()
	defer ctx.p.mu.Unlock()
	link := ctx.p.scope.finishers.head
	if link == nil {
		return nil, nil
	}
	return &Pipe{p: link.pipe}, nil
}

// Truncate marks the calling Context's current scope frame truncated,
// incrementing its saturating counter.
func (ctx *Context) Truncate() error {
	ctx.p.mu.Lock()
	ctx.p.scope.truncate()
	ctx.p.mu.Unlock()
	return nil
}

// TruncateAll truncates every frame on the calling Context's scope stack.
func (ctx *Context) TruncateAll() error {
	ctx.p.mu.Lock()
	for f := ctx.p.scope; f != nil; f = f.parent {
		f.truncate()
	}
	ctx.p.mu.Unlock()
	return nil
}

// Truncated reports whether the calling Context's own tether (the frame
// it was tethered into, at its drain or any ancestor) has been truncated.
func (ctx *Context) Truncated() bool {
	return ctx.rt.heritablyTruncated(ctx.p)
}

// Kill force-kills target and every pipe tethered anywhere in its own
// scope stack, waking whatever wait each is parked in.
func (ctx *Context) Kill(target *Pipe) error {
	if e := nullOrInvalid(target); e != nil {
		return e
	}
	target.p.mu.Lock()
	doKill := killable(target.p)
	if doKill {
		target.p.killed = true
		target.p.progress.Broadcast()
		target.p.termination.Broadcast()
	}
	target.p.mu.Unlock()
	if doKill {
		ctx.rt.severFromDrain(target.p)
		ctx.rt.descendantsKilled(target.p)
	}
	return nil
}

// KillAll kills every pipe tethered anywhere in the calling Context's own
// scope stack (its entire subtree), then sweeps the root pool for any
// placeholder pipes that were killed as part of that cascade.
func (ctx *Context) KillAll() error {
	ctx.rt.descendantsKilled(ctx.p)
	ctx.rt.unpool(func(p *pipe) bool {
		p.mu.Lock()
		drop := p.placeholder && p.killed && !p.zombie
		if drop {
			p.zombie = true
		}
		keep := !(p.placeholder && p.killed)
		p.mu.Unlock()
		return keep
	})
	return nil
}

// Killed reports whether the calling Context itself, or any of its
// ancestor drains, is killed.
func (ctx *Context) Killed() bool {
	return ctx.rt.heritablyKilled(ctx.p)
}

// Tether attaches an untethered target pipe to the calling Context, as a
// blocker, or as a finisher if target has already yielded. Fails with KindNotDrain if target already has a drain, and
// KindKilled if the calling Context is itself killed or yielded.
func (ctx *Context) Tether(target *Pipe) error {
	if e := nullOrInvalid(target); e != nil {
		return e
	}
	target.p.mu.Lock()
	hasReader := target.p.reader != nil
	target.p.mu.Unlock()
	if hasReader {
		return &Error{Kind: KindNotDrain}
	}
	if ctx.rt.heritablyKilledOrYielded(ctx.p) {
		return &Error{Kind: KindKilled}
	}
	ctx.rt.tether(ctx.p, target.p, false)
	return nil
}

// Untether detaches target from the calling Context without reading it,
// returning it to the root pool. Fails with KindNotDrain if the calling
// Context is not actually target's current drain.
func (ctx *Context) Untether(target *Pipe) error {
	if e := nullOrInvalid(target); e != nil {
		return e
	}
	target.p.mu.Lock()
	slot := target.p.reader
	target.p.mu.Unlock()
	if slot == nil || slot.pipe != ctx.p {
		return &Error{Kind: KindNotDrain}
	}
	ctx.rt.severFromDrain(target.p)
	return nil
}

// EnterScope pushes a fresh, empty scope frame onto the calling Context's
// stack.
func (ctx *Context) EnterScope() error {
	ctx.p.mu.Lock()
	ctx.p.scope = &scopeFrame{parent: ctx.p.scope, level: ctx.p.scope.level + 1}
	ctx.p.mu.Unlock()
	return nil
}

// ExitScope pops the calling Context's current scope frame. It fails with
// KindScopeUnderflow if called at the sentinel frame (no matching
// EnterScope), and returns a non-fatal KindScopeNotExited warning - also
// recorded to the Runtime's Ledger - if the frame still held blockers or
// finishers; those children are severed, becoming untethered, rather than
// leaked.
func (ctx *Context) ExitScope() error {
	ctx.p.mu.Lock()
	if ctx.p.scope.parent == nil {
		ctx.p.mu.Unlock()
		return &Error{Kind: KindScopeUnderflow}
	}
	frame := ctx.p.scope
	var children []*pipe
	for _, list := range [2]*childList{&frame.blockers, &frame.finishers} {
		for n := list.head; n != nil; n = n.next {
			children = append(children, n.pipe)
		}
	}
	ctx.p.scope = frame.parent
	ctx.p.mu.Unlock()

	if len(children) == 0 {
		return nil
	}
	ctx.rt.ledger.append("nthm.ExitScope", &Error{Kind: KindScopeNotExited})
	ctx.rt.logf(LevelWarn, "scope", "ExitScope called with live blockers or finishers still pending", nil)
	for _, c := range children {
		ctx.rt.severFromDrain(c)
	}
	return &Error{Kind: KindScopeNotExited}
}

// Stats is a snapshot of a Runtime's internal bookkeeping, for
// diagnostics and tests.
type Stats struct {
	PoolSize    int
	LedgerLen   int
	Deadlocked  bool
	Outstanding int
}

// Stats returns a snapshot of the Runtime's current bookkeeping.
func (rt *Runtime) Stats() Stats {
	return Stats{
		PoolSize:    rt.poolSize(),
		LedgerLen:   rt.ledger.Len(),
		Deadlocked:  rt.ledger.Deadlocked(),
		Outstanding: rt.sync.outstanding(),
	}
}

// Sync blocks until every goroutine the Runtime has ever spawned has
// finished, or ctx is done, whichever comes first.
func (rt *Runtime) Sync(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		rt.sync.synchronize()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return &Error{Kind: KindSystem, Cause: ctx.Err()}
	}
}
