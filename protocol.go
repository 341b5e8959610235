package nthm

// This file is the read/yield protocol (spec.md §4.6-4.7): the four
// combinations of {tethered, untethered} x {yield, read}. A worker yields
// exactly once, handing back its result and status; whoever reads it - its
// drain, or nothing at all if it was never tethered - wakes on the
// matching condition variable. The tethered pair locks source first, then
// drain (never the reverse), the same order tether and severFromDrain use
// (spec.md §4.5: "Locking order: s first, then d") - so none of these can
// deadlock against a tethered worker polling ctx.Killed()/ctx.Truncated(),
// which locks itself as source before its drain (pipe.go's
// walkTetherChain).

// untetheredYield records p's result and wakes anyone parked in
// untetheredRead. Used when p has no drain at the moment it finishes (a
// worker that was untethered, severed by a scope exit, or killed).
func (rt *Runtime) untetheredYield(p *pipe, result any, status error) {
	p.mu.Lock()
	p.yielded = true
	p.result = result
	p.status = status
	p.termination.Broadcast()
	p.mu.Unlock()
}

// untetheredRead blocks until p yields or is killed, returning its result.
func (rt *Runtime) untetheredRead(p *pipe) (result any, status error, err error) {
	p.mu.Lock()
	for !p.yielded && !p.killed {
		p.termination.Wait()
	}
	result = p.result
	status = p.status
	if p.killed && !p.yielded {
		err = &Error{Kind: KindKilled}
	}
	p.mu.Unlock()

	p.mu.Lock()
	retire := p.retirableLocked()
	p.mu.Unlock()
	if retire {
		rt.retire(p)
	}
	return result, status, err
}

// tetheredYield records source's result, moves it from its drain's
// blockers list into the finishers list of the same frame, and wakes the
// drain's progress wait. If source has no drain at all, this degrades to
// untetheredYield. Holds source throughout, locking drain nested inside -
// source-then-drain, matching tether/severFromDrain.
func (rt *Runtime) tetheredYield(source *pipe, result any, status error) {
	source.mu.Lock()
	slot := source.reader
	if slot == nil {
		source.mu.Unlock()
		rt.untetheredYield(source, result, status)
		return
	}
	source.yielded = true
	source.result = result
	source.status = status
	link := slot.link
	depth := source.depth
	drain := slot.pipe

	drain.mu.Lock()
	if link.owner != nil {
		link.owner.unlink(link, rt.ledger)
	}
	frameAtDepth(drain, depth).finishers.enqueue(link)
	drain.mu.Unlock()
	source.mu.Unlock()

	drain.progress.Broadcast()
}

// tetheredRead blocks drain until source yields or is killed, then
// retires the tether: source is unlinked from drain's scope frame and
// either retired (if nothing else references it) or returned to the root
// pool. Returns KindNotDrain if drain is not actually source's current
// drain.
//
// The wait loop holds only drain.mu, never source.mu nested inside it:
// drain.progress is bound to drain.mu, so the predicate it waits on must
// be drain-owned state alone. That state is link.owner, the finisher list
// the link currently belongs to (or nil once severFromDrain has severed
// it) - both tetheredYield and severFromDrain only ever mutate owner while
// holding drain.mu, so polling it here under drain.mu alone is race-free
// and never needs to lock source until after the wait is over.
func (rt *Runtime) tetheredRead(drain, source *pipe) (result any, status error, err error) {
	source.mu.Lock()
	slot := source.reader
	if slot == nil || slot.pipe != drain {
		source.mu.Unlock()
		return nil, nil, &Error{Kind: KindNotDrain}
	}
	link := slot.link
	depth := source.depth
	source.mu.Unlock()

	drain.mu.Lock()
	finishers := &frameAtDepth(drain, depth).finishers
	for link.owner != nil && link.owner != finishers {
		drain.progress.Wait()
	}
	severed := link.owner == nil
	if !severed {
		link.owner.unlink(link, rt.ledger)
	}
	drain.mu.Unlock()

	if severed {
		// severFromDrain already cleared source.reader and handled
		// retirement/pooling as part of the kill that severed us.
		return nil, nil, &Error{Kind: KindKilled}
	}

	source.mu.Lock()
	result = source.result
	status = source.status
	source.reader = nil
	retire := source.retirableLocked()
	source.mu.Unlock()

	if retire {
		rt.retire(source)
	} else {
		rt.placed(source)
	}
	return result, status, nil
}
