package nthm

// This file is the plumbing module: the operations that physically attach
// and detach a source pipe from a drain's scope frame, and the cascades
// (kill, scope exit) that walk a drain's children. Every operation that
// needs both a drain and a source lock acquires source first, then drain
// (spec.md §4.5: "Locking order: s first, then d"), matching
// walkTetherChain (pipe.go) - never the reverse, since a tethered worker
// polling ctx.Killed()/ctx.Truncated() locks itself (as source) then its
// drain, and a drain parked in tetheredRead must never be caught holding
// its own lock while waiting on a source's.

// tether attaches source to drain's current top scope frame, as a
// finisher if asFinisher is true or source has already yielded, otherwise
// as a blocker (spec.md §4.5).
// Both locks must NOT be held by the caller; tether acquires source then
// drain.
func (rt *Runtime) tether(drain, source *pipe, asFinisher bool) {
	source.mu.Lock()
	drain.mu.Lock()

	link, slot := newComplementaryPair(drain, source)
	if asFinisher || source.yielded {
		drain.scope.finishers.enqueue(link)
	} else {
		drain.scope.blockers.push(link)
	}
	source.reader = slot
	source.depth = drain.scope.level

	drain.mu.Unlock()
	source.mu.Unlock()

	rt.displace(source)
}

// severFromDrain detaches source from whichever drain scope frame it is
// tethered into, if any, leaving source untethered. Caller must hold
// neither lock; severFromDrain acquires source then drain, never letting
// go of source in between, so no other goroutine can observe source
// mid-detach. A killed source that is now retirable is retired; any other
// source, finished or not, is returned to the root pool. Wakes anyone parked in the
// drain's progress wait, since this may be how a pending tetheredRead
// learns its source was killed out from under it.
func (rt *Runtime) severFromDrain(source *pipe) {
	source.mu.Lock()
	slot := source.reader
	if slot == nil {
		source.mu.Unlock()
		return
	}
	drain := slot.pipe
	drain.mu.Lock()
	if source.reader == slot {
		slot.link.owner.unlink(slot.link, rt.ledger)
		source.reader = nil
	}
	retire := source.killed && source.retirableLocked()
	drain.mu.Unlock()
	source.mu.Unlock()
	drain.progress.Broadcast()

	if retire {
		rt.retire(source)
	} else {
		rt.placed(source)
	}
}

// killable reports whether target is eligible to be force-killed: not
// already killed, and not a zombie (spec.md §6 kill/kill_all).
func killable(target *pipe) bool {
	return !target.killed && !target.zombie
}

// killFrame marks every child currently tethered into frame as killed,
// severs each from drain (killed implies untethered, spec.md §3/§4.9), and
// recurses into each child's own scope stack so the whole subtree dies and
// is reclaimed together. Locks drain only long enough to snapshot the
// frame's members, then releases it before touching any child - severing
// a child acquires that child's own lock before drain's, so drain must
// never still be held at that point.
func (rt *Runtime) killFrame(drain *pipe, frame *scopeFrame) {
	drain.mu.Lock()
	var children []*pipe
	for _, list := range [2]*childList{&frame.blockers, &frame.finishers} {
		for n := list.head; n != nil; n = n.next {
			children = append(children, n.pipe)
		}
	}
	drain.mu.Unlock()

	for _, child := range children {
		child.mu.Lock()
		doKill := killable(child)
		if doKill {
			child.killed = true
			child.progress.Broadcast()
			child.termination.Broadcast()
		}
		child.mu.Unlock()
		if doKill {
			rt.severFromDrain(child)
		}
		rt.descendantsKilled(child)
	}
}

// descendantsKilled kills every pipe tethered anywhere in p's scope stack,
// at every level (not only the current top), since a pipe parked in an
// outer frame that has not yet been exited must not outlive p's own
// death. p must not be locked by the caller.
func (rt *Runtime) descendantsKilled(p *pipe) {
	p.mu.Lock()
	frames := make([]*scopeFrame, 0, p.scope.level+1)
	for f := p.scope; f != nil; f = f.parent {
		frames = append(frames, f)
	}
	p.mu.Unlock()

	for _, f := range frames {
		rt.killFrame(p, f)
	}
}

// vacateScopes forcibly pops every scope frame above the sentinel on p's
// stack, for use when a worker finishes (or is killed) without having
// exited every scope it entered. Any frame found non-empty produces a
// non-fatal KindScopeNotExited ledger record (spec.md §7's XSCOPE: "stays
// a non-fatal warning") and its remaining children are severed, becoming
// untethered. p.mu must be held by the caller; it is released and
// re-acquired while children are severed, since severFromDrain locks the
// child before p.
func (rt *Runtime) vacateScopes(p *pipe) {
	for p.scope.parent != nil {
		frame := p.scope
		if !frame.blockers.empty() || !frame.finishers.empty() {
			rt.ledger.append("plumbing.vacateScopes", &Error{Kind: KindScopeNotExited})
			rt.logf(LevelWarn, "scope", "worker finished with a non-empty scope still entered", nil)
			var children []*pipe
			for _, list := range [2]*childList{&frame.blockers, &frame.finishers} {
				for n := list.head; n != nil; n = n.next {
					children = append(children, n.pipe)
				}
			}
			p.mu.Unlock()
			for _, c := range children {
				rt.severFromDrain(c)
			}
			p.mu.Lock()
		}
		p.scope = frame.parent
	}
}
