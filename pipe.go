package nthm

import "sync"

// identity is a pipe's validity tag (spec.md §4.2, §4.9). A live pipe has
// ok == true; once retired (or detected corrupt) ok is false and site
// records where that happened, so a later use is reported as
// KindInvalidPipe rather than left to undefined behavior (see DESIGN.md's
// decision on spec.md §9's first Open Question).
type identity struct {
	ok   bool
	site string
}

// pipe is the unit of addressable work (spec.md §3). Every field is
// guarded by mu except where noted.
type pipe struct {
	mu sync.Mutex

	id identity

	killed      bool
	yielded     bool
	zombie      bool
	placeholder bool

	reader *readerSlot // this pipe's own tether to its drain, if any
	scope  *scopeFrame // top of this pipe's scope-frame stack
	depth  int         // drain's scope level at the moment this pipe was tethered

	termination *sync.Cond // waited on by untetheredRead; signaled on untethered yield
	progress    *sync.Cond // waited on by tetheredRead; signaled on tethered yield and on kill

	result any
	status error

	// root-pool intrusive links; guarded by Runtime.poolMu, not mu.
	poolPrev, poolNext *pipe
	inPool             bool

	rt *Runtime
}

func (rt *Runtime) newPipe() *pipe {
	p := &pipe{rt: rt, scope: newSentinelFrame()}
	p.id.ok = true
	p.termination = sync.NewCond(&p.mu)
	p.progress = sync.NewCond(&p.mu)
	return p
}

func (rt *Runtime) newPlaceholder() *pipe {
	p := rt.newPipe()
	p.placeholder = true
	return p
}

// retirableLocked reports whether p is now eligible for retirement
// (spec.md §3 invariants). p.mu must be held by the caller.
func (p *pipe) retirableLocked() bool {
	if p.zombie {
		return true
	}
	if p.reader != nil {
		return false
	}
	if p.scope.parent != nil {
		return false
	}
	if !p.scope.blockers.empty() || !p.scope.finishers.empty() {
		return false
	}
	if p.placeholder {
		return true
	}
	return p.killed || p.yielded
}

// retire tears down a pipe that has no reader, no blockers, no finishers,
// and whose scope stack holds only the sentinel frame. There is no
// pthread_mutex_destroy/pthread_cond_destroy equivalent in Go - the
// garbage collector reclaims the pipe once nothing references it - so
// retire's entire job is invalidating the identity tag, so any further use
// (a double Read, a stale *Pipe handle) is reported as KindInvalidPipe
// instead of operating on a half-torn-down pipe.
func (rt *Runtime) retire(p *pipe) {
	p.mu.Lock()
	p.id.ok = false
	p.id.site = "retired"
	p.mu.Unlock()
	rt.logf(LevelDebug, "pipe", "retired", nil)
}

// walkTetherChain is the hand-over-hand ancestor walk shared by every
// heritable-flag check (spec.md §4.2, §9: "expressed once as a helper, not
// open-coded per flag"). It holds at most two pipe locks at a time: cur is
// always locked when visit is called, and drain (cur's own drain, if any)
// is locked alongside it for the duration of that one call. visit returns
// (stop, result); when stop is false the walk continues with drain as the
// new cur (drain must be non-nil in that case).
func (rt *Runtime) walkTetherChain(p *pipe, visit func(cur, drain *pipe) (stop, result bool)) bool {
	cur := p
	cur.mu.Lock()
	for {
		r := cur.reader
		if r == nil {
			_, result := visit(cur, nil)
			cur.mu.Unlock()
			return result
		}
		drain := r.pipe
		drain.mu.Lock()
		stop, result := visit(cur, drain)
		cur.mu.Unlock()
		if stop {
			drain.mu.Unlock()
			return result
		}
		cur = drain
	}
}

// heritablyKilledOrYielded reports whether p or any ancestor drain in its
// tether chain is killed or has yielded. Used for the "caller context not
// yielded/killed" preconditions on Open/Send/Tether.
func (rt *Runtime) heritablyKilledOrYielded(p *pipe) bool {
	return rt.walkTetherChain(p, func(cur, drain *pipe) (bool, bool) {
		if cur.killed || cur.yielded {
			return true, true
		}
		if drain == nil {
			return true, false
		}
		return false, false
	})
}

// heritablyKilled reports whether p or any ancestor drain is killed (the
// public Killed() check - narrower than heritablyKilledOrYielded, which
// also folds in "yielded" for the internal spawn/tether preconditions).
func (rt *Runtime) heritablyKilled(p *pipe) bool {
	return rt.walkTetherChain(p, func(cur, drain *pipe) (bool, bool) {
		if cur.killed {
			return true, true
		}
		if drain == nil {
			return true, false
		}
		return false, false
	})
}

// heritablyTruncated reports whether the scope frame p was tethered into,
// at any ancestor drain, has been truncated (spec.md §4.2). At each
// ancestor it descends from that drain's current top frame to the one
// recorded at the source's depth, since truncation only ever marks the
// frame that owns a given source, not sibling scopes.
func (rt *Runtime) heritablyTruncated(p *pipe) bool {
	return rt.walkTetherChain(p, func(cur, drain *pipe) (bool, bool) {
		if drain == nil {
			return true, false
		}
		f := frameAtDepth(drain, cur.depth)
		if f.truncation > 0 {
			return true, true
		}
		return false, false
	})
}
