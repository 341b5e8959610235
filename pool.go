package nthm

// This file is the root pool (spec.md §4.4): the Runtime's root
// placeholder, and every pipe that has been detached from its drain
// (by Untether, a scope exit, or a kill) without being retired, lives in
// the Runtime's own pool. Membership is tracked by the pipe's own
// poolPrev/poolNext/inPool fields, guarded by Runtime.poolMu rather than
// the pipe's own mu, since pool membership changes are orthogonal to a
// pipe's own state transitions and must never nest under a pipe lock.

// placed inserts p at the head of the root pool. If p is already a member,
// placed does nothing.
func (rt *Runtime) placed(p *pipe) {
	rt.poolMu.Lock()
	defer rt.poolMu.Unlock()
	if p.inPool {
		return
	}
	p.poolPrev = nil
	p.poolNext = rt.poolHead
	if rt.poolHead != nil {
		rt.poolHead.poolPrev = p
	}
	rt.poolHead = p
	p.inPool = true
}

// displace removes p from the root pool, if it is a member.
func (rt *Runtime) displace(p *pipe) {
	rt.poolMu.Lock()
	defer rt.poolMu.Unlock()
	if !p.inPool {
		return
	}
	if p.poolPrev != nil {
		p.poolPrev.poolNext = p.poolNext
	} else {
		rt.poolHead = p.poolNext
	}
	if p.poolNext != nil {
		p.poolNext.poolPrev = p.poolPrev
	}
	p.poolPrev, p.poolNext = nil, nil
	p.inPool = false
}

// pooled reports whether p currently belongs to the root pool.
func (rt *Runtime) pooled(p *pipe) bool {
	rt.poolMu.Lock()
	defer rt.poolMu.Unlock()
	return p.inPool
}

// unpool walks the root pool and removes every pipe for which keep
// returns false, displacing it. Used by KillAll's sweep of killed
// placeholders.
func (rt *Runtime) unpool(keep func(p *pipe) bool) {
	rt.poolMu.Lock()
	cur := rt.poolHead
	var drop []*pipe
	for cur != nil {
		next := cur.poolNext
		if !keep(cur) {
			drop = append(drop, cur)
		}
		cur = next
	}
	rt.poolMu.Unlock()
	for _, p := range drop {
		rt.displace(p)
	}
}

// poolSize returns the number of pipes currently in the root pool.
func (rt *Runtime) poolSize() int {
	rt.poolMu.Lock()
	defer rt.poolMu.Unlock()
	n := 0
	for cur := rt.poolHead; cur != nil; cur = cur.poolNext {
		n++
	}
	return n
}
