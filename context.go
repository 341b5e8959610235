package nthm

import (
	"runtime"
	"strconv"
)

// Context is the caller's current position in the pipe forest: the pipe
// it is running as, bound for the lifetime of the goroutine that Open or
// Send started. Every public operation is a method on Context rather than
// a free function, since every operation needs to know "who is calling".
type Context struct {
	rt *Runtime
	p  *pipe
}

// goroutineID extracts the calling goroutine's numeric ID by parsing the
// header line of its own stack trace. Go deliberately has no supported
// API for this; it is used here only as the key of the Runtime's
// context-binding map; no scheduling or correctness decision ever depends
// on the numeric value itself, only on its stability as an identifier for
// the lifetime of the goroutine.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := buf[:n]
	const prefix = "goroutine "
	if len(field) > len(prefix) && string(field[:len(prefix)]) == prefix {
		field = field[len(prefix):]
	}
	i := 0
	for i < len(field) && field[i] >= '0' && field[i] <= '9' {
		i++
	}
	id, err := strconv.ParseInt(string(field[:i]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

// bindContext associates the calling goroutine with p, returning the
// Context to be passed to the Worker/Procedure running as p.
func (rt *Runtime) bindContext(p *pipe) *Context {
	gid := goroutineID()
	ctx := &Context{rt: rt, p: p}
	rt.ctxMu.Lock()
	rt.ctx[gid] = p
	rt.ctxMu.Unlock()
	return ctx
}

// clearContext removes the calling goroutine's binding, if it still
// points at p (it may already have been rebound, or cleared, by the time
// a deferred call runs).
func (rt *Runtime) clearContext(p *pipe) {
	gid := goroutineID()
	rt.ctxMu.Lock()
	if rt.ctx[gid] == p {
		delete(rt.ctx, gid)
	}
	rt.ctxMu.Unlock()
}

// currentPipe resolves the pipe bound to goroutine gid. For an unmanaged
// goroutine (one that never went through Open/Send - e.g. the goroutine
// that called New or is driving main) it reports (nil, false); it does not
// fall back to the Runtime's root placeholder.
func (rt *Runtime) currentPipe(gid int64) (*pipe, bool) {
	rt.ctxMu.Lock()
	p, ok := rt.ctx[gid]
	rt.ctxMu.Unlock()
	return p, ok
}

// Root returns a Context bound to the Runtime's root placeholder, for use
// by a caller that is not itself running as a pipe (spec.md §4.4's
// untethered/placeholder root pool membership). The same placeholder is
// reused for every unmanaged caller; it is never killed, tethered, or
// retired by ordinary operations.
func (rt *Runtime) Root() *Context {
	return &Context{rt: rt, p: rt.rootPlaceholder}
}
