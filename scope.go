package nthm

import "math"

// scopeFrame is one level of a pipe's attention stack (spec.md §4.3). Each
// pipe, in its role as a drain, carries its own stack of these; entering a
// scope pushes a fresh frame, exiting pops it, severing any blockers and
// finishers it still holds.
type scopeFrame struct {
	parent     *scopeFrame
	level      int // number of frames beneath this one; the sentinel is 0
	blockers   childList
	finishers  childList
	truncation uint32
}

// newSentinelFrame returns the always-present bottom frame of a pipe's
// scope stack.
func newSentinelFrame() *scopeFrame {
	return &scopeFrame{}
}

// frameAtDepth walks up drain's scope stack from its current top to the
// frame at the given depth - the frame that was current when a source with
// that recorded depth was tethered to drain. Frames are never reordered or
// removed while they hold children, so the frame a source was tethered
// into never moves; this is the one place that fact is exploited, shared
// by the truncation walk, tetheredYield and tetheredRead (drain.mu must be
// held by the caller).
func frameAtDepth(drain *pipe, depth int) *scopeFrame {
	f := drain.scope
	for i := 0; i < f.level-depth && f.parent != nil; i++ {
		f = f.parent
	}
	return f
}

// saturatingIncrement increments n, pinning it at its maximum value
// instead of overflowing (spec.md §8: "Truncation counter saturates at
// its maximum value").
func saturatingIncrement(n uint32) uint32 {
	if n == math.MaxUint32 {
		return n
	}
	return n + 1
}

// truncate bumps f's truncation counter (p.mu must be held).
func (f *scopeFrame) truncate() {
	f.truncation = saturatingIncrement(f.truncation)
}
