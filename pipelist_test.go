package nthm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChildList_PushAndEnqueue(t *testing.T) {
	var blockers, finishers childList

	a := &childLink{pipe: &pipe{}}
	b := &childLink{pipe: &pipe{}}
	blockers.push(a)
	blockers.push(b)
	// push is head-insertion: b came second, so b is now the head.
	assert.Same(t, b, blockers.head)
	assert.Same(t, a, blockers.tail)

	c := &childLink{pipe: &pipe{}}
	d := &childLink{pipe: &pipe{}}
	finishers.enqueue(c)
	finishers.enqueue(d)
	// enqueue is tail-insertion: FIFO order preserved.
	assert.Same(t, c, finishers.head)
	assert.Same(t, d, finishers.tail)
}

func TestChildList_Unlink(t *testing.T) {
	var l childList
	a, b, c := &childLink{pipe: &pipe{}}, &childLink{pipe: &pipe{}}, &childLink{pipe: &pipe{}}
	l.enqueue(a)
	l.enqueue(b)
	l.enqueue(c)

	l.unlink(b, nil)
	assert.Same(t, a, l.head)
	assert.Same(t, c, l.tail)
	assert.Same(t, c, a.next)
	assert.Same(t, a, c.prev)
	assert.Nil(t, b.owner)
}

func TestChildList_Unlink_OwnerMismatchRecordsLedger(t *testing.T) {
	var l1, l2 childList
	n := &childLink{pipe: &pipe{}}
	l1.enqueue(n)

	ledger := newLedger(4)
	l2.unlink(n, ledger)
	assert.Equal(t, 1, ledger.Len())
	// n is untouched: it's still a member of l1.
	assert.Same(t, n, l1.head)
}

func TestChildList_PopFrontAndEmpty(t *testing.T) {
	var l childList
	assert.True(t, l.empty())

	a := &childLink{pipe: &pipe{}}
	l.enqueue(a)
	assert.False(t, l.empty())

	got := l.popFront(nil)
	assert.Same(t, a, got)
	assert.True(t, l.empty())
	assert.Nil(t, l.popFront(nil))
}

func TestNewComplementaryPair(t *testing.T) {
	drain, source := &pipe{}, &pipe{}
	link, slot := newComplementaryPair(drain, source)
	assert.Same(t, source, link.pipe)
	assert.Same(t, drain, slot.pipe)
	assert.Same(t, link, slot.link)
	assert.Same(t, slot, link.reader)
}
