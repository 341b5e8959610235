package nthm

// This file is the pipe-list module (spec.md §4.1): doubly linked lists
// whose entries may be paired with a complement in another structure. The
// original represents unlink-by-node using a pointer-to-pointer back-link;
// per spec.md §9 that is re-expressed here as an invariant-bearing list
// type instead: every node knows the *childList it currently belongs to
// (nil when not linked), so unlink never needs the address of whichever
// field points at it.

type (
	// childList is a doubly linked list of childLink entries, owned by one
	// scopeFrame field (blockers or finishers). push inserts at the head
	// (blockers' discipline); enqueue inserts at the tail, maintaining the
	// tail pointer (finishers' FIFO discipline).
	childList struct {
		head, tail *childLink
	}

	// childLink is a drain-side pipe-list entry: it identifies a tethered
	// source pipe from its drain's point of view, as a member of exactly
	// one childList (a scope frame's blockers or finishers). Its
	// complement is the readerSlot held by the source pipe itself.
	childLink struct {
		owner      *childList
		prev, next *childLink
		pipe       *pipe // the source this entry identifies
		reader     *readerSlot
	}

	// readerSlot is the complement of a childLink: it is the (at most one)
	// entry a tethered source pipe keeps in its own reader field,
	// identifying its drain and the drain-side entry pairing it.
	readerSlot struct {
		pipe *pipe // the drain
		link *childLink
	}
)

// newComplementaryPair creates a drain-side childLink and a source-side
// readerSlot, cross-linked as complements. The childLink is not yet a
// member of any list; the caller pushes or enqueues it into the
// appropriate scope frame.
func newComplementaryPair(drain, source *pipe) (*childLink, *readerSlot) {
	link := &childLink{pipe: source}
	slot := &readerSlot{pipe: drain, link: link}
	link.reader = slot
	return link, slot
}

// push inserts n at the head of the list (blockers discipline).
func (l *childList) push(n *childLink) {
	n.owner = l
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

// enqueue inserts n at the tail of the list, maintaining the tail pointer
// (finishers discipline).
func (l *childList) enqueue(n *childLink) {
	n.owner = l
	n.next = nil
	n.prev = l.tail
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
}

// unlink removes n from whichever position it holds in l. n must
// currently be a member of l; violating that precondition is an internal
// consistency error, recorded via the caller-supplied ledger rather than
// silently corrupting the list.
func (l *childList) unlink(n *childLink, ledger *Ledger) {
	if n.owner != l {
		if ledger != nil {
			ledger.append("pipelist.unlink", internalError("pipelist.unlink: owner mismatch", nil))
		}
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.owner = nil
	n.prev, n.next = nil, nil
}

// popFront removes and returns the head entry, or nil if the list is
// empty.
func (l *childList) popFront(ledger *Ledger) *childLink {
	n := l.head
	if n == nil {
		return nil
	}
	l.unlink(n, ledger)
	return n
}

// empty reports whether the list currently has no members.
func (l *childList) empty() bool {
	return l.head == nil
}
