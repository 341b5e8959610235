package nthm

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// ledgerRecord is one entry in a Ledger.
type ledgerRecord struct {
	site string
	err  error
	at   time.Time
}

// Ledger is a Runtime's append-only log of unrecoverable errors
// detected outside any user-visible return path (e.g. during shutdown),
// plus the deadlocked flag that disables further coordination once a
// primitive has failed catastrophically. It is bounded: once full,
// further appends are dropped rather than overwriting history, since the
// first failures are usually the most diagnostic.
type Ledger struct {
	mu         sync.Mutex
	cap        int
	records    []ledgerRecord
	deadlocked bool
}

func newLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = 16
	}
	return &Ledger{cap: capacity}
}

func (l *Ledger) append(site string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) >= l.cap {
		return
	}
	l.records = append(l.records, ledgerRecord{site: site, err: err, at: time.Now()})
}

func (l *Ledger) setDeadlocked() {
	l.mu.Lock()
	l.deadlocked = true
	l.mu.Unlock()
}

// Deadlocked reports whether a coordination primitive has failed
// irrecoverably, disabling further coordination.
func (l *Ledger) Deadlocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deadlocked
}

// Len returns the number of records currently held.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// DumpFile atomically writes the ledger's contents to path, for
// final-teardown diagnostics (see spec.md §7: "printed on final
// teardown"). It uses renameio so a reader never observes a partial file.
func (l *Ledger) DumpFile(path string) error {
	l.mu.Lock()
	var buf []byte
	for _, r := range l.records {
		buf = append(buf, fmt.Sprintf("%s\t%s\t%v\n", r.at.Format(time.RFC3339Nano), r.site, r.err)...)
	}
	if l.deadlocked {
		buf = append(buf, "deadlocked: true\n"...)
	}
	l.mu.Unlock()
	return renameio.WriteFile(path, buf, 0o644)
}
