package nthm

import (
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

// RuntimeConfig models optional configuration for New. The zero value is
// valid; every field defaults as documented.
type RuntimeConfig struct {
	// Logger receives structured diagnostics. Defaults to a no-op logger.
	Logger Logger

	// LedgerCapacity bounds the number of unrecoverable-error records the
	// Runtime's Ledger retains. Defaults to 16, if 0.
	LedgerCapacity int
}

// LoadRuntimeConfigFile reads a RuntimeConfig from a TOML file (only the
// subset of fields meaningful to serialize - LedgerCapacity; Logger is
// runtime-only and is never read from disk).
func LoadRuntimeConfigFile(path string) (*RuntimeConfig, error) {
	var onDisk struct {
		LedgerCapacity int `toml:"ledger_capacity"`
	}
	if _, err := toml.DecodeFile(path, &onDisk); err != nil {
		if os.IsNotExist(err) {
			return &RuntimeConfig{}, nil
		}
		return nil, &Error{Kind: KindSystem, Cause: err}
	}
	return &RuntimeConfig{LedgerCapacity: onDisk.LedgerCapacity}, nil
}

// Runtime is a single, independent pipe forest: its own root pool, error
// ledger, goroutine-context bindings, and shutdown relay race. Applications
// typically construct exactly one.
type Runtime struct {
	logger Logger
	ledger *Ledger

	poolMu   sync.Mutex
	poolHead *pipe

	ctxMu sync.Mutex
	ctx   map[int64]*pipe

	sync *syncState

	rootPlaceholder *pipe
}

// New constructs a Runtime. A nil config is equivalent to &RuntimeConfig{}.
func New(config *RuntimeConfig) *Runtime {
	if config == nil {
		config = &RuntimeConfig{}
	}
	if config.LedgerCapacity < 0 {
		panic(`nthm: negative LedgerCapacity`)
	}

	rt := &Runtime{
		logger: config.Logger,
		ledger: newLedger(config.LedgerCapacity),
		ctx:    make(map[int64]*pipe),
		sync:   newSyncState(),
	}
	if rt.logger == nil {
		rt.logger = noOpLogger{}
	}
	rt.rootPlaceholder = rt.newPlaceholder()
	rt.placed(rt.rootPlaceholder)
	return rt
}

// Ledger returns the Runtime's error ledger, for diagnostics (e.g. dumping
// it on final teardown - see Ledger.DumpFile).
func (rt *Runtime) Ledger() *Ledger {
	return rt.ledger
}
