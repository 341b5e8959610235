package nthm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_AppendIsBounded(t *testing.T) {
	l := newLedger(2)
	l.append("a", errors.New("1"))
	l.append("b", errors.New("2"))
	l.append("c", errors.New("3")) // dropped: ledger is full
	assert.Equal(t, 2, l.Len())
}

func TestLedger_DefaultCapacity(t *testing.T) {
	l := newLedger(0)
	assert.Equal(t, 16, l.cap)
}

func TestLedger_Deadlocked(t *testing.T) {
	l := newLedger(4)
	assert.False(t, l.Deadlocked())
	l.setDeadlocked()
	assert.True(t, l.Deadlocked())
}

func TestLedger_DumpFile(t *testing.T) {
	l := newLedger(4)
	l.append("nthm.test", errors.New("boom"))
	l.setDeadlocked()

	path := filepath.Join(t.TempDir(), "ledger.txt")
	require.NoError(t, l.DumpFile(path))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "nthm.test")
	assert.Contains(t, string(contents), "boom")
	assert.Contains(t, string(contents), "deadlocked: true")
}
