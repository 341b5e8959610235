package nthm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_TetherAsBlockerAndFinisher(t *testing.T) {
	rt := New(nil)
	drain := rt.newPipe()
	blocker := rt.newPipe()
	finisher := rt.newPipe()

	rt.tether(drain, blocker, false)
	rt.tether(drain, finisher, true)

	drain.mu.Lock()
	assert.Same(t, blocker, drain.scope.blockers.head.pipe)
	assert.Same(t, finisher, drain.scope.finishers.head.pipe)
	drain.mu.Unlock()

	assert.False(t, rt.pooled(blocker))
	assert.False(t, rt.pooled(finisher))
}

func TestRuntime_SeverFromDrain_ReturnsToPool(t *testing.T) {
	rt := New(nil)
	drain := rt.newPipe()
	source := rt.newPipe()
	rt.tether(drain, source, false)

	rt.severFromDrain(source)

	drain.mu.Lock()
	empty := drain.scope.blockers.empty()
	drain.mu.Unlock()
	assert.True(t, empty)
	assert.True(t, rt.pooled(source))

	source.mu.Lock()
	assert.Nil(t, source.reader)
	source.mu.Unlock()
}

func TestKillable(t *testing.T) {
	p := &pipe{}
	assert.True(t, killable(p))
	p.killed = true
	assert.False(t, killable(p))

	p2 := &pipe{zombie: true}
	assert.False(t, killable(p2))
}

func TestDescendantsKilled_RecursesThroughTetherChain(t *testing.T) {
	rt := New(nil)
	drain := rt.newPipe()
	child := rt.newPipe()
	grandchild := rt.newPipe()

	rt.tether(drain, child, false)
	rt.tether(child, grandchild, false)

	rt.descendantsKilled(drain)

	child.mu.Lock()
	assert.True(t, child.killed)
	child.mu.Unlock()

	grandchild.mu.Lock()
	assert.True(t, grandchild.killed)
	grandchild.mu.Unlock()
}

func TestRuntime_VacateScopes_WarnsAndSevers(t *testing.T) {
	rt := New(nil)
	drain := rt.newPipe()
	child := rt.newPipe()

	drain.mu.Lock()
	drain.scope = &scopeFrame{parent: drain.scope, level: 1}
	drain.mu.Unlock()

	rt.tether(drain, child, false)

	drain.mu.Lock()
	rt.vacateScopes(drain)
	require.Equal(t, 0, drain.scope.level)
	drain.mu.Unlock()

	assert.Equal(t, 1, rt.ledger.Len())
	assert.True(t, rt.pooled(child))
}
