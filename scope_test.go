package nthm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaturatingIncrement(t *testing.T) {
	assert.Equal(t, uint32(1), saturatingIncrement(0))
	assert.Equal(t, uint32(math.MaxUint32), saturatingIncrement(math.MaxUint32))
	assert.Equal(t, uint32(math.MaxUint32), saturatingIncrement(math.MaxUint32-1))
}

func TestScopeFrame_Truncate(t *testing.T) {
	f := newSentinelFrame()
	assert.Zero(t, f.truncation)
	f.truncate()
	f.truncate()
	assert.Equal(t, uint32(2), f.truncation)
}

func TestFrameAtDepth(t *testing.T) {
	drain := &pipe{scope: newSentinelFrame()}
	drain.scope = &scopeFrame{parent: drain.scope, level: 1}
	depthOne := drain.scope
	drain.scope = &scopeFrame{parent: drain.scope, level: 2}

	assert.Same(t, drain.scope, frameAtDepth(drain, 2))
	assert.Same(t, depthOne, frameAtDepth(drain, 1))
	assert.Equal(t, 0, frameAtDepth(drain, 0).level)
}
