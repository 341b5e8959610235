package nthm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntime_PoolPlaceAndDisplace(t *testing.T) {
	rt := &Runtime{}
	a, b := &pipe{}, &pipe{}

	rt.placed(a)
	rt.placed(b)
	assert.True(t, rt.pooled(a))
	assert.True(t, rt.pooled(b))
	assert.Equal(t, 2, rt.poolSize())

	// placing an already-pooled pipe again is a no-op.
	rt.placed(a)
	assert.Equal(t, 2, rt.poolSize())

	rt.displace(a)
	assert.False(t, rt.pooled(a))
	assert.Equal(t, 1, rt.poolSize())

	rt.displace(a) // no-op: already displaced.
	assert.Equal(t, 1, rt.poolSize())
}

func TestRuntime_Unpool(t *testing.T) {
	rt := &Runtime{}
	a, b, c := &pipe{}, &pipe{}, &pipe{}
	rt.placed(a)
	rt.placed(b)
	rt.placed(c)

	rt.unpool(func(p *pipe) bool { return p != b })
	assert.True(t, rt.pooled(a))
	assert.False(t, rt.pooled(b))
	assert.True(t, rt.pooled(c))
}
