package cancel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestartReturnsValidHandle(t *testing.T) {
	c := NewController()

	handle := c.Restart()

	assert.True(t, handle.Valid())
	select {
	case <-handle.Done():
		t.Fatal("fresh handle must not be done")
	default:
	}
}

func TestRestartInvalidatesPreviousGeneration(t *testing.T) {
	c := NewController()

	first := c.Restart()
	second := c.Restart()

	assert.False(t, first.Valid())
	assert.True(t, second.Valid())

	select {
	case <-first.Done():
	default:
		t.Fatal("superseded handle must observe done")
	}
}

func TestCancelLeavesNoActiveGeneration(t *testing.T) {
	c := NewController()

	handle := c.Restart()
	c.Cancel()

	assert.False(t, handle.Valid())
	select {
	case <-handle.Done():
	default:
		t.Fatal("cancelled handle must observe done")
	}
}

func TestCancelWithoutRestartIsHarmless(t *testing.T) {
	c := NewController()

	c.Cancel()
	c.Cancel()

	handle := c.Restart()
	assert.True(t, handle.Valid())
}

func TestZeroHandleIsInvalid(t *testing.T) {
	var handle Handle

	assert.False(t, handle.Valid())
	select {
	case <-handle.Done():
	default:
		t.Fatal("zero handle must read as done")
	}
}

func TestRestartAfterCancelStartsFreshGeneration(t *testing.T) {
	c := NewController()

	first := c.Restart()
	c.Cancel()
	second := c.Restart()

	assert.False(t, first.Valid())
	assert.True(t, second.Valid())
}
