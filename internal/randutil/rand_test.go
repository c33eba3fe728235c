package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for range 100 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewDiffersBySeed(t *testing.T) {
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestSeed(t *testing.T) {
	seed := int64(7)
	assert.Equal(t, int64(7), Seed(&seed))
	assert.NotZero(t, Seed(nil))
}
