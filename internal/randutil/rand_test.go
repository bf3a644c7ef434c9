package randutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "same seed must yield same sequence")
	}
}

func TestNewDifferentSeeds(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 4; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
		}
	}
	assert.False(t, same, "different seeds should diverge")
}

func TestShuffleIsPermutation(t *testing.T) {
	rng := New(7)
	s := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	Shuffle(rng, s)

	sorted := append([]int(nil), s...)
	sort.Ints(sorted)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, sorted)
}

func TestShuffleSmallSlices(t *testing.T) {
	rng := New(1)
	Shuffle(rng, []int{})
	one := []int{42}
	Shuffle(rng, one)
	assert.Equal(t, []int{42}, one)
}

func TestChildIndependence(t *testing.T) {
	parent := New(99)
	c1 := Child(parent)
	c2 := Child(parent)
	assert.NotEqual(t, c1.Uint64(), c2.Uint64(), "children drawn from the same parent should differ")
}
