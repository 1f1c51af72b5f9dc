package playback

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShuffleOrder_AnchorsCurrent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for n := 1; n <= 8; n++ {
		for current := 0; current < n; current++ {
			order := newShuffleOrder(n, current, rng)

			assert.Len(t, order, n)
			assert.Equal(t, current, order[0], "order must start at the current index")

			seen := make(map[int]bool, n)
			for _, i := range order {
				assert.GreaterOrEqual(t, i, 0)
				assert.Less(t, i, n)
				assert.False(t, seen[i], "index %d appears twice", i)
				seen[i] = true
			}
		}
	}
}

func TestNewShuffleOrder_Empty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Nil(t, newShuffleOrder(0, 0, rng))
}

func TestNewShuffleOrder_InvalidCurrentFallsBackToZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	order := newShuffleOrder(4, -1, rng)
	assert.Equal(t, 0, order[0])

	order = newShuffleOrder(4, 9, rng)
	assert.Equal(t, 0, order[0])
}
