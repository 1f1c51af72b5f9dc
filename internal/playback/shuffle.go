package playback

import (
	"math/rand"
	"slices"
)

// newShuffleOrder returns a permutation of [0,n) whose first element is
// current, so the shuffled queue always begins at the track that was active
// when shuffle was enabled.
func newShuffleOrder(n, current int, rng *rand.Rand) []int {
	if n <= 0 {
		return nil
	}
	if current < 0 || current >= n {
		current = 0
	}

	rest := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != current {
			rest = append(rest, i)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	order := make([]int, 0, n)
	order = append(order, current)
	return append(order, rest...)
}

// nextIndexLocked computes the index following the current one, wrapping
// cyclically. With shuffle enabled it walks the shuffle order, which may be
// stale after appends: tracks added since the last toggle are skipped until
// shuffle is retoggled.
func (c *Controller) nextIndexLocked() int {
	if c.shuffle && len(c.order) > 0 {
		pos := slices.Index(c.order, c.current)
		// pos is -1 when the current track is absent from a stale order;
		// the walk then restarts at the order's first element.
		return c.order[(pos+1+len(c.order))%len(c.order)]
	}
	return (c.current + 1) % c.list.Len()
}

// prevIndexLocked computes the index preceding the current one, wrapping
// cyclically and respecting the shuffle order when enabled.
func (c *Controller) prevIndexLocked() int {
	if c.shuffle && len(c.order) > 0 {
		pos := slices.Index(c.order, c.current)
		return c.order[(pos-1+2*len(c.order))%len(c.order)]
	}
	n := c.list.Len()
	return (c.current - 1 + n) % n
}
