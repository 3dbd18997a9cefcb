package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDateOf(t *testing.T) {
	ts := time.Date(2024, 3, 7, 23, 59, 59, 0, time.Local)
	assert.Equal(t, "2024-03-07", DateOf(ts))

	next := ts.Add(time.Second)
	assert.Equal(t, "2024-03-08", DateOf(next))
}

func TestOrderedPair(t *testing.T) {
	lo, hi := OrderedPair(5, 2)
	assert.Equal(t, int64(2), lo)
	assert.Equal(t, int64(5), hi)

	lo, hi = OrderedPair(2, 5)
	assert.Equal(t, int64(2), lo)
	assert.Equal(t, int64(5), hi)

	lo, hi = OrderedPair(3, 3)
	assert.Equal(t, int64(3), lo)
	assert.Equal(t, int64(3), hi)
}

func TestOrderedPairProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64().Draw(t, "a")
		b := rapid.Int64().Draw(t, "b")

		lo, hi := OrderedPair(a, b)
		if lo > hi {
			t.Fatalf("pair out of order: %d > %d", lo, hi)
		}

		lo2, hi2 := OrderedPair(b, a)
		if lo != lo2 || hi != hi2 {
			t.Fatalf("order depends on argument order: (%d,%d) vs (%d,%d)", lo, hi, lo2, hi2)
		}
	})
}
