package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestComputeReward(t *testing.T) {
	tests := []struct {
		name     string
		score    int64
		perHit   int64
		cap      int64
		expected int64
	}{
		{"zero score", 0, 5, 100, 0},
		{"below cap", 10, 5, 100, 50},
		{"exactly cap", 20, 5, 100, 100},
		{"above cap", 21, 5, 100, 100},
		{"way above cap", 1_000_000, 5, 100, 100},
		{"single hit", 1, 5, 100, 5},
		{"astronomical score stays capped", 1 << 61, 5, 100, 100},
		{"max score stays capped", math.MaxInt64, 5, 100, 100},
		{"zero cap", 100, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeReward(tt.score, tt.perHit, tt.cap))
		})
	}
}

func TestComputeRewardProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		score := rapid.Int64Range(0, math.MaxInt64-1).Draw(t, "score")
		perHit := rapid.Int64Range(0, 1_000).Draw(t, "perHit")
		cap := rapid.Int64Range(0, 10_000).Draw(t, "cap")

		reward := ComputeReward(score, perHit, cap)
		if reward > cap {
			t.Fatalf("reward %d exceeds cap %d", reward, cap)
		}
		if reward < 0 {
			t.Fatalf("negative reward %d", reward)
		}

		// more hits never pay less
		bigger := ComputeReward(score+1, perHit, cap)
		if bigger < reward {
			t.Fatalf("reward decreased with score: %d -> %d", reward, bigger)
		}
	})
}
