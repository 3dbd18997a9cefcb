package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestApplyBonus(t *testing.T) {
	tests := []struct {
		name          string
		base          int64
		bonusPercent  int64
		payoutPercent int64
		expected      ScoreBreakdown
	}{
		{
			name:          "no bonus no payout",
			base:          1000,
			bonusPercent:  0,
			payoutPercent: 25,
			expected:      ScoreBreakdown{BaseScore: 1000, FinalScore: 1000, BonusScore: 0, EarnedCredit: 0},
		},
		{
			name:          "ten percent bonus",
			base:          1000,
			bonusPercent:  10,
			payoutPercent: 25,
			expected:      ScoreBreakdown{BaseScore: 1000, FinalScore: 1100, BonusScore: 100, EarnedCredit: 25},
		},
		{
			name:          "payout floors",
			base:          110,
			bonusPercent:  10,
			payoutPercent: 25,
			// bonus 11, profit 11, 25% of 11 = 2.75 -> 2
			expected: ScoreBreakdown{BaseScore: 110, FinalScore: 121, BonusScore: 11, EarnedCredit: 2},
		},
		{
			name:          "zero base",
			base:          0,
			bonusPercent:  12,
			payoutPercent: 25,
			expected:      ScoreBreakdown{BaseScore: 0, FinalScore: 0, BonusScore: 0, EarnedCredit: 0},
		},
		{
			name:          "bonus percent floors",
			base:          99,
			bonusPercent:  10,
			payoutPercent: 100,
			// 99*10/100 = 9.9 -> 9
			expected: ScoreBreakdown{BaseScore: 99, FinalScore: 108, BonusScore: 9, EarnedCredit: 9},
		},
		{
			name:          "astronomical base keeps positive bonus",
			base:          1 << 62,
			bonusPercent:  10,
			payoutPercent: 25,
			// divide-first fallback: floors at the division step
			expected: ScoreBreakdown{
				BaseScore:    1 << 62,
				FinalScore:   5072854620270126694,
				BonusScore:   461168601842738790,
				EarnedCredit: 115292150460684675,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyBonus(tt.base, tt.bonusPercent, tt.payoutPercent))
		})
	}
}

func TestApplyBonusProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.Int64Range(0, math.MaxInt64).Draw(t, "base")
		bonusPercent := rapid.Int64Range(0, 100).Draw(t, "bonusPercent")
		payoutPercent := rapid.Int64Range(0, 100).Draw(t, "payoutPercent")

		b := ApplyBonus(base, bonusPercent, payoutPercent)

		if b.BonusScore < 0 {
			t.Fatalf("negative bonus %d", b.BonusScore)
		}
		if b.EarnedCredit < 0 {
			t.Fatalf("negative earned credit %d", b.EarnedCredit)
		}
		if b.FinalScore < b.BaseScore {
			t.Fatalf("final %d below base %d with non-negative bonus", b.FinalScore, b.BaseScore)
		}
		// exact sum unless the addition saturated
		if b.FinalScore != math.MaxInt64 && b.FinalScore != b.BaseScore+b.BonusScore {
			t.Fatalf("final %d != base %d + bonus %d", b.FinalScore, b.BaseScore, b.BonusScore)
		}
		// payout never exceeds profit
		if b.EarnedCredit > b.FinalScore-b.BaseScore {
			t.Fatalf("earned %d exceeds profit %d", b.EarnedCredit, b.FinalScore-b.BaseScore)
		}
	})
}
