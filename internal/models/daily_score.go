package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DailyScore is one row per (user, date). FinalScore nil means the day
// is still open; finalization writes FinalScore, BonusScore and
// EarnedTradeCredit together.
type DailyScore struct {
	bun.BaseModel     `bun:"table:daily_score"`
	ID                int64     `bun:"id,pk,autoincrement" json:"-"`
	UserID            int64     `bun:"user_id" json:"user_id"`
	ScoreDate         string    `bun:"score_date" json:"score_date"`
	BaseScore         int64     `bun:"base_score" json:"base_score"`
	FinalScore        *int64    `bun:"final_score" json:"final_score"`
	BonusScore        int64     `bun:"bonus_score" json:"bonus_score"`
	EarnedTradeCredit int64     `bun:"earned_trade_credit" json:"earned_trade_credit"`
	CreatedAt         time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

func (s *DailyScore) IsOpen() bool {
	return s.FinalScore == nil
}
