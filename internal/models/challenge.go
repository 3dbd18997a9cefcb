package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	CHALLENGE_TYPE_TRADE    = "trade"
	CHALLENGE_TYPE_PURCHASE = "purchase"
	CHALLENGE_TYPE_SOCIAL   = "social"
)

type Challenge struct {
	bun.BaseModel `bun:"table:challenge"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Description   string `bun:"description" json:"description"`
	ChallengeType string `bun:"challenge_type" json:"challenge_type"`
	BonusPercent  int64  `bun:"bonus_percent" json:"bonus_percent"`
}

type UserChallenge struct {
	bun.BaseModel `bun:"table:user_challenge"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	ChallengeID   int64     `bun:"challenge_id" json:"challenge_id"`
	DateAssigned  string    `bun:"date_assigned" json:"date_assigned"`
	IsCompleted   bool      `bun:"is_completed" json:"is_completed"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	Challenge *Challenge `bun:"-" json:"challenge,omitempty"`
}
