package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DailyClaim records the one free pool item handed to a user on a given
// day. The (user_id, claim_date) unique index is load-bearing: it is what
// makes a concurrent second claim lose.
type DailyClaim struct {
	bun.BaseModel `bun:"table:daily_claim"`
	ID            int64     `bun:"id,pk,autoincrement" json:"-"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	ItemID        int64     `bun:"item_id" json:"item_id"`
	ClaimDate     string    `bun:"claim_date" json:"claim_date"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
