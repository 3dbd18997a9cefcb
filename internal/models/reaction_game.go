package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ReactionGamePlay struct {
	bun.BaseModel `bun:"table:reaction_game_play"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	PlayDate      string    `bun:"play_date" json:"play_date"`
	Score         int64     `bun:"score" json:"score"`
	RewardClaimed int64     `bun:"reward_claimed" json:"reward_claimed"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
