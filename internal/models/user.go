package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:user"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	SubjectID     string    `bun:"subject_id" json:"-"`
	Username      string    `bun:"username" json:"username"`
	Email         string    `bun:"email" json:"-"`
	TradeCredit   int64     `bun:"trade_credit" json:"trade_credit"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`

	Items          []*Item        `bun:"-" json:"items,omitempty"`
	AssetValue     int64          `bun:"-" json:"asset_value"`
	IsNewUser      bool           `bun:"-" json:"is_new_user"`
	TodayClaimed   bool           `bun:"-" json:"today_claimed"`
	TodayPlayed    bool           `bun:"-" json:"today_played"`
	TodayChallenge *UserChallenge `bun:"-" json:"today_challenge,omitempty"`
}

// SubjectFromAuth only use in middleware
type SubjectFromAuth struct {
	SubjectID string `json:"sub"`
	Email     string `json:"email"`
	Username  string `json:"username"`
}
