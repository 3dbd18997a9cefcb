package models

import "time"

type LeaderboardItem struct {
	Username string  `json:"username"`
	UserId   int64   `json:"user_id"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard []*LeaderboardItem `json:"leaderboard"`
	Me          *LeaderboardItem   `json:"me"`
}

const (
	ACTIVITY_KIND_PURCHASE = "purchase"
	ACTIVITY_KIND_TRADE    = "trade"
	ACTIVITY_KIND_CLAIM    = "claim"
)

// ActivityEntry is a feed item pushed to redis after a committed
// money-or-ownership move.
type ActivityEntry struct {
	Kind      string    `msgpack:"kind" json:"kind"`
	ItemID    int64     `msgpack:"item_id" json:"item_id"`
	ItemName  string    `msgpack:"item_name" json:"item_name"`
	ActorID   int64     `msgpack:"actor_id" json:"actor_id"`
	OtherID   *int64    `msgpack:"other_id" json:"other_id,omitempty"`
	Amount    int64     `msgpack:"amount" json:"amount"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at"`
}
