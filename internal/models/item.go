package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ITEM_TYPE_COLLECTIBLE = "collectible"
	ITEM_TYPE_TOOL        = "tool"
	ITEM_TYPE_TROPHY      = "trophy"
)

// Item with OwnerID nil sits in the unowned pool and is eligible
// for the daily reward draw.
type Item struct {
	bun.BaseModel `bun:"table:item"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name" json:"name"`
	Description   string    `bun:"description" json:"description"`
	ImageURL      string    `bun:"image_url" json:"image_url"`
	HiddenValue   int64     `bun:"hidden_value" json:"hidden_value"`
	ItemType      string    `bun:"item_type" json:"item_type"`
	OwnerID       *int64    `bun:"owner_id" json:"owner_id"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`
}
