package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TRADE_STATUS_PENDING  = "pending"
	TRADE_STATUS_ACCEPTED = "accepted"
	TRADE_STATUS_REJECTED = "rejected"

	TRADE_DECISION_ACCEPT = "accept"
	TRADE_DECISION_REJECT = "reject"
)

// Trade is immutable once its status leaves pending.
type Trade struct {
	bun.BaseModel   `bun:"table:trade"`
	ID              int64     `bun:"id,pk,autoincrement" json:"-"`
	Ref             string    `bun:"ref" json:"ref"`
	ItemOfferedID   int64     `bun:"item_offered_id" json:"item_offered_id"`
	ItemRequestedID int64     `bun:"item_requested_id" json:"item_requested_id"`
	RequesterID     int64     `bun:"requester_id" json:"requester_id"`
	ResponderID     int64     `bun:"responder_id" json:"responder_id"`
	Status          string    `bun:"status" json:"status"`
	CreatedAt       time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	ItemOffered   *Item `bun:"-" json:"item_offered,omitempty"`
	ItemRequested *Item `bun:"-" json:"item_requested,omitempty"`
}

func (t *Trade) IsPending() bool {
	return t.Status == TRADE_STATUS_PENDING
}
