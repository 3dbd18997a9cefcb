package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"bazaar/internal/models"
)

func CreateTableTrade(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Trade)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Trade)(nil)).Index("index_trade_ref").Unique().IfNotExists().Column("ref").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Trade)(nil)).Index("index_trade_requester_id").IfNotExists().Column("requester_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Trade)(nil)).Index("index_trade_responder_id").IfNotExists().Column("responder_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertTrade(ctx context.Context, db bun.IDB, trade *models.Trade) (*models.Trade, error) {
	_, err := db.NewInsert().Model(trade).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return trade, nil
}

func FindTradeByRef(ctx context.Context, db bun.IDB, ref string) (*models.Trade, error) {
	var trade models.Trade
	err := db.NewSelect().Model(&trade).Where("ref = ?", ref).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// GetTradeForUpdate locks the trade row so two responses to the same
// trade serialize; the second one sees a terminal status.
func GetTradeForUpdate(ctx context.Context, db bun.IDB, ref string) (*models.Trade, error) {
	var trade models.Trade
	err := db.NewSelect().Model(&trade).Where("ref = ?", ref).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func UpdateTradeStatus(ctx context.Context, db bun.IDB, trade *models.Trade, status string) error {
	trade.Status = status
	_, err := db.NewUpdate().
		Model(trade).
		Set("status = ?", status).
		WherePK().
		Exec(ctx)
	return err
}

func GetTradesForUser(ctx context.Context, db bun.IDB, userID int64) ([]*models.Trade, error) {
	var trades []*models.Trade
	err := db.NewSelect().Model(&trades).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("requester_id = ?", userID).WhereOr("responder_id = ?", userID)
		}).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return trades, nil
}
