package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"bazaar/internal/models"
)

func CreateTableDailyClaim(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyClaim)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailyClaim)(nil)).Index("index_daily_claim_user_id_claim_date").Unique().IfNotExists().Column("user_id", "claim_date").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetDailyClaim(ctx context.Context, db bun.IDB, userID int64, date string) (*models.DailyClaim, error) {
	var claim models.DailyClaim
	err := db.NewSelect().Model(&claim).Where("user_id = ?", userID).Where("claim_date = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func GetDailyClaimForUpdate(ctx context.Context, db bun.IDB, userID int64, date string) (*models.DailyClaim, error) {
	var claim models.DailyClaim
	err := db.NewSelect().Model(&claim).Where("user_id = ?", userID).Where("claim_date = ?", date).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func InsertDailyClaim(ctx context.Context, db bun.IDB, claim *models.DailyClaim) error {
	_, err := db.NewInsert().Model(claim).Exec(ctx)
	return err
}
