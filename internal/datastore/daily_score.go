package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"bazaar/internal/models"
)

func CreateTableDailyScore(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyScore)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailyScore)(nil)).Index("index_daily_score_user_id_score_date").Unique().IfNotExists().Column("user_id", "score_date").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertDailyScore is insert-if-absent: re-initializing a day never
// overwrites the base score snapshotted at day start.
func InsertDailyScore(ctx context.Context, db bun.IDB, score *models.DailyScore) error {
	_, err := db.NewInsert().Model(score).On("CONFLICT (user_id, score_date) DO NOTHING").Exec(ctx)
	return err
}

func GetDailyScore(ctx context.Context, db bun.IDB, userID int64, date string) (*models.DailyScore, error) {
	var score models.DailyScore
	err := db.NewSelect().Model(&score).Where("user_id = ?", userID).Where("score_date = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func GetDailyScoreForUpdate(ctx context.Context, db bun.IDB, userID int64, date string) (*models.DailyScore, error) {
	var score models.DailyScore
	err := db.NewSelect().Model(&score).Where("user_id = ?", userID).Where("score_date = ?", date).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func GetLatestDailyScore(ctx context.Context, db bun.IDB, userID int64) (*models.DailyScore, error) {
	var score models.DailyScore
	err := db.NewSelect().Model(&score).Where("user_id = ?", userID).Order("score_date DESC").Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func FinalizeDailyScore(ctx context.Context, db bun.IDB, score *models.DailyScore) error {
	_, err := db.NewUpdate().
		Model(score).
		Set("final_score = ?", score.FinalScore).
		Set("bonus_score = ?", score.BonusScore).
		Set("earned_trade_credit = ?", score.EarnedTradeCredit).
		WherePK().
		Exec(ctx)
	return err
}
