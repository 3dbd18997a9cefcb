package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"bazaar/internal/models"
)

func CreateTableReactionGamePlay(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ReactionGamePlay)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ReactionGamePlay)(nil)).Index("index_reaction_game_play_user_id_play_date").Unique().IfNotExists().Column("user_id", "play_date").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetReactionPlay(ctx context.Context, db bun.IDB, userID int64, date string) (*models.ReactionGamePlay, error) {
	var play models.ReactionGamePlay
	err := db.NewSelect().Model(&play).Where("user_id = ?", userID).Where("play_date = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &play, nil
}

func GetReactionPlayForUpdate(ctx context.Context, db bun.IDB, userID int64, date string) (*models.ReactionGamePlay, error) {
	var play models.ReactionGamePlay
	err := db.NewSelect().Model(&play).Where("user_id = ?", userID).Where("play_date = ?", date).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &play, nil
}

func InsertReactionPlay(ctx context.Context, db bun.IDB, play *models.ReactionGamePlay) error {
	_, err := db.NewInsert().Model(play).Exec(ctx)
	return err
}
