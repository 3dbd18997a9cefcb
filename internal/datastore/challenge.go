package datastore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"bazaar/internal/models"
)

func CreateTableChallenge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Challenge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func CreateTableUserChallenge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserChallenge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserChallenge)(nil)).Index("index_user_challenge_user_id_date").Unique().IfNotExists().Column("user_id", "date_assigned").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertChallenge(ctx context.Context, db bun.IDB, challenge *models.Challenge) error {
	_, err := db.NewInsert().Model(challenge).Exec(ctx)
	return err
}

func GetAllChallenges(ctx context.Context, db bun.IDB) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := db.NewSelect().Model(&challenges).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

func FindChallengeByID(ctx context.Context, db bun.IDB, challengeID int64) (*models.Challenge, error) {
	var challenge models.Challenge
	err := db.NewSelect().Model(&challenge).Where("id = ?", challengeID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// InsertUserChallenge keeps at most one assignment per (user, date); a
// concurrent duplicate insert is dropped and the caller re-reads.
func InsertUserChallenge(ctx context.Context, db bun.IDB, uc *models.UserChallenge) error {
	_, err := db.NewInsert().Model(uc).On("CONFLICT (user_id, date_assigned) DO NOTHING").Exec(ctx)
	return err
}

func GetUserChallenge(ctx context.Context, db bun.IDB, userID int64, date string) (*models.UserChallenge, error) {
	var uc models.UserChallenge
	err := db.NewSelect().Model(&uc).Where("user_id = ?", userID).Where("date_assigned = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func FindUserChallengeByID(ctx context.Context, db bun.IDB, id int64) (*models.UserChallenge, error) {
	var uc models.UserChallenge
	err := db.NewSelect().Model(&uc).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func MarkUserChallengeCompleted(ctx context.Context, db bun.IDB, id int64) error {
	_, err := db.NewUpdate().
		Model((*models.UserChallenge)(nil)).
		Set("is_completed = true").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// GetCompletedChallengeBonus returns the bonus percent of the user's
// completed challenge for the date, 0 when none was completed.
func GetCompletedChallengeBonus(ctx context.Context, db bun.IDB, userID int64, date string) (int64, error) {
	var bonus int64
	err := db.NewSelect().
		ColumnExpr("c.bonus_percent").
		TableExpr("user_challenge uc").
		Join("JOIN challenge c ON c.id = uc.challenge_id").
		Where("uc.user_id = ?", userID).
		Where("uc.date_assigned = ?", date).
		Where("uc.is_completed").
		Scan(ctx, &bonus)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return bonus, nil
}
