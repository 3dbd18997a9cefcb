package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"bazaar/internal/models"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_subject_id").Unique().IfNotExists().Column("subject_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db bun.IDB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserBySubjectID(ctx context.Context, db bun.IDB, subjectID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("subject_id = ?", subjectID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user keyed on subject_id. A concurrent first
// request for the same subject loses the insert silently and the caller
// re-reads, so provisioning stays idempotent.
func CreateUser(ctx context.Context, db bun.IDB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).On("CONFLICT (subject_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	return FindUserBySubjectID(ctx, db, user.SubjectID)
}

func UpdateUserProfile(ctx context.Context, db bun.IDB, user *models.User) (*models.User, error) {
	_, err := db.NewUpdate().Model(user).
		Set("username = ?", user.Username).
		Set("email = ?", user.Email).
		Set("updated_at = ?", time.Now()).
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserForUpdate locks the user row for the rest of the surrounding
// transaction. Callers are responsible for a fixed lock order.
func GetUserForUpdate(ctx context.Context, db bun.IDB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddTradeCredit applies a signed delta. The balance is never set
// directly outside migrations.
func AddTradeCredit(ctx context.Context, db bun.IDB, userID int64, delta int64) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("trade_credit = trade_credit + ?", delta).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func GetUsersByLimit(ctx context.Context, db bun.IDB, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Order("id ASC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// GetUserAssetValue returns trade credit plus the hidden value of every
// owned item, the score the leaderboard ranks by.
func GetUserAssetValue(ctx context.Context, db bun.IDB, userID int64) (int64, error) {
	var total int64
	err := db.NewSelect().
		ColumnExpr("u.trade_credit + COALESCE(SUM(i.hidden_value), 0)").
		TableExpr(`"user" u`).
		Join("LEFT JOIN item i ON i.owner_id = u.id").
		Where("u.id = ?", userID).
		GroupExpr("u.id").
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
