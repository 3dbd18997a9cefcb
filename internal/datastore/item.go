package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"bazaar/internal/models"
)

func CreateTableItem(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Item)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Item)(nil)).Index("index_item_owner_id").IfNotExists().Column("owner_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateItem(ctx context.Context, db bun.IDB, item *models.Item) (*models.Item, error) {
	_, err := db.NewInsert().Model(item).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return item, nil
}

func FindItemByID(ctx context.Context, db bun.IDB, itemID int64) (*models.Item, error) {
	var item models.Item
	err := db.NewSelect().Model(&item).Where("id = ?", itemID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func GetItemForUpdate(ctx context.Context, db bun.IDB, itemID int64) (*models.Item, error) {
	var item models.Item
	err := db.NewSelect().Model(&item).Where("id = ?", itemID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemsForUpdate locks both trade-side items in ascending id order to
// keep the lock order fixed across concurrent accepts and purchases.
func GetItemsForUpdate(ctx context.Context, db bun.IDB, itemIDs []int64) ([]*models.Item, error) {
	var items []*models.Item
	err := db.NewSelect().Model(&items).Where("id IN (?)", bun.In(itemIDs)).Order("id ASC").For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func GetMarketplaceItems(ctx context.Context, db bun.IDB, excludeOwnerID int64) ([]*models.Item, error) {
	var items []*models.Item
	err := db.NewSelect().Model(&items).
		Where("owner_id IS DISTINCT FROM ?", excludeOwnerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func GetItemsByOwner(ctx context.Context, db bun.IDB, ownerID int64) ([]*models.Item, error) {
	var items []*models.Item
	err := db.NewSelect().Model(&items).Where("owner_id = ?", ownerID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func UpdateItemOwner(ctx context.Context, db bun.IDB, itemID int64, ownerID *int64) error {
	_, err := db.NewUpdate().
		Model((*models.Item)(nil)).
		Set("owner_id = ?", ownerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", itemID).
		Exec(ctx)
	return err
}

// TransferPoolItem assigns an unowned item, conditioned on it still
// being unowned at write time. Returns false when a concurrent claimer
// won the race.
func TransferPoolItem(ctx context.Context, db bun.IDB, itemID int64, ownerID int64) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.Item)(nil)).
		Set("owner_id = ?", ownerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", itemID).
		Where("owner_id IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func GetRandomPoolItem(ctx context.Context, db bun.IDB) (*models.Item, error) {
	var item models.Item
	err := db.NewSelect().Model(&item).
		Where("owner_id IS NULL").
		OrderExpr("random()").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func SumOwnedHiddenValue(ctx context.Context, db bun.IDB, ownerID int64) (int64, error) {
	var total int64
	err := db.NewSelect().
		ColumnExpr("COALESCE(SUM(hidden_value), 0)").
		TableExpr("item").
		Where("owner_id = ?", ownerID).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
