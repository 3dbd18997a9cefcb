package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"bazaar/internal/datastore"
	"bazaar/internal/datastore/redis_store"
	"bazaar/internal/models"
	"bazaar/internal/pkg"
	"bazaar/internal/pkg/caching"
)

type PurchaseResult struct {
	Item       *models.Item `json:"item"`
	NewBalance int64        `json:"new_balance"`
}

type ServiceMarketplace struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	redisDBCache  redis.UniversalClient
	postgresDB    *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceMarketplace(container *do.Injector) (*ServiceMarketplace, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	redisDBCache, err := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMarketplace{container, redisDB, redisDBCache, postgresDB, cache, readonlyCache}, nil
}

// ListItems returns every item the caller does not own, pool items
// included. Display-only, served through the cache.
func (service *ServiceMarketplace) ListItems(ctx context.Context, user *models.User) ([]*models.Item, error) {
	callback := func() ([]*models.Item, error) {
		return datastore.GetMarketplaceItems(ctx, service.postgresDB, user.ID)
	}

	items, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyMarketplace(user.ID), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return items, nil
}

func (service *ServiceMarketplace) GetItem(ctx context.Context, itemID int64) (*models.Item, error) {
	item, err := datastore.FindItemByID(ctx, service.postgresDB, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return item, nil
}

// Purchase debits the buyer, credits the previous owner when one
// exists, and transfers ownership, all in one transaction. An unowned
// item mints the credit from the pool. Lock order is item row first,
// then user rows by ascending id.
func (service *ServiceMarketplace) Purchase(ctx context.Context, buyer *models.User, itemID int64, offeredPrice int64) (*PurchaseResult, error) {
	if offeredPrice < 0 {
		return nil, errorx.Wrap(ErrInvalidPrice, errorx.Validation)
	}

	var result PurchaseResult
	var sellerID *int64

	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		item, err := datastore.GetItemForUpdate(ctx, tx, itemID)
		if err != nil {
			return err
		}

		if item.OwnerID != nil && *item.OwnerID == buyer.ID {
			return ErrAlreadyOwned
		}

		sellerID = item.OwnerID

		var lockedBuyer *models.User
		if sellerID == nil {
			lockedBuyer, err = datastore.GetUserForUpdate(ctx, tx, buyer.ID)
			if err != nil {
				return err
			}
		} else {
			first, second := pkg.OrderedPair(buyer.ID, *sellerID)
			lockedFirst, err := datastore.GetUserForUpdate(ctx, tx, first)
			if err != nil {
				return err
			}
			lockedSecond, err := datastore.GetUserForUpdate(ctx, tx, second)
			if err != nil {
				return err
			}
			if lockedFirst.ID == buyer.ID {
				lockedBuyer = lockedFirst
			} else {
				lockedBuyer = lockedSecond
			}
		}

		if lockedBuyer.TradeCredit < offeredPrice {
			return ErrInsufficientFunds
		}

		if err := datastore.AddTradeCredit(ctx, tx, buyer.ID, -offeredPrice); err != nil {
			return err
		}

		if sellerID != nil {
			if err := datastore.AddTradeCredit(ctx, tx, *sellerID, offeredPrice); err != nil {
				return err
			}
		}

		if err := datastore.UpdateItemOwner(ctx, tx, item.ID, &buyer.ID); err != nil {
			return err
		}

		item.OwnerID = &buyer.ID
		result.Item = item
		result.NewBalance = lockedBuyer.TradeCredit - offeredPrice
		return nil
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, ErrAlreadyOwned), errors.Is(err, ErrInsufficientFunds):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.afterPurchase(ctx, buyer.ID, sellerID, result.Item, offeredPrice)
	return &result, nil
}

// afterPurchase refreshes derived state outside the transaction; a
// stale leaderboard entry is acceptable, the ledger is not.
func (service *ServiceMarketplace) afterPurchase(ctx context.Context, buyerID int64, sellerID *int64, item *models.Item, price int64) {
	caching.DeleteKeys(ctx, service.redisDBCache, "marketplace:*")

	if serviceUser, err := do.Invoke[*ServiceUser](service.container); err == nil {
		if err := serviceUser.ClearUserCache(ctx, buyerID); err != nil {
			log.Println(err)
		}
		if sellerID != nil {
			if err := serviceUser.ClearUserCache(ctx, *sellerID); err != nil {
				log.Println(err)
			}
		}
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](service.container)
	if err != nil {
		log.Println(err)
		return
	}

	if _, err := serviceLeaderboard.UpdateAssetLeaderboard(ctx, buyerID); err != nil {
		log.Println(err)
	}

	if sellerID != nil {
		if _, err := serviceLeaderboard.UpdateAssetLeaderboard(ctx, *sellerID); err != nil {
			log.Println(err)
		}
	}

	err = redis_store.PushActivity(ctx, service.redisDB, &models.ActivityEntry{
		Kind:      models.ACTIVITY_KIND_PURCHASE,
		ItemID:    item.ID,
		ItemName:  item.Name,
		ActorID:   buyerID,
		OtherID:   sellerID,
		Amount:    price,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Println(err)
	}
}
