package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/go-redsync/redsync/v4"
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

type DailyRewardStatus struct {
	Claimed bool         `json:"claimed"`
	Item    *models.Item `json:"item,omitempty"`
}

type DailyRewardResult struct {
	Item           *models.Item `json:"item"`
	AlreadyClaimed bool         `json:"already_claimed"`
}

type ServiceDailyReward struct {
	container    *do.Injector
	redisDB      redis.UniversalClient
	redisDBCache redis.UniversalClient
	rs           *redsync.Redsync
	postgresDB   *bun.DB
	cache        caching.Cache
}

func NewServiceDailyReward(container *do.Injector) (*ServiceDailyReward, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	redisDBCache, err := do.InvokeNamed[redis.UniversalClient](container, "redis-cache")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
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

	return &ServiceDailyReward{container, redisDB, redisDBCache, rs, postgresDB, cache}, nil
}

// Status is a lock-free read; it may be stale the moment it returns.
func (service *ServiceDailyReward) Status(ctx context.Context, user *models.User) (*DailyRewardStatus, error) {
	claim, err := datastore.GetDailyClaim(ctx, service.postgresDB, user.ID, pkg.Today())
	if errors.Is(err, sql.ErrNoRows) {
		return &DailyRewardStatus{Claimed: false}, nil
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	item, err := datastore.FindItemByID(ctx, service.postgresDB, claim.ItemID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &DailyRewardStatus{Claimed: true, Item: item}, nil
}

// Claim hands out one random pool item per user per day. A re-claim on
// the same day returns the recorded item unchanged. The conditional
// pool transfer keeps the draw race-free: two users reaching for the
// last pool item resolve into one success and one conflict.
func (service *ServiceDailyReward) Claim(ctx context.Context, user *models.User) (*DailyRewardResult, error) {
	mutex := service.rs.NewMutex(LockKeyDailyClaim(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrClaimLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	today := pkg.Today()
	var result DailyRewardResult

	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		claim, err := datastore.GetDailyClaimForUpdate(ctx, tx, user.ID, today)
		if err == nil {
			item, err := datastore.FindItemByID(ctx, tx, claim.ItemID)
			if err != nil {
				return err
			}
			result.Item = item
			result.AlreadyClaimed = true
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		item, err := datastore.GetRandomPoolItem(ctx, tx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoItemsAvailable
		}
		if err != nil {
			return err
		}

		won, err := datastore.TransferPoolItem(ctx, tx, item.ID, user.ID)
		if err != nil {
			return err
		}
		if !won {
			return ErrPoolConflict
		}

		err = datastore.InsertDailyClaim(ctx, tx, &models.DailyClaim{
			UserID:    user.ID,
			ItemID:    item.ID,
			ClaimDate: today,
			CreatedAt: time.Now(),
		})
		if err != nil {
			return err
		}

		item.OwnerID = &user.ID
		result.Item = item
		return nil
	})
	switch {
	case errors.Is(err, ErrNoItemsAvailable):
		return nil, errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, ErrPoolConflict):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if !result.AlreadyClaimed {
		service.afterClaim(ctx, user, result.Item)
	}

	return &result, nil
}

func (service *ServiceDailyReward) afterClaim(ctx context.Context, user *models.User, item *models.Item) {
	caching.DeleteKeys(ctx, service.redisDBCache, "marketplace:*")

	if serviceUser, err := do.Invoke[*ServiceUser](service.container); err == nil {
		if err := serviceUser.ClearUserCache(ctx, user.ID); err != nil {
			log.Println(err)
		}
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](service.container)
	if err != nil {
		log.Println(err)
		return
	}

	if _, err := serviceLeaderboard.UpdateAssetLeaderboard(ctx, user.ID); err != nil {
		log.Println(err)
	}

	err = redis_store.PushActivity(ctx, service.redisDB, &models.ActivityEntry{
		Kind:      models.ACTIVITY_KIND_CLAIM,
		ItemID:    item.ID,
		ItemName:  item.Name,
		ActorID:   user.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Println(err)
	}
}
