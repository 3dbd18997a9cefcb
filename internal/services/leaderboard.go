package services

import (
	"context"
	"fmt"
	"log"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"bazaar/internal/datastore"
	"bazaar/internal/datastore/redis_store"
	"bazaar/internal/models"
	"bazaar/internal/pkg/caching"
)

type ServiceLeaderboard struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	redisDBCache  redis.UniversalClient
	postgresDB    *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache

	serviceUser   *ServiceUser
	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
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

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, redisDB, redisDBCache, postgresDB, cache, readonlyCache, serviceUser, serviceConfig}, nil
}

// UpdateAssetLeaderboard recomputes the user's total asset value from
// postgres and writes it to the redis sorted set. Called after every
// committed ownership or balance change for the users involved.
func (service *ServiceLeaderboard) UpdateAssetLeaderboard(ctx context.Context, userID int64) (*models.LeaderboardItem, error) {
	value, err := datastore.GetUserAssetValue(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, err
	}

	leaderboard, err := redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_ASSETS, &models.LeaderboardItem{
		UserId: userID,
		Score:  float64(value),
	})

	service.ClearLeaderboardCache(ctx, LEADERBOARD_ASSETS)

	return leaderboard, err
}

func (service *ServiceLeaderboard) GetAssetLeaderboard(ctx context.Context, user *models.User) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, DEFAULT_LEADERBOARD_LIMIT)
	return service.getLeaderboard(ctx, user, LEADERBOARD_ASSETS, limit)
}

func (service *ServiceLeaderboard) ClearLeaderboardCache(ctx context.Context, leaderboardName string) error {
	caching.DeleteKeys(ctx, service.redisDBCache, fmt.Sprintf("leaderboard_by_user:%s*", leaderboardName))
	return nil
}

func (service *ServiceLeaderboard) getLeaderboard(ctx context.Context, user *models.User, leaderboardName string, limit int) (*models.LeaderboardResponse, error) {
	callback := func() (*models.LeaderboardResponse, error) {
		leaderboard, err := redis_store.GetLeaderboard(ctx, service.redisDB, leaderboardName, limit)
		if err != nil {
			return nil, err
		}

		rank, err := redis_store.GetRank(ctx, service.redisDB, leaderboardName, user.ID)

		score := float64(0)
		if err == redis.Nil {
			rank = -1
		} else {
			score, err = redis_store.GetScore(ctx, service.redisDB, leaderboardName, user.ID)
		}

		if err != nil && err != redis.Nil {
			return nil, err
		}

		for _, item := range leaderboard {
			u, _ := service.serviceUser.FindUserByID(ctx, item.UserId)
			if u != nil {
				item.Username = u.Username
			}
		}

		return &models.LeaderboardResponse{
			Leaderboard: leaderboard,
			Me: &models.LeaderboardItem{
				Username: user.Username,
				UserId:   user.ID,
				Score:    score,
				Rank:     int(rank + 1),
			},
		}, nil
	}

	response, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardByUser(leaderboardName, user.ID), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return response, nil
}

// RebuildAssetLeaderboard repopulates the sorted set from postgres,
// paging through every user. Run at cron boot so a flushed redis does
// not leave an empty leaderboard.
func (service *ServiceLeaderboard) RebuildAssetLeaderboard(ctx context.Context) error {
	if err := redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_ASSETS); err != nil {
		return err
	}

	limit := 100
	offset := 0
	for {
		users, err := datastore.GetUsersByLimit(ctx, service.postgresDB, limit, offset)
		if err != nil {
			return err
		}
		offset += limit

		if len(users) == 0 {
			break
		}

		for _, user := range users {
			if _, err := service.UpdateAssetLeaderboard(ctx, user.ID); err != nil {
				log.Println("rebuild leaderboard user", user.ID, err)
			}
		}
	}

	return service.ClearLeaderboardCache(ctx, LEADERBOARD_ASSETS)
}

func (service *ServiceLeaderboard) GetActivityFeed(ctx context.Context) ([]*models.ActivityEntry, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_ACTIVITY_FEED_LIMIT, DEFAULT_ACTIVITY_FEED_LIMIT)

	entries, err := redis_store.GetActivityFeed(ctx, service.redisDB, limit)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return entries, nil
}
