package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"bazaar/internal/datastore"
	"bazaar/internal/interfaces"
	"bazaar/internal/models"
	"bazaar/internal/pkg"
	"bazaar/internal/pkg/caching"
	"bazaar/internal/pkg/limiter"
)

type ReactionGameStatus struct {
	CanPlay bool   `json:"can_play"`
	Score   *int64 `json:"score,omitempty"`
	Reward  *int64 `json:"reward,omitempty"`
}

type ReactionGameResult struct {
	Reward         int64 `json:"reward"`
	NewBalance     int64 `json:"new_balance"`
	AlreadyClaimed bool  `json:"already_claimed"`
}

type ServiceReactionGame struct {
	container  *do.Injector
	rs         *redsync.Redsync
	postgresDB *bun.DB
	cache      caching.Cache

	serviceConfig *ServiceConfig
	limiter       interfaces.Limiter
}

func NewServiceReactionGame(container *do.Injector) (*ServiceReactionGame, error) {
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	return &ServiceReactionGame{container, rs, postgresDB, cache, serviceConfig, rateLimiter}, nil
}

// ComputeReward converts a hit count to credit: perHit per hit, capped.
// The cap comparison happens before the multiply so an astronomical
// score cannot overflow into a negative reward.
func ComputeReward(score, perHit, cap int64) int64 {
	if score <= 0 || perHit <= 0 || cap <= 0 {
		return 0
	}
	if score > cap/perHit {
		return cap
	}
	return score * perHit
}

func (service *ServiceReactionGame) Status(ctx context.Context, user *models.User) (*ReactionGameStatus, error) {
	play, err := datastore.GetReactionPlay(ctx, service.postgresDB, user.ID, pkg.Today())
	if errors.Is(err, sql.ErrNoRows) {
		return &ReactionGameStatus{CanPlay: true}, nil
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &ReactionGameStatus{
		CanPlay: false,
		Score:   &play.Score,
		Reward:  &play.RewardClaimed,
	}, nil
}

// Claim converts today's score into credit once. A second submission on
// the same day returns the stored result regardless of the new score.
func (service *ServiceReactionGame) Claim(ctx context.Context, user *models.User, score int64) (*ReactionGameResult, error) {
	if score < 0 {
		return nil, errorx.Wrap(ErrInvalidScore, errorx.Validation)
	}

	err := service.limiter.Allow(ctx, LimitKeyReactionClaim(user.ID), redis_rate.PerMinute(REACTION_CLAIM_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		if errors.Is(err, limiter.ErrRateLimited) {
			return nil, errorx.Wrap(err, errorx.RateLimiting)
		}
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyReactionClaim(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrReactionLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	perHit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_REACTION_REWARD_PER_HIT, DEFAULT_REACTION_REWARD_PER_HIT)
	rewardCap, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_REACTION_REWARD_CAP, DEFAULT_REACTION_REWARD_CAP)

	today := pkg.Today()
	var result ReactionGameResult

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		play, err := datastore.GetReactionPlayForUpdate(ctx, tx, user.ID, today)
		if err == nil {
			lockedUser, err := datastore.GetUserForUpdate(ctx, tx, user.ID)
			if err != nil {
				return err
			}
			result.Reward = play.RewardClaimed
			result.NewBalance = lockedUser.TradeCredit
			result.AlreadyClaimed = true
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		reward := ComputeReward(score, int64(perHit), int64(rewardCap))

		err = datastore.InsertReactionPlay(ctx, tx, &models.ReactionGamePlay{
			UserID:        user.ID,
			PlayDate:      today,
			Score:         score,
			RewardClaimed: reward,
			CreatedAt:     time.Now(),
		})
		if err != nil {
			return err
		}

		lockedUser, err := datastore.GetUserForUpdate(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		if reward > 0 {
			if err := datastore.AddTradeCredit(ctx, tx, user.ID, reward); err != nil {
				return err
			}
		}

		result.Reward = reward
		result.NewBalance = lockedUser.TradeCredit + reward
		return nil
	})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if !result.AlreadyClaimed && result.Reward > 0 {
		serviceUser, err := do.Invoke[*ServiceUser](service.container)
		if err == nil {
			//nolint:errcheck
			serviceUser.ClearUserCache(ctx, user.ID)
		}

		serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](service.container)
		if err == nil {
			//nolint:errcheck
			serviceLeaderboard.UpdateAssetLeaderboard(ctx, user.ID)
		}
	}

	return &result, nil
}
