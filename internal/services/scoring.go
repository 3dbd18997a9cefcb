package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"bazaar/internal/datastore"
	"bazaar/internal/models"
	"bazaar/internal/pkg"
)

type ScoreBreakdown struct {
	BaseScore    int64 `json:"base_score"`
	FinalScore   int64 `json:"final_score"`
	BonusScore   int64 `json:"bonus_score"`
	EarnedCredit int64 `json:"earned_credit"`
}

type ServiceScoring struct {
	container  *do.Injector
	rs         *redsync.Redsync
	postgresDB *bun.DB

	serviceConfig *ServiceConfig
}

func NewServiceScoring(container *do.Injector) (*ServiceScoring, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceScoring{container, rs, postgresDB, serviceConfig}, nil
}

// percentOf is floor(v*percent/100) with the multiply guarded against
// int64 overflow; oversized inputs fall back to dividing first, then
// saturate.
func percentOf(v, percent int64) int64 {
	if v <= 0 || percent <= 0 {
		return 0
	}
	if v > math.MaxInt64/percent {
		q := v / 100
		if q > math.MaxInt64/percent {
			return math.MaxInt64
		}
		return q * percent
	}
	return v * percent / 100
}

func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// ApplyBonus computes the end-of-day numbers from a base score and a
// challenge bonus percent. Earned credit is the payout share of the
// day's profit, floored, never negative.
func ApplyBonus(baseScore, bonusPercent, payoutPercent int64) ScoreBreakdown {
	bonus := percentOf(baseScore, bonusPercent)
	final := saturatingAdd(baseScore, bonus)
	profit := final - baseScore
	earned := percentOf(profit, payoutPercent)

	return ScoreBreakdown{
		BaseScore:    baseScore,
		FinalScore:   final,
		BonusScore:   bonus,
		EarnedCredit: earned,
	}
}

// Initialize snapshots the user's owned-item value as today's base
// score. Insert-if-absent: repeat calls never move an existing base.
func (service *ServiceScoring) Initialize(ctx context.Context, userID int64) error {
	return service.initializeDate(ctx, userID, pkg.Today())
}

func (service *ServiceScoring) initializeDate(ctx context.Context, userID int64, date string) error {
	base, err := datastore.SumOwnedHiddenValue(ctx, service.postgresDB, userID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	err = datastore.InsertDailyScore(ctx, service.postgresDB, &models.DailyScore{
		UserID:    userID,
		ScoreDate: date,
		BaseScore: base,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	return nil
}

// Finalize closes today's score row for the user.
func (service *ServiceScoring) Finalize(ctx context.Context, userID int64) (*ScoreBreakdown, error) {
	return service.finalizeDate(ctx, userID, pkg.Today())
}

// finalizeDate applies the completed-challenge bonus, writes the final
// numbers and credits the payout in one transaction.
func (service *ServiceScoring) finalizeDate(ctx context.Context, userID int64, date string) (*ScoreBreakdown, error) {
	payoutPercent, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_PROFIT_PAYOUT_PERCENT, DEFAULT_PROFIT_PAYOUT_PERCENT)

	var breakdown ScoreBreakdown

	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		score, err := datastore.GetDailyScoreForUpdate(ctx, tx, userID, date)
		if err != nil {
			return err
		}

		bonusPercent, err := datastore.GetCompletedChallengeBonus(ctx, tx, userID, date)
		if err != nil {
			return err
		}

		breakdown = ApplyBonus(score.BaseScore, bonusPercent, int64(payoutPercent))

		score.FinalScore = &breakdown.FinalScore
		score.BonusScore = breakdown.BonusScore
		score.EarnedTradeCredit = breakdown.EarnedCredit
		if err := datastore.FinalizeDailyScore(ctx, tx, score); err != nil {
			return err
		}

		if breakdown.EarnedCredit > 0 {
			if err := datastore.AddTradeCredit(ctx, tx, userID, breakdown.EarnedCredit); err != nil {
				return err
			}
		}

		return nil
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errorx.Wrap(err, errorx.NotExist)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if breakdown.EarnedCredit > 0 {
		service.afterFinalize(ctx, userID)
	}

	return &breakdown, nil
}

// afterFinalize refreshes derived state after the payout commit, the
// same way the purchase and claim paths do.
func (service *ServiceScoring) afterFinalize(ctx context.Context, userID int64) {
	if serviceUser, err := do.Invoke[*ServiceUser](service.container); err == nil {
		if err := serviceUser.ClearUserCache(ctx, userID); err != nil {
			log.Println(err)
		}
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](service.container)
	if err != nil {
		log.Println(err)
		return
	}

	if _, err := serviceLeaderboard.UpdateAssetLeaderboard(ctx, userID); err != nil {
		log.Println(err)
	}
}

// GetToday returns today's score row, open or closed.
func (service *ServiceScoring) GetToday(ctx context.Context, userID int64) (*models.DailyScore, error) {
	score, err := datastore.GetDailyScore(ctx, service.postgresDB, userID, pkg.Today())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return score, nil
}

// Rollover walks every user, closing the immediately preceding open day
// and opening today. Each user runs in its own transaction; one user's
// failure never aborts the rest. Self-healing no matter how often the
// trigger fires; multi-day gaps are not backfilled.
func (service *ServiceScoring) Rollover(ctx context.Context) error {
	mutex := service.rs.NewMutex(LockKeyRollover())
	if err := mutex.Lock(); err != nil {
		return errorx.Wrap(ErrRolloverLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	today := pkg.Today()
	limit := 100
	offset := 0

	for {
		users, err := datastore.GetUsersByLimit(ctx, service.postgresDB, limit, offset)
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}
		offset += limit

		if len(users) == 0 {
			return nil
		}

		for _, user := range users {
			if err := service.rolloverUser(ctx, user.ID, today); err != nil {
				log.Println("rollover user", user.ID, err)
			}
		}
	}
}

func (service *ServiceScoring) rolloverUser(ctx context.Context, userID int64, today string) error {
	latest, err := datastore.GetLatestDailyScore(ctx, service.postgresDB, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return service.initializeDate(ctx, userID, today)
	}
	if err != nil {
		return err
	}

	if latest.ScoreDate == today {
		return nil
	}

	if latest.IsOpen() {
		if _, err := service.finalizeDate(ctx, userID, latest.ScoreDate); err != nil {
			return err
		}
	}

	return service.initializeDate(ctx, userID, today)
}
