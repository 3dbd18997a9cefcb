package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/mroth/weightedrand/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"bazaar/internal/datastore"
	"bazaar/internal/models"
	"bazaar/internal/pkg"
)

type ServiceChallenge struct {
	container  *do.Injector
	postgresDB *bun.DB
}

func NewServiceChallenge(container *do.Injector) (*ServiceChallenge, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	return &ServiceChallenge{container, postgresDB}, nil
}

// GetDaily returns the user's challenge for today, assigning one on
// first call. The per-day unique index keeps concurrent first calls
// from producing two assignments; the loser of the insert re-reads.
func (service *ServiceChallenge) GetDaily(ctx context.Context, userID int64) (*models.UserChallenge, error) {
	today := pkg.Today()

	uc, err := datastore.GetUserChallenge(ctx, service.postgresDB, userID, today)
	if err == nil {
		return service.attachChallenge(ctx, uc)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	challenge, err := service.pickChallenge(ctx)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	err = datastore.InsertUserChallenge(ctx, service.postgresDB, &models.UserChallenge{
		UserID:       userID,
		ChallengeID:  challenge.ID,
		DateAssigned: today,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	uc, err = datastore.GetUserChallenge(ctx, service.postgresDB, userID, today)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return service.attachChallenge(ctx, uc)
}

// pickChallenge draws from the catalog, weighting every entry equally.
func (service *ServiceChallenge) pickChallenge(ctx context.Context) (*models.Challenge, error) {
	challenges, err := datastore.GetAllChallenges(ctx, service.postgresDB)
	if err != nil {
		return nil, err
	}
	if len(challenges) == 0 {
		return nil, ErrNoChallenges
	}

	choices := []weightedrand.Choice[*models.Challenge, int]{}
	for _, v := range challenges {
		choices = append(choices, weightedrand.NewChoice(v, 1))
	}

	picker, err := NewServicePicker[*models.Challenge](choices)
	if err != nil {
		return nil, err
	}

	return picker.Pick(), nil
}

// Complete marks the user's assigned challenge done. Idempotent:
// completing twice is a no-op.
func (service *ServiceChallenge) Complete(ctx context.Context, userID int64, userChallengeID int64) (*models.UserChallenge, error) {
	uc, err := datastore.FindUserChallengeByID(ctx, service.postgresDB, userChallengeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if uc.UserID != userID {
		return nil, errorx.Wrap(ErrNotChallengeOwner, errorx.Authn)
	}

	if !uc.IsCompleted {
		if err := datastore.MarkUserChallengeCompleted(ctx, service.postgresDB, uc.ID); err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		uc.IsCompleted = true
	}

	return service.attachChallenge(ctx, uc)
}

func (service *ServiceChallenge) attachChallenge(ctx context.Context, uc *models.UserChallenge) (*models.UserChallenge, error) {
	challenge, err := datastore.FindChallengeByID(ctx, service.postgresDB, uc.ChallengeID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	uc.Challenge = challenge
	return uc, nil
}
