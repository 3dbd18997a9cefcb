package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"bazaar/internal/datastore"
	"bazaar/internal/models"
	"bazaar/internal/pkg"
	"bazaar/internal/pkg/caching"
)

type ServiceUser struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	postgresDB    *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	return &ServiceUser{container, redisDB, postgresDB, cache, readonlyCache}, nil
}

// FindOrCreateUser resolves the external subject to the internal user
// row, provisioning it with a zero balance on first sight. Repeat calls
// return the same row.
func (service *ServiceUser) FindOrCreateUser(ctx context.Context, subject *models.SubjectFromAuth) (*models.User, error) {
	if subject == nil || strings.TrimSpace(subject.SubjectID) == "" {
		return nil, errorx.Wrap(ErrSubjectMissing, errorx.Validation)
	}

	user, _ := service.FindUserBySubjectID(ctx, subject.SubjectID)
	if user != nil {
		if user.Username != subject.Username || user.Email != subject.Email {
			user.Username = subject.Username
			user.Email = subject.Email
			//nolint:errcheck
			datastore.UpdateUserProfile(ctx, service.postgresDB, user)
			_ = service.cache.Delete(ctx, DBKeyUserBySubject(subject.SubjectID))
			_ = service.cache.Delete(ctx, DBKeyUser(user.ID))
		}
		return user, nil
	}

	now := time.Now()
	newUser := &models.User{
		SubjectID:   subject.SubjectID,
		Username:    subject.Username,
		Email:       subject.Email,
		TradeCredit: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	log.Println("Create new user:", "subject:", newUser.SubjectID, "username:", newUser.Username)
	user, err := datastore.CreateUser(ctx, service.postgresDB, newUser)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	user.IsNewUser = true
	return user, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByID(ctx, service.postgresDB, userID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceUser) FindUserByIDNoCache(ctx context.Context, userID int64) (*models.User, error) {
	return datastore.FindUserByID(ctx, service.postgresDB, userID)
}

func (service *ServiceUser) FindUserBySubjectID(ctx context.Context, subjectID string) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserBySubjectID(ctx, service.postgresDB, subjectID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserBySubject(subjectID), CACHE_TTL_5_MINS, callback)
}

// Profile assembles the user together with owned items, current asset
// value and today's daily-action statuses for the /user/me surface.
// Display-only, no locks.
func (service *ServiceUser) Profile(ctx context.Context, user *models.User) (*models.User, error) {
	items, err := datastore.GetItemsByOwner(ctx, service.postgresDB, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	assetValue, err := datastore.GetUserAssetValue(ctx, service.postgresDB, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	today := pkg.Today()
	if _, err := datastore.GetDailyClaim(ctx, service.postgresDB, user.ID, today); err == nil {
		user.TodayClaimed = true
	}
	if _, err := datastore.GetReactionPlay(ctx, service.postgresDB, user.ID, today); err == nil {
		user.TodayPlayed = true
	}
	if uc, err := datastore.GetUserChallenge(ctx, service.postgresDB, user.ID, today); err == nil {
		user.TodayChallenge = uc
	}

	user.Items = items
	user.AssetValue = assetValue
	return user, nil
}

// ClearUserCache drops both cached views of the user. The subject key
// matters most: it is the one the auth middleware resolves through, so
// leaving it behind serves a stale balance on /user/me.
func (service *ServiceUser) ClearUserCache(ctx context.Context, userID int64) error {
	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return err
	}

	_ = service.cache.Delete(ctx, DBKeyUser(userID))
	return service.cache.Delete(ctx, DBKeyUserBySubject(user.SubjectID))
}
