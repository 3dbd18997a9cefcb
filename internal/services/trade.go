package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"bazaar/internal/datastore"
	"bazaar/internal/datastore/redis_store"
	"bazaar/internal/models"
	"bazaar/internal/pkg/caching"
)

type ServiceTrade struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	redisDBCache  redis.UniversalClient
	postgresDB    *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache

	serviceUser *ServiceUser
}

func NewServiceTrade(container *do.Injector) (*ServiceTrade, error) {
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

	return &ServiceTrade{container, redisDB, redisDBCache, postgresDB, cache, readonlyCache, serviceUser}, nil
}

// Propose records a pending item-for-item trade. The requester must own
// the offered item at proposal time; ownership of either item may still
// drift before the responder answers, which Respond re-checks.
func (service *ServiceTrade) Propose(ctx context.Context, requester *models.User, itemOfferedID, itemRequestedID, responderID int64) (*models.Trade, error) {
	if itemOfferedID == itemRequestedID {
		return nil, errorx.Wrap(errors.New("offered and requested items must differ"), errorx.Validation)
	}
	if responderID == requester.ID {
		return nil, errorx.Wrap(errors.New("cannot trade with yourself"), errorx.Validation)
	}

	offered, err := datastore.FindItemByID(ctx, service.postgresDB, itemOfferedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if offered.OwnerID == nil || *offered.OwnerID != requester.ID {
		return nil, errorx.Wrap(ErrNotItemOwner, errorx.Authn)
	}

	if _, err := datastore.FindItemByID(ctx, service.postgresDB, itemRequestedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(err, errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if _, err := service.serviceUser.FindUserByIDNoCache(ctx, responderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(err, errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	trade := &models.Trade{
		Ref:             uuid.New().String(),
		ItemOfferedID:   itemOfferedID,
		ItemRequestedID: itemRequestedID,
		RequesterID:     requester.ID,
		ResponderID:     responderID,
		Status:          models.TRADE_STATUS_PENDING,
		CreatedAt:       time.Now(),
	}

	trade, err = datastore.InsertTrade(ctx, service.postgresDB, trade)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return trade, nil
}

// Respond moves a pending trade to a terminal state. On accept the two
// item ownerships swap inside one transaction with both item rows
// locked in ascending id order; current ownership of both items is
// re-validated so a trade whose sides have drifted cannot move stale
// goods.
func (service *ServiceTrade) Respond(ctx context.Context, responder *models.User, ref string, decision string) (*models.Trade, error) {
	if decision != models.TRADE_DECISION_ACCEPT && decision != models.TRADE_DECISION_REJECT {
		return nil, errorx.Wrap(ErrInvalidDecision, errorx.Validation)
	}

	var trade *models.Trade

	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		trade, err = datastore.GetTradeForUpdate(ctx, tx, ref)
		if err != nil {
			return err
		}

		if trade.ResponderID != responder.ID {
			return ErrNotResponder
		}

		if !trade.IsPending() {
			return ErrTradeNotPending
		}

		if decision == models.TRADE_DECISION_REJECT {
			return datastore.UpdateTradeStatus(ctx, tx, trade, models.TRADE_STATUS_REJECTED)
		}

		items, err := datastore.GetItemsForUpdate(ctx, tx, []int64{trade.ItemOfferedID, trade.ItemRequestedID})
		if err != nil {
			return err
		}
		if len(items) != 2 {
			return sql.ErrNoRows
		}

		var offered, requested *models.Item
		for _, item := range items {
			switch item.ID {
			case trade.ItemOfferedID:
				offered = item
			case trade.ItemRequestedID:
				requested = item
			}
		}

		if offered.OwnerID == nil || *offered.OwnerID != trade.RequesterID {
			return ErrOwnershipDrifted
		}
		if requested.OwnerID == nil || *requested.OwnerID != trade.ResponderID {
			return ErrOwnershipDrifted
		}

		if err := datastore.UpdateItemOwner(ctx, tx, trade.ItemOfferedID, &trade.ResponderID); err != nil {
			return err
		}
		if err := datastore.UpdateItemOwner(ctx, tx, trade.ItemRequestedID, &trade.RequesterID); err != nil {
			return err
		}

		return datastore.UpdateTradeStatus(ctx, tx, trade, models.TRADE_STATUS_ACCEPTED)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, ErrNotResponder):
		return nil, errorx.Wrap(err, errorx.Authn)
	case errors.Is(err, ErrTradeNotPending), errors.Is(err, ErrOwnershipDrifted):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if trade.Status == models.TRADE_STATUS_ACCEPTED {
		service.afterAccept(ctx, trade)
	}

	return trade, nil
}

func (service *ServiceTrade) ListForUser(ctx context.Context, user *models.User) ([]*models.Trade, error) {
	trades, err := datastore.GetTradesForUser(ctx, service.postgresDB, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	for _, trade := range trades {
		trade.ItemOffered, _ = datastore.FindItemByID(ctx, service.postgresDB, trade.ItemOfferedID)
		trade.ItemRequested, _ = datastore.FindItemByID(ctx, service.postgresDB, trade.ItemRequestedID)
	}

	return trades, nil
}

func (service *ServiceTrade) afterAccept(ctx context.Context, trade *models.Trade) {
	caching.DeleteKeys(ctx, service.redisDBCache, "marketplace:*")

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](service.container)
	if err != nil {
		log.Println(err)
		return
	}

	for _, userID := range []int64{trade.RequesterID, trade.ResponderID} {
		if _, err := serviceLeaderboard.UpdateAssetLeaderboard(ctx, userID); err != nil {
			log.Println(err)
		}
	}

	offered, err := datastore.FindItemByID(ctx, service.postgresDB, trade.ItemOfferedID)
	if err != nil {
		log.Println(err)
		return
	}

	err = redis_store.PushActivity(ctx, service.redisDB, &models.ActivityEntry{
		Kind:      models.ACTIVITY_KIND_TRADE,
		ItemID:    offered.ID,
		ItemName:  offered.Name,
		ActorID:   trade.RequesterID,
		OtherID:   &trade.ResponderID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Println(err)
	}
}
