package handler

import (
	"bazaar/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupTrade struct {
	container *do.Injector
}

type TradeProposalPayload struct {
	ItemOfferedID   int64 `json:"item_offered_id"`
	ItemRequestedID int64 `json:"item_requested_id"`
	ResponderID     int64 `json:"responder_id"`
}

type TradeDecisionPayload struct {
	Decision string `json:"decision"`
}

func (gr *groupTrade) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceTrade, err := do.Invoke[*services.ServiceTrade](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	trades, err := serviceTrade.ListForUser(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, trades, nil)
}

func (gr *groupTrade) Propose(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload TradeProposalPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceTrade, err := do.Invoke[*services.ServiceTrade](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	trade, err := serviceTrade.Propose(ctx, user, payload.ItemOfferedID, payload.ItemRequestedID, payload.ResponderID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, trade, nil)
}

func (gr *groupTrade) Respond(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload TradeDecisionPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceTrade, err := do.Invoke[*services.ServiceTrade](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	trade, err := serviceTrade.Respond(ctx, user, c.Param("ref"), payload.Decision)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, trade, nil)
}
