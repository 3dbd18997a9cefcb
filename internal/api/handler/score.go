package handler

import (
	"bazaar/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupScore struct {
	container *do.Injector
}

func (gr *groupScore) GetToday(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceScoring, err := do.Invoke[*services.ServiceScoring](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	score, err := serviceScoring.GetToday(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, score, nil)
}

// Initialize snapshots the caller's base score for today. Safe to call
// repeatedly.
func (gr *groupScore) Initialize(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceScoring, err := do.Invoke[*services.ServiceScoring](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceScoring.Initialize(ctx, user.ID); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	score, err := serviceScoring.GetToday(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, score, nil)
}

func (gr *groupScore) Finalize(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceScoring, err := do.Invoke[*services.ServiceScoring](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	breakdown, err := serviceScoring.Finalize(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, breakdown, nil)
}

// Rollover is the manual trigger; the cron binary fires the same path
// on schedule.
func (gr *groupScore) Rollover(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceScoring, err := do.Invoke[*services.ServiceScoring](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceScoring.Rollover(ctx); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, nil, nil)
}
