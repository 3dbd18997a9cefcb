package handler

import (
	"net/http"

	"bazaar/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🛒")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated requests.
		routesAPIv1.GET("", Hello)

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/me", u.Me)

		m := groupMarketplace{cfg.Container}
		routesAPIv1.GET("/items", m.ListItems)
		routesAPIv1.GET("/item/:id", m.GetItem)
		routesAPIv1.POST("/item/:id/purchase", m.Purchase)

		t := groupTrade{cfg.Container}
		routesAPIv1.GET("/trades", t.List)
		routesAPIv1.POST("/trade", t.Propose)
		routesAPIv1.POST("/trade/:ref/respond", t.Respond)

		d := groupDailyReward{cfg.Container}
		routesAPIv1.GET("/reward/daily", d.Status)
		routesAPIv1.POST("/reward/daily/claim", d.Claim)

		g := groupReactionGame{cfg.Container}
		routesAPIv1.GET("/game/reaction", g.Status)
		routesAPIv1.POST("/game/reaction/claim", g.Claim)

		ch := groupChallenge{cfg.Container}
		routesAPIv1.GET("/challenge/daily", ch.GetDaily)
		routesAPIv1.POST("/challenge/:id/complete", ch.Complete)

		s := groupScore{cfg.Container}
		routesAPIv1.GET("/score/today", s.GetToday)
		routesAPIv1.POST("/score/initialize", s.Initialize)
		routesAPIv1.POST("/score/finalize", s.Finalize)
		routesAPIv1.POST("/score/rollover", s.Rollover)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard", l.GetAssetLeaderboard)
		routesAPIv1.GET("/activity", l.GetActivityFeed)
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
