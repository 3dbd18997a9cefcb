package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"

	"bazaar/internal/datastore"
	"bazaar/internal/models"
	"bazaar/internal/services"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSeedItems(),
			commandSeedChallenges(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableItem(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableTrade(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableDailyScore(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableChallenge(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserChallenge(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableDailyClaim(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableReactionGamePlay(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// insert default configs to db
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_REACTION_REWARD_PER_HIT, Value: "5"},
				{Key: services.CONFIG_REACTION_REWARD_CAP, Value: "100"},
				{Key: services.CONFIG_PROFIT_PAYOUT_PERCENT, Value: "25"},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: "20"},
				{Key: services.CONFIG_ACTIVITY_FEED_LIMIT, Value: "20"},
				{Key: services.CONFIG_CRONJOB_TIME_ROLLOVER, Value: "@midnight"},
			}

			for _, config := range configs {
				err = datastore.UpsertConfig(ctx, db, &config)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func commandSeedItems() *cli.Command {
	return &cli.Command{
		Name:        "seed-items",
		Description: "Insert pool items with randomized hidden values",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Value: 50,
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			types := []string{
				models.ITEM_TYPE_COLLECTIBLE,
				models.ITEM_TYPE_TOOL,
				models.ITEM_TYPE_TROPHY,
			}

			count := c.Int("count")
			for i := 0; i < count; i++ {
				item := &models.Item{
					Name:        fmt.Sprintf("Crate #%04d", i+1),
					Description: "A sealed crate from the bazaar pool",
					ItemType:    types[i%len(types)],
					HiddenValue: int64(10 + rand.Intn(491)),
				}

				if _, err := datastore.CreateItem(ctx, db, item); err != nil {
					fmt.Println(err)
				}
			}

			fmt.Println("Seeded", count, "items")

			return nil
		},
	}
}

func commandSeedChallenges() *cli.Command {
	return &cli.Command{
		Name:        "seed-challenges",
		Description: "Insert the daily challenge catalog",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			challenges := []*models.Challenge{
				{Description: "Complete a trade with another user", ChallengeType: models.CHALLENGE_TYPE_TRADE, BonusPercent: 10},
				{Description: "Purchase an item from the marketplace", ChallengeType: models.CHALLENGE_TYPE_PURCHASE, BonusPercent: 8},
				{Description: "Propose three trades", ChallengeType: models.CHALLENGE_TYPE_TRADE, BonusPercent: 12},
				{Description: "Buy an item straight from the pool", ChallengeType: models.CHALLENGE_TYPE_PURCHASE, BonusPercent: 6},
				{Description: "Visit a friend's profile", ChallengeType: models.CHALLENGE_TYPE_SOCIAL, BonusPercent: 5},
				{Description: "Share your daily claim", ChallengeType: models.CHALLENGE_TYPE_SOCIAL, BonusPercent: 5},
			}

			for _, challenge := range challenges {
				if err := datastore.InsertChallenge(ctx, db, challenge); err != nil {
					fmt.Println(err)
				}
			}

			fmt.Println("Seeded", len(challenges), "challenges")

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
