package main

import (
	"context"
	"log"
	"time"

	"bazaar/internal/datastore"
	"bazaar/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type RolloverJob struct {
	container *do.Injector
	db        *bun.DB
}

func NewRolloverJob(container *do.Injector) (*RolloverJob, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	return &RolloverJob{container, db}, nil
}

func (j *RolloverJob) Start(cronRunner *cron.Cron) {
	schedule := "@midnight"

	timeline, err := datastore.GetConfigByKey(context.Background(), j.db, services.CONFIG_CRONJOB_TIME_ROLLOVER)
	if err == nil && timeline != nil && timeline.Value != "" {
		schedule = timeline.Value
	}

	_, err = cronRunner.AddFunc(schedule, j.runScheduledTask)
	log.Println("Rollover cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)

	j.rebuildLeaderboard()
}

func (j *RolloverJob) runScheduledTask() {
	ctx := context.Background()

	serviceScoring, err := do.Invoke[*services.ServiceScoring](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	log.Println("Start daily score rollover ...")
	if err := serviceScoring.Rollover(ctx); err != nil {
		log.Println(err)
		return
	}
	log.Println("Daily score rollover done")
}

// rebuildLeaderboard reloads the asset leaderboard from postgres so a
// flushed redis does not serve an empty board until the next trade.
func (j *RolloverJob) rebuildLeaderboard() {
	ctx := context.Background()

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	log.Println("Start loading asset leaderboard")
	if err := serviceLeaderboard.RebuildAssetLeaderboard(ctx); err != nil {
		log.Println(err)
		return
	}
	log.Println("Finish loading asset leaderboard")
}
