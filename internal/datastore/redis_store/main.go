package redis_store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"bazaar/internal/models"
)

const ACTIVITY_FEED_MAX = 50

func dbKeyLeaderboard(name string) string {
	return fmt.Sprintf("leaderboard:%s", name)
}

func dbKeyActivityFeed() string {
	return "activity:feed"
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  v.Score,
		Member: v.UserId,
	}).Err()

	if err != nil {
		return nil, err
	}

	return v, nil
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, num int) ([]*models.LeaderboardItem, error) {
	// num always greater than 0
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := strconv.ParseInt(item.Member.(string), 10, 64)
		results = append(results, &models.LeaderboardItem{
			UserId: id,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

func GetRank(ctx context.Context, cmd redis.Cmdable, name string, userID int64) (int64, error) {
	return cmd.ZRevRank(ctx, dbKeyLeaderboard(name), strconv.FormatInt(userID, 10)).Result()
}

func GetScore(ctx context.Context, cmd redis.Cmdable, name string, userID int64) (float64, error) {
	return cmd.ZScore(ctx, dbKeyLeaderboard(name), strconv.FormatInt(userID, 10)).Result()
}

// PushActivity prepends a feed entry and trims the list to the cap.
func PushActivity(ctx context.Context, cmd redis.Cmdable, entry *models.ActivityEntry) error {
	blob, err := msgpack.Marshal(entry)
	if err != nil {
		return err
	}

	err = cmd.LPush(ctx, dbKeyActivityFeed(), blob).Err()
	if err != nil {
		return err
	}

	return cmd.LTrim(ctx, dbKeyActivityFeed(), 0, ACTIVITY_FEED_MAX-1).Err()
}

func GetActivityFeed(ctx context.Context, cmd redis.Cmdable, num int) ([]*models.ActivityEntry, error) {
	blobs, err := cmd.LRange(ctx, dbKeyActivityFeed(), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var entries []*models.ActivityEntry
	for _, blob := range blobs {
		var entry models.ActivityEntry
		if err := msgpack.Unmarshal([]byte(blob), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
