package datastore

import (
	"context"
	"database/sql"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"bazaar/internal/models"
)

func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB starts a postgres container, applies the schema and
// returns a bun.DB. Skips when docker is unavailable.
func setupTestDB(t *testing.T) (*bun.DB, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())

	require.NoError(t, CreateTableUser(ctx, db))
	require.NoError(t, CreateTableItem(ctx, db))
	require.NoError(t, CreateTableTrade(ctx, db))
	require.NoError(t, CreateTableDailyScore(ctx, db))
	require.NoError(t, CreateTableChallenge(ctx, db))
	require.NoError(t, CreateTableUserChallenge(ctx, db))
	require.NoError(t, CreateTableDailyClaim(ctx, db))
	require.NoError(t, CreateTableReactionGamePlay(ctx, db))
	require.NoError(t, CreateTableConfig(ctx, db))

	cleanup := func() {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func mustUser(t *testing.T, db *bun.DB, subjectID string, credit int64) *models.User {
	t.Helper()
	user, err := CreateUser(context.Background(), db, &models.User{
		SubjectID:   subjectID,
		Username:    subjectID,
		TradeCredit: credit,
	})
	require.NoError(t, err)
	return user
}

func mustItem(t *testing.T, db *bun.DB, name string, value int64, ownerID *int64) *models.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), db, &models.Item{
		Name:        name,
		ItemType:    models.ITEM_TYPE_COLLECTIBLE,
		HiddenValue: value,
		OwnerID:     ownerID,
	})
	require.NoError(t, err)
	return item
}

func TestCreateUser_DuplicateSubject(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	first := mustUser(t, db, "subject-1", 100)
	second := mustUser(t, db, "subject-1", 100)

	assert.Equal(t, first.ID, second.ID)
}

func TestGetUserAssetValue(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := mustUser(t, db, "subject-1", 250)
	mustItem(t, db, "a", 40, &user.ID)
	mustItem(t, db, "b", 60, &user.ID)
	mustItem(t, db, "pool", 999, nil)

	value, err := GetUserAssetValue(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(350), value)

	// user without items still has the credit component
	other := mustUser(t, db, "subject-2", 10)
	value, err = GetUserAssetValue(ctx, db, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), value)
}

func TestGetMarketplaceItems_ExcludesOwn(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	me := mustUser(t, db, "me", 0)
	them := mustUser(t, db, "them", 0)

	mine := mustItem(t, db, "mine", 10, &me.ID)
	theirs := mustItem(t, db, "theirs", 10, &them.ID)
	pool := mustItem(t, db, "pool", 10, nil)

	items, err := GetMarketplaceItems(ctx, db, me.ID)
	require.NoError(t, err)

	ids := []int64{}
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Contains(t, ids, theirs.ID)
	assert.Contains(t, ids, pool.ID)
	assert.NotContains(t, ids, mine.ID)
}

func TestTransferPoolItem(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := mustUser(t, db, "claimer", 0)
	item := mustItem(t, db, "crate", 50, nil)

	ok, err := TransferPoolItem(ctx, db, item.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// item is no longer in the pool, second transfer loses
	ok, err = TransferPoolItem(ctx, db, item.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := FindItemByID(ctx, db, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, user.ID, *got.OwnerID)
}

func TestTransferPoolItem_Concurrent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	item := mustItem(t, db, "contested", 50, nil)

	const claimers = 10
	users := make([]*models.User, claimers)
	for i := range users {
		users[i] = mustUser(t, db, "claimer-"+string(rune('a'+i)), 0)
	}

	var wg sync.WaitGroup
	wins := make(chan int64, claimers)
	for _, user := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			ok, err := TransferPoolItem(ctx, db, item.ID, userID)
			if err == nil && ok {
				wins <- userID
			}
		}(user.ID)
	}
	wg.Wait()
	close(wins)

	winners := []int64{}
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1)

	got, err := FindItemByID(ctx, db, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, winners[0], *got.OwnerID)
}

func TestPurchaseTransfer_ConservesCredit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	buyer := mustUser(t, db, "buyer", 500)
	seller := mustUser(t, db, "seller", 100)
	item := mustItem(t, db, "gadget", 75, &seller.ID)

	const price = int64(120)

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := GetItemForUpdate(ctx, tx, item.ID); err != nil {
			return err
		}
		if _, err := GetUserForUpdate(ctx, tx, buyer.ID); err != nil {
			return err
		}
		if _, err := GetUserForUpdate(ctx, tx, seller.ID); err != nil {
			return err
		}
		if err := AddTradeCredit(ctx, tx, buyer.ID, -price); err != nil {
			return err
		}
		if err := AddTradeCredit(ctx, tx, seller.ID, price); err != nil {
			return err
		}
		return UpdateItemOwner(ctx, tx, item.ID, &buyer.ID)
	})
	require.NoError(t, err)

	gotBuyer, err := FindUserByID(ctx, db, buyer.ID)
	require.NoError(t, err)
	gotSeller, err := FindUserByID(ctx, db, seller.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(380), gotBuyer.TradeCredit)
	assert.Equal(t, int64(220), gotSeller.TradeCredit)
	assert.Equal(t, int64(600), gotBuyer.TradeCredit+gotSeller.TradeCredit)

	gotItem, err := FindItemByID(ctx, db, item.ID)
	require.NoError(t, err)
	require.NotNil(t, gotItem.OwnerID)
	assert.Equal(t, buyer.ID, *gotItem.OwnerID)
}

func TestGetItemsForUpdate_AscendingOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	a := mustItem(t, db, "a", 1, nil)
	b := mustItem(t, db, "b", 2, nil)
	c := mustItem(t, db, "c", 3, nil)

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		items, err := GetItemsForUpdate(ctx, tx, []int64{c.ID, a.ID, b.ID})
		if err != nil {
			return err
		}
		require.Len(t, items, 3)
		assert.Equal(t, a.ID, items[0].ID)
		assert.Equal(t, b.ID, items[1].ID)
		assert.Equal(t, c.ID, items[2].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestDailyScoreLifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := mustUser(t, db, "scorer", 0)

	err := InsertDailyScore(ctx, db, &models.DailyScore{
		UserID:    user.ID,
		ScoreDate: "2026-08-30",
		BaseScore: 100,
	})
	require.NoError(t, err)

	// insert-if-absent: a second initialize never moves the base
	err = InsertDailyScore(ctx, db, &models.DailyScore{
		UserID:    user.ID,
		ScoreDate: "2026-08-30",
		BaseScore: 999,
	})
	require.NoError(t, err)

	score, err := GetDailyScore(ctx, db, user.ID, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, int64(100), score.BaseScore)
	assert.True(t, score.IsOpen())

	final := int64(110)
	score.FinalScore = &final
	score.BonusScore = 10
	score.EarnedTradeCredit = 2
	require.NoError(t, FinalizeDailyScore(ctx, db, score))

	got, err := GetDailyScore(ctx, db, user.ID, "2026-08-30")
	require.NoError(t, err)
	assert.False(t, got.IsOpen())
	assert.Equal(t, int64(110), *got.FinalScore)
	assert.Equal(t, int64(2), got.EarnedTradeCredit)

	err = InsertDailyScore(ctx, db, &models.DailyScore{
		UserID:    user.ID,
		ScoreDate: "2026-08-31",
		BaseScore: 150,
	})
	require.NoError(t, err)

	latest, err := GetLatestDailyScore(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", latest.ScoreDate)
	assert.True(t, latest.IsOpen())
}

func TestInsertDailyClaim_UniquePerDay(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := mustUser(t, db, "claimer", 0)
	item := mustItem(t, db, "crate", 10, nil)
	other := mustItem(t, db, "crate-2", 10, nil)

	err := InsertDailyClaim(ctx, db, &models.DailyClaim{
		UserID:    user.ID,
		ItemID:    item.ID,
		ClaimDate: "2026-08-31",
	})
	require.NoError(t, err)

	// the unique index rejects a second claim on the same day
	err = InsertDailyClaim(ctx, db, &models.DailyClaim{
		UserID:    user.ID,
		ItemID:    other.ID,
		ClaimDate: "2026-08-31",
	})
	assert.Error(t, err)

	err = InsertDailyClaim(ctx, db, &models.DailyClaim{
		UserID:    user.ID,
		ItemID:    other.ID,
		ClaimDate: "2026-09-01",
	})
	assert.NoError(t, err)
}

func TestTradeLifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	requester := mustUser(t, db, "requester", 0)
	responder := mustUser(t, db, "responder", 0)
	offered := mustItem(t, db, "offered", 10, &requester.ID)
	requested := mustItem(t, db, "requested", 20, &responder.ID)

	trade, err := InsertTrade(ctx, db, &models.Trade{
		Ref:             "trade-ref-1",
		ItemOfferedID:   offered.ID,
		ItemRequestedID: requested.ID,
		RequesterID:     requester.ID,
		ResponderID:     responder.ID,
		Status:          models.TRADE_STATUS_PENDING,
	})
	require.NoError(t, err)
	assert.True(t, trade.IsPending())

	got, err := FindTradeByRef(ctx, db, "trade-ref-1")
	require.NoError(t, err)
	assert.Equal(t, trade.ID, got.ID)

	require.NoError(t, UpdateTradeStatus(ctx, db, got, models.TRADE_STATUS_ACCEPTED))

	got, err = FindTradeByRef(ctx, db, "trade-ref-1")
	require.NoError(t, err)
	assert.Equal(t, models.TRADE_STATUS_ACCEPTED, got.Status)
	assert.False(t, got.IsPending())

	trades, err := GetTradesForUser(ctx, db, requester.ID)
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	trades, err = GetTradesForUser(ctx, db, responder.ID)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestConfigUpsert(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, UpsertConfig(ctx, db, &models.Config{Key: "K", Value: "1"}))
	require.NoError(t, UpsertConfig(ctx, db, &models.Config{Key: "K", Value: "2"}))

	config, err := GetConfigByKey(ctx, db, "K")
	require.NoError(t, err)
	assert.Equal(t, "2", config.Value)
}

func TestGetUserChallenge_OnePerDay(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := mustUser(t, db, "player", 0)

	c1 := &models.Challenge{Description: "one", ChallengeType: models.CHALLENGE_TYPE_TRADE, BonusPercent: 10}
	c2 := &models.Challenge{Description: "two", ChallengeType: models.CHALLENGE_TYPE_SOCIAL, BonusPercent: 5}
	require.NoError(t, InsertChallenge(ctx, db, c1))
	require.NoError(t, InsertChallenge(ctx, db, c2))

	require.NoError(t, InsertUserChallenge(ctx, db, &models.UserChallenge{
		UserID:       user.ID,
		ChallengeID:  c1.ID,
		DateAssigned: "2026-08-31",
	}))

	// conflict is dropped silently; the first assignment sticks
	require.NoError(t, InsertUserChallenge(ctx, db, &models.UserChallenge{
		UserID:       user.ID,
		ChallengeID:  c2.ID,
		DateAssigned: "2026-08-31",
	}))

	uc, err := GetUserChallenge(ctx, db, user.ID, "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, uc.ChallengeID)
	assert.False(t, uc.IsCompleted)

	require.NoError(t, MarkUserChallengeCompleted(ctx, db, uc.ID))

	bonus, err := GetCompletedChallengeBonus(ctx, db, user.ID, "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, int64(10), bonus)

	// other dates contribute nothing
	bonus, err = GetCompletedChallengeBonus(ctx, db, user.ID, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bonus)
}
