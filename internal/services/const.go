package services

import (
	"errors"
	"fmt"
	"time"
)

var ErrSubjectMissing = errors.New("missing subject identifier")
var ErrInvalidPrice = errors.New("offered price must be a non-negative amount")
var ErrInvalidScore = errors.New("score must be a non-negative integer")
var ErrInsufficientFunds = errors.New("insufficient trade credit")
var ErrAlreadyOwned = errors.New("buyer already owns this item")
var ErrNotItemOwner = errors.New("requester does not own the offered item")
var ErrNotResponder = errors.New("only the designated responder may respond")
var ErrTradeNotPending = errors.New("trade is no longer pending")
var ErrOwnershipDrifted = errors.New("item ownership changed since the trade was proposed")
var ErrNoItemsAvailable = errors.New("no unowned items left in the pool")
var ErrPoolConflict = errors.New("pool item was claimed concurrently")
var ErrClaimLock = errors.New("daily claim locked")
var ErrReactionLock = errors.New("reaction game locked")
var ErrRolloverLock = errors.New("rollover already running")
var ErrInvalidDecision = errors.New("decision must be accept or reject")
var ErrNoChallenges = errors.New("challenge catalog is empty")
var ErrNotChallengeOwner = errors.New("challenge belongs to another user")

const (
	CONFIG_REACTION_REWARD_PER_HIT = "REACTION_REWARD_PER_HIT"
	CONFIG_REACTION_REWARD_CAP     = "REACTION_REWARD_CAP"
	CONFIG_PROFIT_PAYOUT_PERCENT   = "PROFIT_PAYOUT_PERCENT"
	CONFIG_LEADERBOARD_LIMIT       = "LEADERBOARD_LIMIT"
	CONFIG_ACTIVITY_FEED_LIMIT     = "ACTIVITY_FEED_LIMIT"
	CONFIG_CRONJOB_TIME_ROLLOVER   = "CRONJOB_TIME_ROLLOVER"

	DEFAULT_REACTION_REWARD_PER_HIT = 5
	DEFAULT_REACTION_REWARD_CAP     = 100
	DEFAULT_PROFIT_PAYOUT_PERCENT   = 25
	DEFAULT_LEADERBOARD_LIMIT       = 20
	DEFAULT_ACTIVITY_FEED_LIMIT     = 20

	LEADERBOARD_ASSETS = "assets"

	REACTION_CLAIM_RATE_LIMIT_PER_MINUTE = 10

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute
	CACHE_TTL_1_HOUR    = 1 * time.Hour
)

func DBKeyUser(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func DBKeyUserBySubject(subjectID string) string {
	return fmt.Sprintf("user:subject:%s", subjectID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", key)
}

func DBKeyMarketplace(userID int64) string {
	return fmt.Sprintf("marketplace:%d", userID)
}

func DBKeyLeaderboardByUser(name string, userID int64) string {
	return fmt.Sprintf("leaderboard_by_user:%s:%d", name, userID)
}

func LockKeyDailyClaim(userID int64) string {
	return fmt.Sprintf("lock:daily_claim:%d", userID)
}

func LockKeyReactionClaim(userID int64) string {
	return fmt.Sprintf("lock:reaction_claim:%d", userID)
}

func LockKeyRollover() string {
	return "lock:score_rollover"
}

func LimitKeyReactionClaim(userID int64) string {
	return fmt.Sprintf("limit:reaction_claim:%d", userID)
}
