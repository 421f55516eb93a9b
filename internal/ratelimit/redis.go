package ratelimit

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Gate is what callers of the limiter depend on; both the in-process Limiter
// and the Redis-backed RedisLimiter satisfy it.
type Gate interface {
	Check(userID int64) Verdict
}

// RedisLimiter keeps the sliding window and the mute flag in Redis so that
// several relay processes share one view of a user's rate. When Redis is
// unreachable the limiter fails open: flood protection degrades rather than
// blocking the relay.
type RedisLimiter struct {
	rdb       *redis.Client
	maxEvents int
	window    time.Duration
	muteFor   time.Duration
	now       func() time.Time
}

func NewRedisLimiter(rdb *redis.Client, maxEvents int, window, muteFor time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:       rdb,
		maxEvents: maxEvents,
		window:    window,
		muteFor:   muteFor,
		now:       time.Now,
	}
}

func (l *RedisLimiter) Check(userID int64) Verdict {
	ctx := context.Background()
	muteKey := fmt.Sprintf("mute:%d", userID)
	windowKey := fmt.Sprintf("rate:%d", userID)

	remaining, err := l.rdb.PTTL(ctx, muteKey).Result()
	if err != nil {
		log.Printf("WARN: Rate limit store unavailable for user %d: %v", userID, err)
		return Verdict{Allowed: true}
	}
	if remaining > 0 {
		return Verdict{Remaining: remaining}
	}

	now := l.now()
	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, windowKey, "0", strconv.FormatInt(now.Add(-l.window).UnixNano(), 10))
	pipe.ZAdd(ctx, windowKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("WARN: Rate limit store unavailable for user %d: %v", userID, err)
		return Verdict{Allowed: true}
	}

	if int(count.Val()) > l.maxEvents {
		if err := l.rdb.Set(ctx, muteKey, "1", l.muteFor).Err(); err != nil {
			log.Printf("WARN: Failed to set mute for user %d: %v", userID, err)
		}
		l.rdb.Del(ctx, windowKey)
		return Verdict{JustMuted: true, Remaining: l.muteFor}
	}
	return Verdict{Allowed: true}
}
