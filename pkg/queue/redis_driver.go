package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cupcakery/storefront/pkg/logger"
)

const (
	redisReadyKey   = "storefront:queue:ready"
	redisDelayedKey = "storefront:queue:delayed"

	popTimeout   = 5 * time.Second
	promoteEvery = time.Second
	promoteBatch = 100
)

// promoteDue moves up to ARGV[2] jobs whose score is at or below ARGV[1] from
// the delayed set to the ready list. Running it as one script keeps two
// processes from promoting the same job.
var promoteDue = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, job in ipairs(due) do
	redis.call('ZREM', KEYS[1], job)
	redis.call('LPUSH', KEYS[2], job)
end
return #due
`)

// RedisDriver keeps ready jobs in a list (LPUSH/BRPOP) and delayed jobs in a
// sorted set scored by the Unix millisecond they become due. Every web and
// queue:work process can share one Redis.
type RedisDriver struct {
	rdb    *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRedisDriver starts the delayed-job promoter; call Close to stop it.
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	ctx, cancel := context.WithCancel(context.Background())
	d := &RedisDriver{rdb: rdb, ctx: ctx, cancel: cancel}
	go d.promoteLoop()
	return d
}

func (d *RedisDriver) Close() { d.cancel() }

func (d *RedisDriver) Push(payload []byte) error {
	if err := d.rdb.LPush(d.ctx, redisReadyKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// Pop blocks for up to popTimeout; (nil, nil) means nothing arrived.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	result, err := d.rdb.BRPop(ctx, popTimeout, redisReadyKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	case len(result) < 2:
		return nil, nil
	}
	return []byte(result[1]), nil
}

func (d *RedisDriver) PushDelayed(payload []byte, delay time.Duration) error {
	due := time.Now().Add(delay).UnixMilli()
	if err := d.rdb.ZAdd(d.ctx, redisDelayedKey, redis.Z{
		Score:  float64(due),
		Member: string(payload),
	}).Err(); err != nil {
		return fmt.Errorf("queue/redis: push delayed: %w", err)
	}
	return nil
}

// promote moves every job due at now to the ready list and reports how many
// moved.
func (d *RedisDriver) promote(ctx context.Context, now time.Time) (int, error) {
	total := 0
	for {
		n, err := promoteDue.Run(ctx, d.rdb,
			[]string{redisDelayedKey, redisReadyKey},
			strconv.FormatInt(now.UnixMilli(), 10), promoteBatch,
		).Int()
		if err != nil {
			return total, fmt.Errorf("queue/redis: promote: %w", err)
		}
		total += n
		if n < promoteBatch {
			return total, nil
		}
	}
}

func (d *RedisDriver) promoteLoop() {
	ticker := time.NewTicker(promoteEvery)
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := d.promote(d.ctx, now); err != nil && d.ctx.Err() == nil {
				logger.Warn("queue: delayed promotion failed", "error", err)
			}
		}
	}
}
