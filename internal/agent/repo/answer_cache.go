package repo

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/landover-agents/server/internal/agent/model"
	errx "github.com/landover-agents/server/internal/core/error"
	logx "github.com/landover-agents/server/pkg/logger"
)

// RedisAnswerCache caches final answer envelopes keyed by the normalized
// question text.
type RedisAnswerCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisAnswerCache(rdb redis.Cmdable, ttl time.Duration) *RedisAnswerCache {
	return &RedisAnswerCache{rdb: rdb, ttl: ttl}
}

func (r *RedisAnswerCache) answerKey(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	return fmt.Sprintf("answer:%x", sha1.Sum([]byte(normalized)))
}

func (r *RedisAnswerCache) Get(ctx context.Context, question string) (*model.ResultEnvelope, bool, error) {
	key := r.answerKey(question)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load cached answer from redis")
		return nil, false, errx.WrapRedis(err)
	}

	var env model.ResultEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal cached answer")
		return nil, false, fmt.Errorf("unmarshal cached answer: %w", err)
	}
	return &env, true, nil
}

func (r *RedisAnswerCache) Set(ctx context.Context, question string, env *model.ResultEnvelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		logx.Error().Err(err).Msg("failed to marshal answer envelope")
		return fmt.Errorf("marshal answer envelope: %w", err)
	}
	key := r.answerKey(question)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to cache answer in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.AnswerCache = (*RedisAnswerCache)(nil)
