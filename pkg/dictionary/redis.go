package dictionary

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bastiangx/wordfix/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisReader is the subset of *redis.Client used by RedisSource.
type RedisReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// RedisSource reads extra vocabulary from Redis at startup: a hash of
// word -> count and a set of words that are counted once each.
// Either key may be empty to skip it.
type RedisSource struct {
	client    RedisReader
	countsKey string
	wordsKey  string
}

// NewRedisSource creates a source over client.
func NewRedisSource(client RedisReader, countsKey, wordsKey string) *RedisSource {
	return &RedisSource{client: client, countsKey: countsKey, wordsKey: wordsKey}
}

// NewRedisClient connects to addr with the given credentials.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// LoadInto adds the Redis vocabulary to b and returns the number of entries added.
func (rs *RedisSource) LoadInto(ctx context.Context, b *model.Builder) (int, error) {
	added := 0
	if rs.countsKey != "" {
		counts, err := rs.client.HGetAll(ctx, rs.countsKey).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to read redis hash %s: %w", rs.countsKey, err)
		}
		for word, raw := range counts {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				log.Debugf("Skipping redis entry %q: bad count %q", word, raw)
				continue
			}
			w, ok := NormalizeWord(word)
			if !ok {
				log.Debugf("Skipping redis entry %q: not a single token", word)
				continue
			}
			b.AddCount(w, n)
			added++
		}
	}

	if rs.wordsKey != "" {
		words, err := rs.client.SMembers(ctx, rs.wordsKey).Result()
		if err != nil {
			return added, fmt.Errorf("failed to read redis set %s: %w", rs.wordsKey, err)
		}
		for _, member := range words {
			w, ok := NormalizeWord(member)
			if !ok {
				log.Debugf("Skipping redis member %q: not a single token", member)
				continue
			}
			b.Add(w)
			added++
		}
	}

	log.Debugf("Loaded %d entries from redis", added)
	return added, nil
}
