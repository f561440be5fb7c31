package question

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

const defaultCacheTTL = 30 * time.Minute

// Cache keeps generated sets in Redis so re-submitting the same image skips
// the generation service.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SetCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// CacheKey derives the Redis key for req. Image data URLs can be megabytes,
// so the key holds a digest rather than the payload.
func CacheKey(req GenerateRequest) string {
	h := sha256.New()
	h.Write([]byte(req.ImageDataURL))
	h.Write([]byte{0})
	h.Write([]byte(req.Topic))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(req.Count)))
	return "mcqset:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(ctx context.Context, req GenerateRequest) (quiz.QuestionSet, error) {
	data, err := c.client.Get(ctx, CacheKey(req)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var qs quiz.QuestionSet
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (c *Cache) Set(ctx context.Context, req GenerateRequest, qs quiz.QuestionSet) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey(req), data, c.ttl).Err()
}
