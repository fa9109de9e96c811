package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tryon/shared/log"
	"tryon/stylist"
)

const keyPrefix = "tryon:composite:"

// Cache memoizes generated composites in Dragonfly. A hit skips one
// generation call, the slowest and most expensive step of the pipeline.
// Both paths are best effort.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger.Named("cache")}
}

// Key digests everything the generator sees, so any changed input misses.
func Key(personImage, clothingImage []byte, size string) string {
	digest := sha256.New()
	digest.Write(personImage)
	digest.Write([]byte{0})
	digest.Write(clothingImage)
	digest.Write([]byte{0})
	digest.Write([]byte(size))

	return keyPrefix + hex.EncodeToString(digest.Sum(nil))
}

type record struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Get returns the cached composite or nil. A nil cache means the sink is
// not configured and always misses.
func (c *Cache) Get(ctx context.Context, key string) *stylist.Composite {
	if c == nil {
		return nil
	}

	logger := log.LoggerWithTrace(ctx, c.logger)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache read failed: " + err.Error())
		}

		return nil
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		logger.Warn("cache entry corrupt: " + err.Error())
		return nil
	}

	return &stylist.Composite{Data: rec.Data, MimeType: rec.MimeType}
}

func (c *Cache) Set(ctx context.Context, key string, composite *stylist.Composite) {
	if c == nil {
		return
	}

	logger := log.LoggerWithTrace(ctx, c.logger)

	payload, err := json.Marshal(record{MimeType: composite.MimeType, Data: composite.Data})
	if err != nil {
		logger.Warn("cache entry marshal failed: " + err.Error())
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("cache write failed: " + err.Error())
	}
}
