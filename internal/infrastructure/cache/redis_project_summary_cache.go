package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// DefaultSummaryTTL bounds staleness of cached project summaries
const DefaultSummaryTTL = 30 * time.Second

// RedisProjectSummaryCache implements funding.SummaryCache using Redis.
// Suitable for distributed deployments where multiple instances share
// the read model.
type RedisProjectSummaryCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// NewRedisProjectSummaryCache creates a new Redis-based summary cache
func NewRedisProjectSummaryCache(cfg RedisConfig, logger *zap.Logger) (*RedisProjectSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProjectSummaryCache{
		client:     client,
		ownsClient: true,
		logger:     logger,
	}, nil
}

// NewRedisProjectSummaryCacheWithClient creates a cache with an existing
// Redis client. The caller retains ownership of the client.
func NewRedisProjectSummaryCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisProjectSummaryCache {
	return &RedisProjectSummaryCache{
		client:     client,
		ownsClient: false,
		logger:     logger,
	}
}

func (c *RedisProjectSummaryCache) cacheKey(projectID uuid.UUID) string {
	return fmt.Sprintf("project:summary:%s", projectID.String())
}

// Get retrieves a project summary from cache; a miss returns (nil, nil)
func (c *RedisProjectSummaryCache) Get(ctx context.Context, projectID uuid.UUID) (*funding.ProjectSummary, error) {
	key := c.cacheKey(projectID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss for project summary", zap.String("project_id", projectID.String()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary from cache: %w", err)
	}

	var summary funding.ProjectSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// Drop corrupted entries rather than serving them
		_ = c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &summary, nil
}

// Set stores a project summary with the given TTL
func (c *RedisProjectSummaryCache) Set(ctx context.Context, summary *funding.ProjectSummary, ttl time.Duration) error {
	if summary == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultSummaryTTL
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := c.client.Set(ctx, c.cacheKey(summary.ProjectID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set summary in cache: %w", err)
	}

	return nil
}

// Delete drops a project's cached summary
func (c *RedisProjectSummaryCache) Delete(ctx context.Context, projectID uuid.UUID) error {
	if err := c.client.Del(ctx, c.cacheKey(projectID)).Err(); err != nil {
		return fmt.Errorf("failed to delete summary from cache: %w", err)
	}
	return nil
}

// Close releases the Redis client if this cache owns it
func (c *RedisProjectSummaryCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisProjectSummaryCache implements funding.SummaryCache
var _ funding.SummaryCache = (*RedisProjectSummaryCache)(nil)
