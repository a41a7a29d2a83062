package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/google/uuid"
)

// InMemoryProjectSummaryCache implements funding.SummaryCache with a
// process-local map. Used for single-instance deployments and tests;
// distributed deployments should use the Redis implementation.
type InMemoryProjectSummaryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryEntry
}

type inMemoryEntry struct {
	summary   *funding.ProjectSummary
	expiresAt time.Time
}

// NewInMemoryProjectSummaryCache creates a new in-memory summary cache
func NewInMemoryProjectSummaryCache() *InMemoryProjectSummaryCache {
	return &InMemoryProjectSummaryCache{
		entries: make(map[uuid.UUID]inMemoryEntry),
	}
}

// Get returns the cached summary, or nil on a miss or expired entry
func (c *InMemoryProjectSummaryCache) Get(_ context.Context, projectID uuid.UUID) (*funding.ProjectSummary, error) {
	c.mu.RLock()
	entry, ok := c.entries[projectID]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, projectID)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.summary, nil
}

// Set stores a summary with the given TTL
func (c *InMemoryProjectSummaryCache) Set(_ context.Context, summary *funding.ProjectSummary, ttl time.Duration) error {
	if summary == nil {
		return nil
	}
	if ttl == 0 {
		ttl = DefaultSummaryTTL
	}

	c.mu.Lock()
	c.entries[summary.ProjectID] = inMemoryEntry{
		summary:   summary,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Delete drops a project's cached summary
func (c *InMemoryProjectSummaryCache) Delete(_ context.Context, projectID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, projectID)
	c.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory cache
func (c *InMemoryProjectSummaryCache) Close() error {
	return nil
}

// Ensure InMemoryProjectSummaryCache implements funding.SummaryCache
var _ funding.SummaryCache = (*InMemoryProjectSummaryCache)(nil)
