// Package cache memoizes analysis results by content fingerprint. A
// hit is guaranteed byte-identical to a fresh run because the key
// covers every input the deterministic engine sees.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"sync"
	"time"

	"review-bot-go/internal/model"

	"go.uber.org/zap"
)

// Fingerprint hashes the effective inputs of an analysis: repository,
// change request number and each changed file's path and content, in
// input order.
func Fingerprint(repository string, prNumber int, files []model.ChangedFile) string {
	h := sha256.New()
	h.Write([]byte(repository))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(prNumber)))
	for i := range files {
		h.Write([]byte{0})
		h.Write([]byte(files[i].Path))
		h.Write([]byte{0})
		h.Write([]byte(files[i].Content()))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

type entry struct {
	result  *model.AnalysisResult
	addedAt time.Time
}

// ResultCache is a bounded in-memory cache with TTL expiry. Concurrent
// puts of the same key are idempotent: content addressing guarantees
// the values are identical, so last write wins is harmless.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	ttl        time.Duration
	logger     *zap.Logger
}

// New creates a cache bounded to maxEntries with the given TTL
func New(maxEntries int, ttl time.Duration, logger *zap.Logger) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		logger:     logger,
	}
}

// Get returns the cached result for a fingerprint, or nil on miss.
// Expired entries are dropped on access.
func (c *ResultCache) Get(key string) (*model.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.addedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.result, true
}

// Put stores a result under its fingerprint, evicting the oldest entry
// when the cache is full
func (c *ResultCache) Put(key string, result *model.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{result: result, addedAt: time.Now()}
}

// Len returns the current number of entries
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.addedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.addedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.logger.Debug("Evicted cache entry", zap.String("key", oldestKey))
	}
}
