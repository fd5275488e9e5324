package cache

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
)

// Categories caches each user's top-level categories. Any category mutation
// must call Flush after the write is committed.
type Categories struct {
	mu     sync.RWMutex
	byUser map[uint64][]db.Category
	// generation is bumped by Flush. A load that started before a flush is
	// returned to its caller but not stored.
	generation uint64
	logger     *zap.SugaredLogger
}

func NewCategories(l *zap.SugaredLogger) *Categories {
	return &Categories{
		byUser: make(map[uint64][]db.Category),
		logger: l,
	}
}

// Remember returns the cached entry for userID, calling load on a miss.
// A failed load is not cached.
func (c *Categories) Remember(userID uint64, load func() ([]db.Category, error)) ([]db.Category, error) {
	c.mu.RLock()
	cached, ok := c.byUser[userID]
	generation := c.generation
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fresh, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation == generation {
		c.byUser[userID] = fresh
	}
	c.mu.Unlock()

	return fresh, nil
}

func (c *Categories) Flush() {
	c.mu.Lock()
	n := len(c.byUser)
	c.byUser = make(map[uint64][]db.Category)
	c.generation++
	c.mu.Unlock()

	c.logger.Debugw("category cache flushed", "entries", n)
}
