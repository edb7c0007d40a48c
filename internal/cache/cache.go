package cache

import (
	"context"
	"time"

	applog "thali/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Cleaner

	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)

	// Purge drops every entry.
	Purge()

	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically evicts expired entries from registered caches.
type Janitor struct {
	caches []Cleaner
	logger *applog.Logger
}

func NewJanitor(logger *applog.Logger) *Janitor {
	return &Janitor{logger: applog.OrDefault(logger)}
}

func (j *Janitor) Register(c Cleaner) {
	j.caches = append(j.caches, c)
}

// Run cleans every interval until ctx is done. It always returns nil so it
// can sit in an errgroup next to the server.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := j.CleanOnce(); n > 0 {
				j.logger.DebugContext(ctx, "Expired cache entries removed", "count", n)
			}
		}
	}
}

// CleanOnce runs a single pass and returns how many entries were removed.
func (j *Janitor) CleanOnce() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}
