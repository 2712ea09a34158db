package memory

import (
	"time"

	"ai-casefile-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CaseCache keeps recently read case bundles in memory. Polling clients fetch
// the same case repeatedly right after generation finishes; the bundle is
// immutable so caching it is safe. Progress mutations must Invalidate.
type CaseCache struct {
	cache *cache.Cache
}

func NewCaseCache() *CaseCache {
	// Default expiration 5 minutes, purge sweep every 10.
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &CaseCache{cache: c}
}

func (r *CaseCache) Save(c *entity.Case) {
	r.cache.Set(c.Id.String(), c, cache.DefaultExpiration)
}

func (r *CaseCache) Get(id uuid.UUID) (*entity.Case, bool) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.Case), true
	}
	return nil, false
}

func (r *CaseCache) Invalidate(id uuid.UUID) {
	r.cache.Delete(id.String())
}
