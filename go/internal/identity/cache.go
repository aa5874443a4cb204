package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// Fetcher retrieves identities for agent version ids in one batch.
type Fetcher interface {
	GetIdentitiesBatch(ctx context.Context, versionIDs []string) ([]models.Identity, error)
}

// Cache memoizes identity lookups for the life of the process. Entries
// are never invalidated within a session; the table is rebuilt on
// process start.
type Cache struct {
	fetcher Fetcher

	mu   sync.Mutex
	byID map[string]models.Identity
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		byID:    make(map[string]models.Identity),
	}
}

// GetOrFetchBatch returns identities for the requested ids, fetching
// only the ones not already cached. Unknown ids are simply absent from
// the result.
func (c *Cache) GetOrFetchBatch(ctx context.Context, ids []string) (map[string]models.Identity, error) {
	out := make(map[string]models.Identity, len(ids))
	var missing []string

	c.mu.Lock()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if identity, ok := c.byID[id]; ok {
			out[id] = identity
		} else {
			missing = append(missing, id)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.fetcher.GetIdentitiesBatch(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("fetch identities: %w", err)
	}

	c.mu.Lock()
	for _, identity := range fetched {
		c.byID[identity.VersionID] = identity
		out[identity.VersionID] = identity
	}
	c.mu.Unlock()

	return out, nil
}

// Len returns the number of cached identities.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}
