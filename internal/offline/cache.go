package offline

import (
	"context"
	"encoding/json"

	"farmgate-backend/internal/domain"
)

const defaultSnapshotKey = "listings:snapshot"

// Cache is a client-resident snapshot of server-fetched listings. It is an
// explicit handle, not process-wide state: construct one per client session.
// Filtering reads the snapshot only and never reaches the network; refreshing
// is a separate fetch-and-Replace triggered by the caller.
type Cache struct {
	store BlobStore
	key   string
}

// NewCache builds a cache over the given store. An empty key uses the
// default snapshot key.
func NewCache(store BlobStore, key string) *Cache {
	if key == "" {
		key = defaultSnapshotKey
	}
	return &Cache{store: store, key: key}
}

// Replace overwrites the snapshot with a freshly fetched listing set.
func (c *Cache) Replace(ctx context.Context, listings []domain.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, c.key, data)
}

// Clear drops the snapshot.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, c.key)
}

// CachedListings filters the snapshot with AND semantics over the present
// criteria. An empty, absent or unreadable snapshot yields an empty slice;
// the cache is the sole source, so no listing outside it can appear.
func (c *Cache) CachedListings(ctx context.Context, criteria domain.FilterCriteria) []domain.Listing {
	data, err := c.store.Get(ctx, c.key)
	if err != nil || len(data) == 0 {
		return []domain.Listing{}
	}
	var snapshot []domain.Listing
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return []domain.Listing{}
	}
	out := make([]domain.Listing, 0, len(snapshot))
	for i := range snapshot {
		if criteria.Matches(&snapshot[i]) {
			out = append(out, snapshot[i])
		}
	}
	return out
}
