// FilePath: internal/cache/fieldcache.go
package cache

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	nuts "github.com/vaudience/go-nuts"
)

// keySeparator joins the namespace and key items into the cache key
const keySeparator = "_"

// KeyItemsFunc derives the cache key items for a resolution from its parent
// and arguments. It must encode every input that affects the result,
// including a drifting fingerprint of parent state where results depend on
// upstream growth, so that state drift invalidates stale entries without
// explicit eviction.
type KeyItemsFunc func(p graphql.ResolveParams) []string

// ResolveFunc is a typed field resolver eligible for caching. It must be
// idempotent: on a cache hit it is skipped entirely, side effects included.
type ResolveFunc[T any] func(p graphql.ResolveParams) (T, error)

// CachedResolverConfig configures WithCaching
type CachedResolverConfig[T any] struct {
	// Namespace identifies the field and prefixes every key
	Namespace string
	// Resolve computes the value on a cache miss
	Resolve ResolveFunc[T]
	// CacheKeyItems derives the rest of the key
	CacheKeyItems KeyItemsFunc
	// TTL for stored entries; zero falls back to the store default TTL
	// configured at construction
	TTL time.Duration
}

// WithCaching decorates a typed resolver with shared-cache memoization and
// adapts it to the engine's resolver signature. Concurrent misses for the
// same key are not deduplicated: each resolves and the last write wins,
// which is acceptable for idempotent upstream reads.
func WithCaching[T any](store Store, defaultTTL time.Duration, cfg CachedResolverConfig[T]) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		key := cfg.Namespace
		if items := cfg.CacheKeyItems(p); len(items) > 0 {
			key += keySeparator + strings.Join(items, keySeparator)
		}

		if data, found, err := store.Get(p.Context, key); err != nil {
			nuts.L.Warnf("[FieldCache] Error reading key %s, treating as miss: %v", key, err)
		} else if found {
			var value T
			if err := json.Unmarshal(data, &value); err != nil {
				nuts.L.Warnf("[FieldCache] Error decoding entry for key %s, treating as miss: %v", key, err)
			} else {
				return value, nil
			}
		}

		value, err := cfg.Resolve(p)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			nuts.L.Warnf("[FieldCache] Error encoding entry for key %s, skipping store: %v", key, err)
			return value, nil
		}

		ttl := cfg.TTL
		if ttl == 0 {
			ttl = defaultTTL
		}
		if err := store.Set(p.Context, key, data, ttl); err != nil {
			nuts.L.Warnf("[FieldCache] Error storing key %s: %v", key, err)
		}

		return value, nil
	}
}
