package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"trivia-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const catalogKey = "quiz:catalog"

// CatalogLoader fetches the question catalog from a backing store
// (file, database).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// CatalogRepository caches the whole catalog as one JSON value in Redis
// and falls back to the loader on cache miss. The catalog is cached as a
// single ordered document rather than per-question entries because
// catalog order is part of its meaning.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := r.fromCache(ctx); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.fromCache(ctx); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		raw, err := json.Marshal(catalog)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("marshal catalog: %w", err)
		}
		// best-effort cache fill
		_ = r.client.Set(ctx, catalogKey, raw, r.ttlWithJitter()).Err()

		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) fromCache(ctx context.Context) (domain.Catalog, bool) {
	raw, err := r.client.Get(ctx, catalogKey).Bytes()
	if err != nil || len(raw) == 0 {
		return domain.Catalog{}, false
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
