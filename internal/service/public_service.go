package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

// PublicService serves live (not deleted) records to the public site.
// A cached listing is only served while the table's live stamp still
// matches the one read before the listing was built, so writes from any
// process show up on the next request.
type PublicService struct {
	registry *Registry
	cache    *cache.Cache
}

type liveEntry struct {
	stamp model.LiveStamp
	items []model.LiveItem
}

// NewPublicService caches listings for at most ttl; a minute when ttl is not
// positive.
func NewPublicService(registry *Registry, ttl time.Duration) *PublicService {
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &PublicService{
		registry: registry,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (s *PublicService) ListLive(ctx context.Context, itemType string) ([]model.LiveItem, model.ResourceType, error) {
	adapter, rt, err := s.registry.Resolve(itemType)
	if err != nil {
		return nil, "", err
	}

	// The stamp is read before the listing. A write landing in between
	// leaves an older stamp in the cache and forces the next refresh.
	stamp, err := adapter.LiveStamp(ctx)
	if err != nil {
		return nil, rt, err
	}

	if cached, ok := s.cache.Get(rt.String()); ok {
		if entry := cached.(liveEntry); entry.stamp.Equal(stamp) {
			return entry.items, rt, nil
		}
	}

	items, err := adapter.ListLive(ctx)
	if err != nil {
		return nil, rt, err
	}

	s.cache.SetDefault(rt.String(), liveEntry{stamp: stamp, items: items})
	return items, rt, nil
}

// Invalidate drops the cached listing for rt. RecycleBinService calls it
// after every successful lifecycle change.
func (s *PublicService) Invalidate(rt model.ResourceType) {
	s.cache.Delete(rt.String())
}
