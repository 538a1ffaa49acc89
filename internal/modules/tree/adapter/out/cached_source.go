package out

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/patrickmn/go-cache"

	"hostnav/internal/modules/tree/domain"
	treeout "hostnav/internal/modules/tree/port/out"
)

const (
	cacheKeyHosts = "hosts"
	cacheKeyApps  = "apps"
)

// CachedNodeSource serves full trees from a persistent cache unless a refresh
// is requested, and memoises remote search results for a short TTL.
type CachedNodeSource struct {
	next   treeout.NodeSource
	store  treeout.NodeCache
	memo   *cache.Cache
	logger hclog.Logger
}

func NewCachedNodeSource(next treeout.NodeSource, store treeout.NodeCache, searchTTL time.Duration, logger hclog.Logger) *CachedNodeSource {
	if searchTTL <= 0 {
		searchTTL = 30 * time.Second
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CachedNodeSource{
		next:   next,
		store:  store,
		memo:   cache.New(searchTTL, 2*searchTTL),
		logger: logger,
	}
}

var (
	_ treeout.NodeSource = (*CachedNodeSource)(nil)
	_ treeout.NodeCache  = (*CachedNodeSource)(nil)
)

func (s *CachedNodeSource) FetchGrantedNodes(ctx context.Context, async, refresh bool) ([]domain.Descriptor, error) {
	if async {
		return s.next.FetchGrantedNodes(ctx, async, refresh)
	}
	return s.cached(ctx, cacheKeyHosts, refresh, func() ([]domain.Descriptor, error) {
		return s.next.FetchGrantedNodes(ctx, async, refresh)
	})
}

func (s *CachedNodeSource) FetchNodeChildren(ctx context.Context, key string) ([]domain.Descriptor, error) {
	return s.next.FetchNodeChildren(ctx, key)
}

func (s *CachedNodeSource) FetchGrantedRemoteApps(ctx context.Context, refresh bool) ([]domain.Descriptor, error) {
	return s.cached(ctx, cacheKeyApps, refresh, func() ([]domain.Descriptor, error) {
		return s.next.FetchGrantedRemoteApps(ctx, refresh)
	})
}

func (s *CachedNodeSource) FetchMatchingAssets(ctx context.Context, keyword string) ([]domain.Descriptor, error) {
	key := "search:" + keyword
	if hit, ok := s.memo.Get(key); ok {
		return hit.([]domain.Descriptor), nil
	}
	nodes, err := s.next.FetchMatchingAssets(ctx, keyword)
	if err != nil {
		return nil, err
	}
	s.memo.Set(key, nodes, cache.DefaultExpiration)
	return nodes, nil
}

func (s *CachedNodeSource) Load(ctx context.Context, key string) ([]domain.Descriptor, bool, error) {
	return s.store.Load(ctx, key)
}

func (s *CachedNodeSource) Store(ctx context.Context, key string, nodes []domain.Descriptor) error {
	return s.store.Store(ctx, key, nodes)
}

func (s *CachedNodeSource) Clear(ctx context.Context) error {
	s.memo.Flush()
	return s.store.Clear(ctx)
}

func (s *CachedNodeSource) cached(ctx context.Context, key string, refresh bool, fetch func() ([]domain.Descriptor, error)) ([]domain.Descriptor, error) {
	if !refresh {
		nodes, ok, err := s.store.Load(ctx, key)
		if err != nil {
			s.logger.Warn("node cache read failed", "kind", key, "error", err)
		}
		if ok {
			return nodes, nil
		}
	}
	nodes, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := s.store.Store(ctx, key, nodes); err != nil {
		s.logger.Warn("node cache write failed", "kind", key, "error", err)
	}
	return nodes, nil
}
