package out_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	treeoutadapter "hostnav/internal/modules/tree/adapter/out"
	"hostnav/internal/modules/tree/domain"
	"hostnav/internal/platform/clock"
)

var fixedClock = clock.Fixed{At: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

type countingSource struct {
	mu     sync.Mutex
	counts map[string]int
}

func (s *countingSource) hit(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	s.counts[key]++
}

func (s *countingSource) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key]
}

func (s *countingSource) FetchGrantedNodes(context.Context, bool, bool) ([]domain.Descriptor, error) {
	s.hit("hosts")
	return []domain.Descriptor{
		{ID: "1", Name: "Default", IsParent: true, Open: true},
		{ID: "a1", PID: "1", Name: "web-01", Meta: domain.AssetMeta{Hostname: "web-01", IP: "10.0.0.1", Protocols: []string{"ssh/22"}}},
	}, nil
}

func (s *countingSource) FetchNodeChildren(context.Context, string) ([]domain.Descriptor, error) {
	s.hit("children")
	return nil, nil
}

func (s *countingSource) FetchGrantedRemoteApps(context.Context, bool) ([]domain.Descriptor, error) {
	s.hit("apps")
	return []domain.Descriptor{{ID: "app1", Name: "chrome", Meta: domain.RemoteAppMeta{AppType: "chrome"}}}, nil
}

func (s *countingSource) FetchMatchingAssets(context.Context, string) ([]domain.Descriptor, error) {
	s.hit("search")
	return []domain.Descriptor{{ID: "a1", Name: "web-01"}}, nil
}

func newCache(t *testing.T) *treeoutadapter.SQLiteNodeCache {
	t.Helper()
	store, err := treeoutadapter.NewSQLiteNodeCache(filepath.Join(t.TempDir(), "hostnav.db"), fixedClock)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteCacheRoundTripsMeta(t *testing.T) {
	t.Parallel()
	store := newCache(t)
	ctx := context.Background()
	if _, ok, err := store.Load(ctx, "hosts"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	nodes, _ := (&countingSource{}).FetchGrantedNodes(ctx, false, false)
	if err := store.Store(ctx, "hosts", nodes); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, ok, err := store.Load(ctx, "hosts")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	meta, isAsset := got[1].Meta.(domain.AssetMeta)
	if !isAsset || meta.IP != "10.0.0.1" || got[1].PID != "1" {
		t.Fatalf("unexpected cached node: %+v", got[1])
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "hosts"); ok {
		t.Fatalf("expected miss after clear")
	}
}

func TestCachedSourceServesFromStoreUntilRefresh(t *testing.T) {
	t.Parallel()
	next := &countingSource{}
	source := treeoutadapter.NewCachedNodeSource(next, newCache(t), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := source.FetchGrantedNodes(ctx, false, false); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if next.count("hosts") != 1 {
		t.Fatalf("expected one upstream fetch, got %d", next.count("hosts"))
	}
	if _, err := source.FetchGrantedNodes(ctx, false, true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.count("hosts") != 2 {
		t.Fatalf("refresh must bypass the cache")
	}
	if _, err := source.FetchGrantedNodes(ctx, true, false); err != nil {
		t.Fatalf("async: %v", err)
	}
	if next.count("hosts") != 3 {
		t.Fatalf("async loads must bypass the cache")
	}
}

func TestCachedSourceMemoisesSearch(t *testing.T) {
	t.Parallel()
	next := &countingSource{}
	source := treeoutadapter.NewCachedNodeSource(next, newCache(t), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := source.FetchMatchingAssets(ctx, "web"); err != nil {
			t.Fatalf("search: %v", err)
		}
	}
	if next.count("search") != 1 {
		t.Fatalf("expected memoised search, got %d calls", next.count("search"))
	}
	if err := source.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := source.FetchMatchingAssets(ctx, "web"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if next.count("search") != 2 {
		t.Fatalf("clear must flush the search memo")
	}
}
