package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"hostnav/internal/modules/tree/domain"
	treeout "hostnav/internal/modules/tree/port/out"
	apperrors "hostnav/internal/platform/errors"
)

type Options struct {
	// LoadAsync loads the hosts tree level by level and filters it on the
	// server instead of locally.
	LoadAsync bool
}

type TreeService struct {
	source treeout.NodeSource
	cache  treeout.NodeCache
	async  bool
	order  []domain.Kind
	navs   map[domain.Kind]*Navigator
	logger hclog.Logger
}

func NewTreeService(source treeout.NodeSource, cache treeout.NodeCache, opts Options, logger hclog.Logger) *TreeService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	hostsMode := ModeLocal
	if opts.LoadAsync {
		hostsMode = ModeRemote
	}
	return &TreeService{
		source: source,
		cache:  cache,
		async:  opts.LoadAsync,
		order:  []domain.Kind{domain.KindHosts, domain.KindRemoteApps},
		navs: map[domain.Kind]*Navigator{
			domain.KindHosts:      NewNavigator(domain.KindHosts, hostsMode),
			domain.KindRemoteApps: NewNavigator(domain.KindRemoteApps, ModeLocal),
		},
		logger: logger,
	}
}

func (s *TreeService) Kinds() []domain.Kind {
	out := make([]domain.Kind, len(s.order))
	copy(out, s.order)
	return out
}

func (s *TreeService) Navigator(kind domain.Kind) (*Navigator, error) {
	nav, ok := s.navs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tree kind %q", apperrors.ErrInvalidInput, kind)
	}
	return nav, nil
}

// Fetch performs I/O only and may run off the event loop.
func (s *TreeService) Fetch(ctx context.Context, kind domain.Kind, refresh bool) ([]domain.Descriptor, error) {
	if s.source == nil {
		return nil, fmt.Errorf("node source is not configured")
	}
	switch kind {
	case domain.KindHosts:
		nodes, err := s.source.FetchGrantedNodes(ctx, s.async, refresh)
		if err != nil {
			return nil, fmt.Errorf("fetch granted nodes: %w", err)
		}
		return nodes, nil
	case domain.KindRemoteApps:
		nodes, err := s.source.FetchGrantedRemoteApps(ctx, refresh)
		if err != nil {
			return nil, fmt.Errorf("fetch granted remote apps: %w", err)
		}
		return nodes, nil
	default:
		return nil, fmt.Errorf("%w: unknown tree kind %q", apperrors.ErrInvalidInput, kind)
	}
}

// FetchAll fetches every tree concurrently.
func (s *TreeService) FetchAll(ctx context.Context, refresh bool) (map[domain.Kind][]domain.Descriptor, error) {
	var mu sync.Mutex
	out := make(map[domain.Kind][]domain.Descriptor, len(s.order))
	group, gctx := errgroup.WithContext(ctx)
	for _, kind := range s.order {
		kind := kind
		group.Go(func() error {
			nodes, err := s.Fetch(gctx, kind, refresh)
			if err != nil {
				return err
			}
			mu.Lock()
			out[kind] = nodes
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TreeService) Load(kind domain.Kind, descriptors []domain.Descriptor) (*SearchRequest, error) {
	nav, err := s.Navigator(kind)
	if err != nil {
		return nil, err
	}
	req, err := nav.Load(descriptors)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("load tree", "kind", kind, "nodes", nav.Tree().Len())
	return req, nil
}

// Filter hands the same keyword to every navigator. Each navigator keeps its
// own session, so one tree failing does not stop the other.
func (s *TreeService) Filter(keyword string) ([]SearchRequest, error) {
	var (
		reqs []SearchRequest
		errs []error
	)
	for _, kind := range s.order {
		req, err := s.FilterKind(kind, keyword)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if req != nil {
			reqs = append(reqs, *req)
		}
	}
	return reqs, errors.Join(errs...)
}

func (s *TreeService) FilterKind(kind domain.Kind, keyword string) (*SearchRequest, error) {
	nav, err := s.Navigator(kind)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("filter tree", "kind", kind, "keyword", keyword, "mode", nav.Mode())
	return nav.Filter(keyword)
}

// Search runs the server-side search behind a remote filter request.
func (s *TreeService) Search(ctx context.Context, req SearchRequest) ([]domain.Descriptor, error) {
	if req.Kind != domain.KindHosts {
		return nil, fmt.Errorf("%w: no remote search for %q", apperrors.ErrInvalidInput, req.Kind)
	}
	return s.SearchAssets(ctx, req.Keyword)
}

func (s *TreeService) SearchAssets(ctx context.Context, keyword string) ([]domain.Descriptor, error) {
	if s.source == nil {
		return nil, fmt.Errorf("node source is not configured")
	}
	nodes, err := s.source.FetchMatchingAssets(ctx, keyword)
	if err != nil {
		s.logger.Warn("remote search failed", "keyword", keyword, "error", err)
		return nil, fmt.Errorf("search assets: %w", err)
	}
	return nodes, nil
}

func (s *TreeService) Graft(req SearchRequest, descriptors []domain.Descriptor) (*domain.Node, bool, error) {
	nav, err := s.Navigator(req.Kind)
	if err != nil {
		return nil, false, err
	}
	root, applied, err := nav.Graft(req, descriptors)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		s.logger.Debug("discard stale search", "kind", req.Kind, "keyword", req.Keyword, "generation", req.Generation)
	}
	return root, applied, nil
}

func (s *TreeService) Toggle(kind domain.Kind, row int) (*ExpandRequest, error) {
	nav, err := s.Navigator(kind)
	if err != nil {
		return nil, err
	}
	node := nav.NodeAt(row)
	if node == nil {
		return nil, fmt.Errorf("%w: row %d", apperrors.ErrNotFound, row)
	}
	return nav.Toggle(node), nil
}

func (s *TreeService) FetchChildren(ctx context.Context, req ExpandRequest) ([]domain.Descriptor, error) {
	if s.source == nil {
		return nil, fmt.Errorf("node source is not configured")
	}
	nodes, err := s.source.FetchNodeChildren(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("fetch children of %q: %w", req.Key, err)
	}
	return nodes, nil
}

func (s *TreeService) AttachChildren(req ExpandRequest, descriptors []domain.Descriptor) error {
	nav, err := s.Navigator(req.Kind)
	if err != nil {
		return err
	}
	return nav.AttachChildren(req, descriptors)
}

func (s *TreeService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear node cache: %w", err)
	}
	return nil
}
