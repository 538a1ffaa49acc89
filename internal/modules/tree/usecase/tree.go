package usecase

import (
	"context"
	"fmt"

	"hostnav/internal/modules/tree/domain"
	"hostnav/internal/modules/tree/dto"
	treein "hostnav/internal/modules/tree/port/in"
	"hostnav/internal/modules/tree/service"
	apperrors "hostnav/internal/platform/errors"
)

type Interactor struct {
	svc *service.TreeService
}

func NewInteractor(svc *service.TreeService) treein.Usecase {
	return &Interactor{svc: svc}
}

// Show loads one tree, applies the keyword and resolves a remote search
// synchronously.
func (i *Interactor) Show(ctx context.Context, input dto.ShowInput) (dto.TreeOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return dto.TreeOutput{}, err
	}
	nodes, err := i.svc.Fetch(ctx, kind, input.Refresh)
	if err != nil {
		return dto.TreeOutput{}, err
	}
	if _, err := i.svc.Load(kind, nodes); err != nil {
		return dto.TreeOutput{}, err
	}
	req, err := i.svc.FilterKind(kind, input.Keyword)
	if err != nil {
		return dto.TreeOutput{}, err
	}
	if req != nil {
		found, err := i.svc.Search(ctx, *req)
		if err != nil {
			return dto.TreeOutput{}, err
		}
		if _, _, err := i.svc.Graft(*req, found); err != nil {
			return dto.TreeOutput{}, err
		}
	}
	nav, err := i.svc.Navigator(kind)
	if err != nil {
		return dto.TreeOutput{}, err
	}
	return dto.TreeOutput{
		Kind:    string(kind),
		Mode:    string(nav.Mode()),
		Keyword: input.Keyword,
		Total:   nav.Tree().Len(),
		Rows:    rowsToOutputs(nav.Rows()),
	}, nil
}

func (i *Interactor) Search(ctx context.Context, keyword string) ([]dto.NodeOutput, error) {
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", apperrors.ErrInvalidInput)
	}
	nodes, err := i.svc.SearchAssets(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return descriptorsToOutputs(nodes), nil
}

func (i *Interactor) Get(ctx context.Context, kind, id string) (dto.NodeOutput, error) {
	k, err := parseKind(kind)
	if err != nil {
		return dto.NodeOutput{}, err
	}
	nav, err := i.svc.Navigator(k)
	if err != nil {
		return dto.NodeOutput{}, err
	}
	if !nav.Loaded() {
		nodes, err := i.svc.Fetch(ctx, k, false)
		if err != nil {
			return dto.NodeOutput{}, err
		}
		if _, err := i.svc.Load(k, nodes); err != nil {
			return dto.NodeOutput{}, err
		}
	}
	node := nav.Tree().FindByID(id)
	if node == nil {
		return dto.NodeOutput{}, fmt.Errorf("%w: node %q in %s tree", apperrors.ErrNotFound, id, k)
	}
	return toNodeOutput(node), nil
}

func (i *Interactor) ClearCache(ctx context.Context) error {
	return i.svc.ClearCache(ctx)
}

func (i *Interactor) Fetch(ctx context.Context, kind string, refresh bool) (dto.Batch, error) {
	k, err := parseKind(kind)
	if err != nil {
		return dto.Batch{}, err
	}
	nodes, err := i.svc.Fetch(ctx, k, refresh)
	if err != nil {
		return dto.Batch{}, err
	}
	return dto.Batch{Kind: string(k), Refresh: refresh, Nodes: descriptorsToOutputs(nodes)}, nil
}

func (i *Interactor) FetchAll(ctx context.Context, refresh bool) ([]dto.Batch, error) {
	trees, err := i.svc.FetchAll(ctx, refresh)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Batch, 0, len(trees))
	for _, kind := range i.svc.Kinds() {
		out = append(out, dto.Batch{Kind: string(kind), Refresh: refresh, Nodes: descriptorsToOutputs(trees[kind])})
	}
	return out, nil
}

func (i *Interactor) RunSearch(ctx context.Context, req dto.SearchRequest) (dto.SearchResult, error) {
	nodes, err := i.svc.Search(ctx, fromSearchRequest(req))
	if err != nil {
		return dto.SearchResult{Request: req}, err
	}
	return dto.SearchResult{Request: req, Nodes: descriptorsToOutputs(nodes)}, nil
}

func (i *Interactor) FetchChildren(ctx context.Context, req dto.ExpandRequest) (dto.ChildrenResult, error) {
	nodes, err := i.svc.FetchChildren(ctx, fromExpandRequest(req))
	if err != nil {
		return dto.ChildrenResult{Request: req}, err
	}
	return dto.ChildrenResult{Request: req, Nodes: descriptorsToOutputs(nodes)}, nil
}

func (i *Interactor) Install(batch dto.Batch) ([]dto.SearchRequest, error) {
	kind, err := parseKind(batch.Kind)
	if err != nil {
		return nil, err
	}
	req, err := i.svc.Load(kind, outputsToDescriptors(batch.Nodes))
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, nil
	}
	return []dto.SearchRequest{toSearchRequest(*req)}, nil
}

func (i *Interactor) Filter(keyword string) ([]dto.SearchRequest, error) {
	reqs, err := i.svc.Filter(keyword)
	out := make([]dto.SearchRequest, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toSearchRequest(req))
	}
	return out, err
}

func (i *Interactor) Graft(result dto.SearchResult) (dto.GraftOutput, error) {
	_, applied, err := i.svc.Graft(fromSearchRequest(result.Request), outputsToDescriptors(result.Nodes))
	if err != nil {
		return dto.GraftOutput{}, err
	}
	return dto.GraftOutput{Applied: applied, Matches: len(result.Nodes)}, nil
}

func (i *Interactor) Toggle(kind string, row int) (*dto.ExpandRequest, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	req, err := i.svc.Toggle(k, row)
	if err != nil || req == nil {
		return nil, err
	}
	return &dto.ExpandRequest{Kind: string(req.Kind), Token: req.Token, Key: req.Key}, nil
}

func (i *Interactor) AttachChildren(result dto.ChildrenResult) error {
	return i.svc.AttachChildren(fromExpandRequest(result.Request), outputsToDescriptors(result.Nodes))
}

func (i *Interactor) Rows(kind string) []dto.RowOutput {
	k, err := parseKind(kind)
	if err != nil {
		return nil
	}
	nav, err := i.svc.Navigator(k)
	if err != nil {
		return nil
	}
	return rowsToOutputs(nav.Rows())
}

func (i *Interactor) Node(kind string, row int) (dto.NodeOutput, bool) {
	k, err := parseKind(kind)
	if err != nil {
		return dto.NodeOutput{}, false
	}
	nav, err := i.svc.Navigator(k)
	if err != nil {
		return dto.NodeOutput{}, false
	}
	node := nav.NodeAt(row)
	if node == nil {
		return dto.NodeOutput{}, false
	}
	return toNodeOutput(node), true
}

func parseKind(kind string) (domain.Kind, error) {
	k := domain.Kind(kind)
	if err := k.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return k, nil
}

func toSearchRequest(req service.SearchRequest) dto.SearchRequest {
	return dto.SearchRequest{Kind: string(req.Kind), Keyword: req.Keyword, Generation: req.Generation}
}

func fromSearchRequest(req dto.SearchRequest) service.SearchRequest {
	return service.SearchRequest{Kind: domain.Kind(req.Kind), Keyword: req.Keyword, Generation: req.Generation}
}

func fromExpandRequest(req dto.ExpandRequest) service.ExpandRequest {
	return service.ExpandRequest{Kind: domain.Kind(req.Kind), Token: req.Token, Key: req.Key}
}
