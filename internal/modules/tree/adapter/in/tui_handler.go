package in

import (
	"context"

	"hostnav/internal/modules/tree/dto"
	treein "hostnav/internal/modules/tree/port/in"
)

// TUIHandler exposes the split fetch/apply flow. Fetch-style methods run
// inside tea.Cmd goroutines; the rest run on the Update loop.
type TUIHandler struct {
	usecase treein.Usecase
}

func NewTUIHandler(usecase treein.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) FetchAll(ctx context.Context, refresh bool) ([]dto.Batch, error) {
	return h.usecase.FetchAll(ctx, refresh)
}

func (h TUIHandler) Fetch(ctx context.Context, kind string, refresh bool) (dto.Batch, error) {
	return h.usecase.Fetch(ctx, kind, refresh)
}

func (h TUIHandler) RunSearch(ctx context.Context, req dto.SearchRequest) (dto.SearchResult, error) {
	return h.usecase.RunSearch(ctx, req)
}

func (h TUIHandler) FetchChildren(ctx context.Context, req dto.ExpandRequest) (dto.ChildrenResult, error) {
	return h.usecase.FetchChildren(ctx, req)
}

func (h TUIHandler) Install(batch dto.Batch) ([]dto.SearchRequest, error) {
	return h.usecase.Install(batch)
}

func (h TUIHandler) Filter(keyword string) ([]dto.SearchRequest, error) {
	return h.usecase.Filter(keyword)
}

func (h TUIHandler) Graft(result dto.SearchResult) (dto.GraftOutput, error) {
	return h.usecase.Graft(result)
}

func (h TUIHandler) Toggle(kind string, row int) (*dto.ExpandRequest, error) {
	return h.usecase.Toggle(kind, row)
}

func (h TUIHandler) AttachChildren(result dto.ChildrenResult) error {
	return h.usecase.AttachChildren(result)
}

func (h TUIHandler) Rows(kind string) []dto.RowOutput {
	return h.usecase.Rows(kind)
}

func (h TUIHandler) Node(kind string, row int) (dto.NodeOutput, bool) {
	return h.usecase.Node(kind, row)
}
