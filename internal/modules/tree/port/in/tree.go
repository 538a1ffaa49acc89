package in

import (
	"context"

	"hostnav/internal/modules/tree/dto"
)

// Usecase covers both the one-shot CLI flow and the split fetch/apply flow
// the TUI drives. Methods without a context mutate tree state and must be
// called from a single goroutine; methods with a context only perform I/O.
type Usecase interface {
	Show(ctx context.Context, input dto.ShowInput) (dto.TreeOutput, error)
	Search(ctx context.Context, keyword string) ([]dto.NodeOutput, error)
	Get(ctx context.Context, kind, id string) (dto.NodeOutput, error)
	ClearCache(ctx context.Context) error

	Fetch(ctx context.Context, kind string, refresh bool) (dto.Batch, error)
	FetchAll(ctx context.Context, refresh bool) ([]dto.Batch, error)
	RunSearch(ctx context.Context, req dto.SearchRequest) (dto.SearchResult, error)
	FetchChildren(ctx context.Context, req dto.ExpandRequest) (dto.ChildrenResult, error)

	Install(batch dto.Batch) ([]dto.SearchRequest, error)
	Filter(keyword string) ([]dto.SearchRequest, error)
	Graft(result dto.SearchResult) (dto.GraftOutput, error)
	Toggle(kind string, row int) (*dto.ExpandRequest, error)
	AttachChildren(result dto.ChildrenResult) error
	Rows(kind string) []dto.RowOutput
	Node(kind string, row int) (dto.NodeOutput, bool)
}
