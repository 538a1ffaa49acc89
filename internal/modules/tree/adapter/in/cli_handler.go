package in

import (
	"context"

	"hostnav/internal/modules/tree/dto"
	treein "hostnav/internal/modules/tree/port/in"
)

type CLIHandler struct {
	usecase treein.Usecase
}

func NewCLIHandler(usecase treein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context, kind, keyword string, refresh bool) (dto.TreeOutput, error) {
	return h.usecase.Show(ctx, dto.ShowInput{Kind: kind, Keyword: keyword, Refresh: refresh})
}

func (h CLIHandler) Search(ctx context.Context, keyword string) ([]dto.NodeOutput, error) {
	return h.usecase.Search(ctx, keyword)
}

func (h CLIHandler) Get(ctx context.Context, kind, id string) (dto.NodeOutput, error) {
	return h.usecase.Get(ctx, kind, id)
}

func (h CLIHandler) ClearCache(ctx context.Context) error {
	return h.usecase.ClearCache(ctx)
}
