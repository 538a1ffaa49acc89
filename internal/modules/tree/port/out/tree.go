package out

import (
	"context"

	"hostnav/internal/modules/tree/domain"
)

type NodeSource interface {
	FetchGrantedNodes(ctx context.Context, async, refresh bool) ([]domain.Descriptor, error)
	FetchNodeChildren(ctx context.Context, key string) ([]domain.Descriptor, error)
	FetchGrantedRemoteApps(ctx context.Context, refresh bool) ([]domain.Descriptor, error)
	FetchMatchingAssets(ctx context.Context, keyword string) ([]domain.Descriptor, error)
}

type NodeCache interface {
	Load(ctx context.Context, key string) ([]domain.Descriptor, bool, error)
	Store(ctx context.Context, key string, nodes []domain.Descriptor) error
	Clear(ctx context.Context) error
}
