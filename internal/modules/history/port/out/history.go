package out

import (
	"context"

	"hostnav/internal/modules/history/domain"
)

type ConnectionStore interface {
	Save(ctx context.Context, connection domain.Connection) error
	Recent(ctx context.Context, limit int) ([]domain.Connection, error)
}
