package out

import (
	"context"
	"time"

	"hostnav/internal/modules/connect/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	PrepareSession(ctx context.Context, manifest domain.Manifest, req domain.Request) (domain.SessionPlan, error)
}

// Planner builds a session without a plugin process.
type Planner interface {
	Name() string
	Plan(ctx context.Context, req domain.Request) (domain.SessionPlan, error)
}

type Dispatch struct {
	NodeID    string
	Title     string
	Mode      domain.Mode
	Connector string
	StartedAt time.Time
}

type Recorder interface {
	Record(ctx context.Context, dispatch Dispatch) error
}
