package out

import (
	"context"
	"fmt"

	connectout "hostnav/internal/modules/connect/port/out"
	historydto "hostnav/internal/modules/history/dto"
	historyin "hostnav/internal/modules/history/port/in"
)

type HistoryRecorder struct {
	history historyin.Usecase
}

func NewHistoryRecorder(history historyin.Usecase) connectout.Recorder {
	return &HistoryRecorder{history: history}
}

func (r *HistoryRecorder) Record(ctx context.Context, dispatch connectout.Dispatch) error {
	_, err := r.history.Record(ctx, historydto.RecordInput{
		NodeID:    dispatch.NodeID,
		Title:     dispatch.Title,
		Mode:      string(dispatch.Mode),
		Connector: dispatch.Connector,
		StartedAt: dispatch.StartedAt,
	})
	if err != nil {
		return fmt.Errorf("record connection: %w", err)
	}
	return nil
}
