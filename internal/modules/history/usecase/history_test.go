package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hostnav/internal/modules/history/domain"
	"hostnav/internal/modules/history/dto"
	"hostnav/internal/modules/history/service"
	"hostnav/internal/modules/history/usecase"
	"hostnav/internal/platform/clock"
	apperrors "hostnav/internal/platform/errors"
)

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("conn-%d", s.n)
}

type memoryStore struct {
	saved     []domain.Connection
	lastLimit int
}

func (s *memoryStore) Save(_ context.Context, c domain.Connection) error {
	s.saved = append(s.saved, c)
	return nil
}

func (s *memoryStore) Recent(_ context.Context, limit int) ([]domain.Connection, error) {
	s.lastLimit = limit
	out := []domain.Connection{}
	for i := len(s.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.saved[i])
	}
	return out, nil
}

func TestRecordStampsIDAndTime(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{}
	uc := usecase.NewInteractor(service.NewHistoryService(clock.Fixed{At: now}, &seqIDs{}, store))

	out, err := uc.Record(context.Background(), dto.RecordInput{NodeID: "h1", Title: "web-1", Mode: "asset", Connector: "openssh"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.ID != "conn-1" || !out.StartedAt.Equal(now) {
		t.Fatalf("unexpected record output: %+v", out)
	}
	if len(store.saved) != 1 || store.saved[0].NodeID != "h1" {
		t.Fatalf("unexpected saved rows: %+v", store.saved)
	}
}

func TestRecordKeepsExplicitStart(t *testing.T) {
	t.Parallel()
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &memoryStore{}
	uc := usecase.NewInteractor(service.NewHistoryService(clock.Fixed{At: started.Add(time.Hour)}, &seqIDs{}, store))
	out, err := uc.Record(context.Background(), dto.RecordInput{NodeID: "h1", Connector: "openssh", StartedAt: started})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !out.StartedAt.Equal(started) {
		t.Fatalf("expected explicit start to win, got %s", out.StartedAt)
	}
}

func TestRecordRejectsMissingNode(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewHistoryService(clock.Fixed{}, &seqIDs{}, &memoryStore{}))
	if _, err := uc.Record(context.Background(), dto.RecordInput{Connector: "openssh"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Record(context.Background(), dto.RecordInput{NodeID: "h1"}); err == nil {
		t.Fatalf("expected missing connector error")
	}
}

func TestRecentDefaultsLimit(t *testing.T) {
	t.Parallel()
	store := &memoryStore{}
	uc := usecase.NewInteractor(service.NewHistoryService(clock.Fixed{At: time.Now()}, &seqIDs{}, store))
	for _, id := range []string{"a", "b"} {
		if _, err := uc.Record(context.Background(), dto.RecordInput{NodeID: id, Connector: "openssh"}); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}
	recent, err := uc.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if store.lastLimit != domain.DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", domain.DefaultLimit, store.lastLimit)
	}
	if len(recent) != 2 || recent[0].NodeID != "b" {
		t.Fatalf("unexpected recent: %+v", recent)
	}
}
