package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"bingo-battle/internal/game"
)

func TestSweepIdleKeepsOccupiedRooms(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	empty := mustCreate(t, svc)
	occupied := mustCreate(t, svc)
	if _, err := svc.Join(ctx, occupied, "Ann", "conn-a"); err != nil {
		t.Fatalf("join: %v", err)
	}

	n, err := svc.SweepIdle(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 room swept, got %d", n)
	}
	if _, err := svc.Get(ctx, empty); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected empty room gone, got %v", err)
	}
	if _, err := svc.Get(ctx, occupied); err != nil {
		t.Fatalf("occupied room should remain: %v", err)
	}
}

func TestSweepIdleRespectsCutoff(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	ctx := context.Background()
	roomID := mustCreate(t, svc)

	n, err := svc.SweepIdle(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("fresh room should not be swept, got %d", n)
	}
	if _, err := svc.Get(ctx, roomID); err != nil {
		t.Fatalf("get: %v", err)
	}
}
