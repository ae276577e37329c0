package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/treasury-stress-go/internal/scheduler"

	"go.uber.org/zap"
)

type countingRefresher struct {
	calls    atomic.Int32
	err      error
	deadline atomic.Bool
}

func (r *countingRefresher) RefreshBaseline(ctx context.Context) error {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		r.deadline.Store(true)
	}
	return r.err
}

func TestRunNow(t *testing.T) {
	ref := &countingRefresher{}
	s := scheduler.New(context.Background(), ref, time.Second, zap.NewNop())

	if err := s.RunNow(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ref.calls.Load() != 1 {
		t.Errorf("expected 1 refresh, got %d", ref.calls.Load())
	}
	if !ref.deadline.Load() {
		t.Error("expected refresh context to carry a deadline")
	}
}

func TestRunNow_PropagatesError(t *testing.T) {
	ref := &countingRefresher{err: errors.New("store down")}
	s := scheduler.New(context.Background(), ref, time.Second, zap.NewNop())

	if err := s.RunNow(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := scheduler.New(context.Background(), &countingRefresher{}, time.Second, zap.NewNop())

	if err := s.Register("every five minutes"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	ref := &countingRefresher{}
	s := scheduler.New(context.Background(), ref, time.Second, zap.NewNop())

	if err := s.Register("* * * * * *"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s.Start()

	deadline := time.Now().Add(3 * time.Second)
	for ref.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	s.Stop()

	if ref.calls.Load() == 0 {
		t.Fatal("expected at least one scheduled refresh")
	}
}
