package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name    string
	startFn func(ctx context.Context) error
	stopped atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error { return s.startFn(ctx) }

func (s *fakeService) Stop(_ context.Context) error {
	s.stopped.Store(true)
	return nil
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	failing := &fakeService{name: "broken", startFn: func(context.Context) error { return errors.New("bind failed") }}
	healthy := &fakeService{name: "sweeper", startFn: blockUntilDone}
	runner := NewRunner(failing, healthy)

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "broken: bind failed" {
		t.Fatalf("want wrapped failure got %v", err)
	}
	if !failing.stopped.Load() || !healthy.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := &fakeService{name: "http", startFn: blockUntilDone}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("want nil got %v", err)
	}
	if got := NewRunner(svc, nil).Names(); len(got) != 1 || got[0] != "http" {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
}

func TestNormalizeOptionsAndMode(t *testing.T) {
	opts := normalizeOptions(Options{Mode: "  API "})
	if opts.Mode != ModeAPI || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected options %+v", opts)
	}
	if err := validateMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if err := Run(Options{Config: nil}); err == nil {
		t.Fatalf("nil config should fail")
	}
}
