package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/config"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestPurgeLoop_RunsUntilCancelled(t *testing.T) {
	p := &countingPurger{err: errors.New("locked")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		purgeLoop(ctx, p, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for p.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("purge never ran twice")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("purge loop did not stop")
	}
}

func TestPurgeLoop_DisabledReturnsImmediately(t *testing.T) {
	p := &countingPurger{}
	purgeLoop(context.Background(), p, 0, zap.NewNop())
	if p.calls.Load() != 0 {
		t.Errorf("calls = %d", p.calls.Load())
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "sessions.db")
	cfg.Database.ReadinessTimeout = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, err := OpenStore(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("get = %q, %v", got, err)
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "mongo"
	if _, err := OpenStore(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewCatalog_UsesConfiguredLimits(t *testing.T) {
	cfg := &config.Config{}
	cfg.Query.DefaultLimit = 50
	cfg.Query.MaxLimit = 500
	svc := NewCatalog(cfg, nil, zap.NewNop())
	if l := svc.Limits(); l.Default != 50 || l.Max != 500 {
		t.Errorf("limits = %+v", l)
	}
	if len(svc.Populations()) == 0 {
		t.Error("populations not registered")
	}
}
