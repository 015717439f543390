package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		if _, err := NewLogger(env); err != nil {
			t.Errorf("%s: unexpected error: %v", env, err)
		}
	}
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestConfigFor_StderrOnly(t *testing.T) {
	for _, env := range []string{"prod", "local", "test"} {
		cfg, err := configFor(env)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", env, err)
		}
		if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stderr" {
			t.Errorf("%s: output paths = %v", env, cfg.OutputPaths)
		}
	}
	prod, _ := configFor("prod")
	if prod.Encoding != "json" {
		t.Errorf("prod encoding = %q", prod.Encoding)
	}
	test, _ := configFor("test")
	if !test.DisableStacktrace {
		t.Error("test env should not print stack traces")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContext_NoLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a no-op logger")
	}
}

func TestWith_AddsFieldsToContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core).With(zap.String("request_id", "r1")))

	ctx = With(ctx, zap.String("session_id", "s1"))
	FromContext(ctx).Info("catalog search")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "r1" || fields["session_id"] != "s1" {
		t.Errorf("fields = %v", fields)
	}
}

func TestWith_NoFieldsKeepsContext(t *testing.T) {
	ctx := context.Background()
	if With(ctx) != ctx {
		t.Error("expected the same context")
	}
}
