package logger

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"local", "dev", "docker", "prod"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_ = l.Sync()
		})
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging", Options{}); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", Options{Level: "warn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("local", Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kidprint.log")
	l, err := NewLogger("prod", Options{File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info("hello")
	_ = l.Sync()
}

func TestFromContext_Nop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger, got nil")
	}
}

func TestWithCycle(t *testing.T) {
	base := zap.NewNop()
	ctx, l := WithCycle(context.Background(), base, "c-1")
	if l == nil {
		t.Fatal("expected logger")
	}
	if FromContext(ctx) != l {
		t.Error("context should carry the cycle logger")
	}
}
