package logging_test

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/septivank/solar-telemetry-ingest/internal/logging"
)

func TestNewLogger_Level(t *testing.T) {
	logger, err := logging.NewLogger("solar-telemetry-ingest", "warn")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected info to be disabled at warn level")
	}

	if _, err := logging.NewLogger("solar-telemetry-ingest", "loud"); err == nil {
		t.Error("Expected invalid level to be rejected")
	}
}

func TestFromContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	logging.WithDomain(logging.FromContext(ctx, base), "weather").Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-42" || fields["domain"] != "weather" {
		t.Errorf("Unexpected fields: %v", fields)
	}
}

func TestFromContext_WithoutRequestID(t *testing.T) {
	base := zap.NewNop()
	if logging.FromContext(context.Background(), base) != base {
		t.Error("Expected the same logger when no request id is present")
	}
}
