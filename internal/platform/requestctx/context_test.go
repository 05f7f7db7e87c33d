package requestctx

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerFallsBackToNoop(t *testing.T) {
	if got := Logger(context.Background()); got != NoopLogger() {
		t.Fatalf("expected noop logger for bare context")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := zap.NewNop().Named("test")
	ctx := WithLogger(context.Background(), logger)
	if got := Logger(ctx); got != logger {
		t.Fatalf("stored logger not returned")
	}
}

func TestTraceRoundTrip(t *testing.T) {
	info := TraceInfo{TraceID: "abc123", SpanID: "def", Sampled: true, ProjectID: "shop-prod"}
	ctx := WithTrace(context.Background(), info)

	got, ok := Trace(ctx)
	if !ok || got != info {
		t.Fatalf("Trace = %+v, %v", got, ok)
	}
	if TraceID(ctx) != "abc123" {
		t.Fatalf("TraceID = %q", TraceID(ctx))
	}
	if _, ok := Trace(context.Background()); ok {
		t.Fatalf("bare context must carry no trace")
	}
}

func TestTraceInfoLogResource(t *testing.T) {
	info := TraceInfo{TraceID: "abc123", ProjectID: "shop-prod"}
	if got := info.LogResource(); got != "projects/shop-prod/traces/abc123" {
		t.Fatalf("LogResource = %q", got)
	}
	if got := (TraceInfo{TraceID: "abc123"}).LogResource(); got != "" {
		t.Fatalf("LogResource without project = %q", got)
	}
	if got := (TraceInfo{ProjectID: "shop-prod"}).LogResource(); got != "" {
		t.Fatalf("LogResource without trace = %q", got)
	}
}
