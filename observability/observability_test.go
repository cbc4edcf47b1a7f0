package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/blockflow/errors"
)

func newRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	return m
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Enabled {
		t.Error("expected export disabled by default")
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected MetricInterval 15s, got %v", cfg.MetricInterval)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{SampleRate: 0.5}, false},
		{"sample rate too high", Config{SampleRate: 1.5}, true},
		{"negative interval", Config{SampleRate: 1, MetricInterval: -time.Second}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfigDerivedSettings(t *testing.T) {
	cfg := Config{Endpoint: "otel:4318", Insecure: true, SampleRate: 0.25, MetricInterval: time.Minute}
	info := ServiceInfo{Name: "blockflow", Version: "1.2.3", Environment: "test"}

	tc := cfg.TracerConfig(info)
	if tc.Name != "blockflow" || tc.Endpoint != "otel:4318" || tc.SampleRate != 0.25 {
		t.Errorf("unexpected tracer config: %+v", tc)
	}
	mc := cfg.MeterConfig(info)
	if mc.Interval != time.Minute || !mc.Insecure {
		t.Errorf("unexpected meter config: %+v", mc)
	}
}

func TestNewMetrics(t *testing.T) {
	metrics := newTestMetrics(t)

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "GET", "/api/v1/workspaces/:ws/progress", 200, 100*time.Millisecond)
	metrics.RecordOperation(ctx, "workspace", "connect", "ok", 50*time.Millisecond)
	metrics.RecordError(ctx, "CAPACITY_EXCEEDED", "workspace")
	metrics.RecordValidation(ctx, "training", true)
	metrics.RecordValidation(ctx, "training", false)
}

func TestSetupDisabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{}, ServiceInfo{Name: "blockflow"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if p.Metrics == nil {
		t.Fatal("expected metrics even with export disabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestOperationSuccess(t *testing.T) {
	sr := newRecorder(t)
	metrics := newTestMetrics(t)

	ctx, op := StartOperation(context.Background(), metrics, "workspace", "add_block",
		attribute.String(AttrStage, "training"))
	if !SpanFromContext(ctx).IsRecording() {
		t.Fatal("expected recording span in context")
	}
	op.End(ctx, nil)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	if spans[0].Name() != "workspace.add_block" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].Status().Code == codes.Error {
		t.Error("expected non-error status")
	}
}

func TestOperationUserRejectionKeepsStatus(t *testing.T) {
	sr := newRecorder(t)

	ctx, op := StartOperation(context.Background(), nil, "workspace", "add_block")
	op.End(ctx, errors.CapacityExceeded("train_test_split", 1))

	span := sr.Ended()[0]
	if span.Status().Code == codes.Error {
		t.Error("user rejection should not mark span as error")
	}
	var code string
	for _, kv := range span.Attributes() {
		if string(kv.Key) == AttrErrorCode {
			code = kv.Value.AsString()
		}
	}
	if code != "CAPACITY_EXCEEDED" {
		t.Errorf("expected error.code CAPACITY_EXCEEDED, got %q", code)
	}
}

func TestOperationStructuralMarksError(t *testing.T) {
	sr := newRecorder(t)

	ctx, op := StartOperation(context.Background(), nil, "workspace", "chains")
	op.End(ctx, errors.Structural("cycle detected at %s", "b1"))

	if sr.Ended()[0].Status().Code != codes.Error {
		t.Error("structural error should mark span as error")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{errors.SelfLink("a"), "SELF_LINK"},
		{fmt.Errorf("boom"), "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("StatusOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

type staticChecker Health

func (s staticChecker) CheckHealth(context.Context) Health { return Health(s) }

func TestCollect(t *testing.T) {
	sh := Collect(context.Background(), "blockflow", "1.0.0",
		staticChecker{Name: "storage", Status: HealthStatusUp},
		nil,
		staticChecker{Name: "redis", Status: HealthStatusDegraded},
	)
	if len(sh.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(sh.Components))
	}
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", sh.Status)
	}
}

func TestServiceHealth_DegradedDoesNotOverrideDown(t *testing.T) {
	sh := NewServiceHealth("svc", "1.0.0")
	sh.AddComponent(Health{Name: "a", Status: HealthStatusDown})
	sh.AddComponent(Health{Name: "b", Status: HealthStatusDegraded})

	if sh.Status != HealthStatusDown {
		t.Errorf("expected down to persist, got %s", sh.Status)
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	// should not panic without a span in context
	SetSpanAttribute(context.Background(), "key", "value")
}

func TestSetSpanAttribute(t *testing.T) {
	sr := newRecorder(t)
	ctx, span := StartSpan(context.Background(), "attrs")
	SetSpanAttribute(ctx, AttrBlockID, "b1")
	SetSpanAttribute(ctx, "count", 3)
	span.End()

	if got := len(sr.Ended()[0].Attributes()); got != 2 {
		t.Errorf("expected 2 attributes, got %d", got)
	}
}
