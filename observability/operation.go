package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/blockflow/errors"
)

// Operation tracks one traced and metered unit of work.
type Operation struct {
	component string
	name      string
	start     time.Time
	span      trace.Span
	metrics   *Metrics
}

// StartOperation opens a span named "<component>.<name>". A nil metrics
// skips metric recording.
func StartOperation(ctx context.Context, metrics *Metrics, component, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, component+"."+name, trace.WithAttributes(attrs...))
	return ctx, &Operation{
		component: component,
		name:      name,
		start:     time.Now(),
		span:      span,
		metrics:   metrics,
	}
}

// End closes the span and records the outcome. User rejections are tagged
// with their code but leave the span status unset.
func (op *Operation) End(ctx context.Context, err error) {
	duration := time.Since(op.start)
	status := StatusOf(err)

	if err != nil {
		op.span.SetAttributes(
			attribute.String(AttrErrorCode, status),
			attribute.String(AttrErrorMessage, err.Error()),
		)
		if appErr, ok := errors.AsAppError(err); !ok || appErr.Kind != errors.KindUser {
			op.span.RecordError(err)
			op.span.SetStatus(codes.Error, status)
		}
	}
	op.span.SetAttributes(attribute.String(AttrStatus, status))
	op.span.End()

	if op.metrics != nil {
		op.metrics.RecordOperation(ctx, op.component, op.name, status, duration)
		if err != nil {
			op.metrics.RecordError(ctx, status, op.component)
		}
	}
}

// SetAttributes adds attributes to the operation's span.
func (op *Operation) SetAttributes(attrs ...attribute.KeyValue) {
	op.span.SetAttributes(attrs...)
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.start)
}

// StatusOf maps an operation result to a metric status label.
func StatusOf(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(errors.ErrCodeInternal)
}
