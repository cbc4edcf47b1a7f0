package observability

import (
	"context"
	stderrors "errors"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider owns the exporters started by Setup.
type Provider struct {
	Metrics *Metrics

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Setup starts OTLP export when cfg.Enabled and builds the metric instruments.
// With export disabled the instruments record against the global no-op meter.
func Setup(ctx context.Context, cfg Config, info ServiceInfo) (*Provider, error) {
	p := &Provider{}
	if cfg.Enabled {
		tp, err := InitTracer(ctx, cfg.TracerConfig(info))
		if err != nil {
			return nil, err
		}
		p.tp = tp

		mp, err := InitMeter(ctx, cfg.MeterConfig(info))
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		p.mp = mp
	}

	metrics, err := NewMetrics(Meter(info.Name))
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.Metrics = metrics
	return p, nil
}

// Shutdown flushes and stops any exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tp != nil {
		errs = append(errs, p.tp.Shutdown(ctx))
	}
	if p.mp != nil {
		errs = append(errs, p.mp.Shutdown(ctx))
	}
	return stderrors.Join(errs...)
}
