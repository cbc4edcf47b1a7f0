// Package observability wires OpenTelemetry tracing and metrics for blockflow.
//
// Export is opt-in through Config.Enabled; without it spans and instruments
// go to the global no-op providers, so call sites never branch on it.
//
//	p, err := observability.Setup(ctx, cfg.Observability, info)
//	defer p.Shutdown(ctx)
//
//	ctx, op := observability.StartOperation(ctx, p.Metrics, "workspace", "connect",
//	    attribute.String(observability.AttrStage, "training"))
//	err := doWork(ctx)
//	op.End(ctx, err)
package observability
