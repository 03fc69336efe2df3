// Package telemetry exports observer runtime activity to Prometheus and
// OpenTelemetry.
//
// Metrics implements observer.Hooks, so installing it on a runtime is
// enough to count observers, deps, notifications and array mutations:
//
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	rt := observer.New(observer.WithHooks(m))
//
// Tracer wraps the structural operations of a runtime in spans:
//
//	tr := telemetry.NewTracer(rt)
//	_, err := tr.Set(ctx, state, "title", "draft")
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in main() before creating tracers.
package telemetry
