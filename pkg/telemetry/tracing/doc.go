// Package tracing exports OpenTelemetry spans for maintenance runs.
//
// Every run driven by maintenance.Runner becomes a root span named
// "maintenance.<task>" carrying the run id, the task and the number of
// affected rows. Spans are exported over OTLP/gRPC; Jaeger and Zipkin
// both accept OTLP directly.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//	runner.SetTracer(tracer.Tracer())
//
// With tracing disabled New returns a Tracer whose spans are no-ops.
package tracing
