// Package telemetry groups the observability packages of janitor.
//
// # Components
//
//   - logging: slog construction and run/task context fields
//   - metrics: Prometheus maintenance metrics and the /metrics handler
//   - tracing: OpenTelemetry spans for maintenance runs, exported over OTLP
//   - health: liveness and readiness endpoints
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, _ := logging.New(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//	slog.SetDefault(logger)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	runner.SetRecorder(collector)
//	runner.SetTracer(tracer.Tracer())
package telemetry
