// Package health provides the health endpoints of the janitor daemon.
//
// # Endpoints
//
//   - liveness (default /health): the process is running
//   - readiness (default /ready): every registered check passes
//   - /version: build information
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("database", health.DatabaseCheck(store))
//	checker.RegisterCheck("storage", health.StorageRootCheck(cfg.Storage.Root))
//	checker.RegisterCheck("scheduler", health.SchedulerCheck(sched.IsRunning))
//
//	health.Register(mux, checker, health.Paths{
//	    Liveness:  "/health",
//	    Readiness: "/ready",
//	    Version:   "/version",
//	}, info)
//
// Readiness runs all checks concurrently, each bounded by the checker
// timeout, and answers 503 when any of them fails.
package health
