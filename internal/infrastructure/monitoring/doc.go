/*
Package monitoring provides Prometheus metrics for the storage backend.

# Overview

Metrics are registered on a private registry owned by each Metrics value, so
tests and embedded servers can build as many instances as they like. The
registry is exposed through Handler for the /metrics endpoint.

# Metrics

- HTTP request metrics (latency, throughput, size)
- Saves by strategy and outcome, save duration, bytes written
- Chunk writes by bridge operation
- Deletes by outcome, scan entries skipped
- Live ephemeral handles
- Native bridge breaker state
- Uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "chunked")
	// ... perform save ...
	timer.Stop("success")

All recording methods are safe on a nil *Metrics.
*/
package monitoring
