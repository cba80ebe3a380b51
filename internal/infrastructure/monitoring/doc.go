/*
Package monitoring provides Prometheus metrics for the browser session service.

# Overview

Collectors are registered against an explicit prometheus.Registerer so
tests can use a private registry while the server uses the default one.

# Metrics

- HTTP requests (count, latency) labelled by route template
- Snapshot writes by save path (immediate, deferred, flush) and result
- Save requests coalesced into a deferred write
- Restore outcomes
- Open tab count and tab mutations by operation
- WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer(metrics, monitoring.SaveDeferred)
	err := store.Set(ctx, key, data)
	timer.Stop(len(data), err)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
