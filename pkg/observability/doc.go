/*
Package observability turns the lifecycle hooks of a run into logs and Prometheus metrics.

Hooks from several sources can be combined with Merge:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Merge(metrics.Hooks(), observability.LogHooks(logger))
*/
package observability
