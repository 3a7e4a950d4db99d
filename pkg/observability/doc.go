/*
Package observability exports wizard and broadcast activity as Prometheus metrics.

Metrics are fed exclusively through domain.LifecycleHooks, so any component that
accepts hooks can be measured without knowing about Prometheus.
*/
package observability
