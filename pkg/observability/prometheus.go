package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewPrometheusReader creates an OTel metric reader backed by a private
// Prometheus registry. Each call gets its own registry so repeated runs in
// one process never hit duplicate collector registration.
func NewPrometheusReader() (sdkmetric.Reader, *prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return exporter, registry, nil
}

// PushMetrics sends everything gathered from registry to a Pushgateway,
// replacing the previous push for the same job.
func PushMetrics(ctx context.Context, url, job string, registry prometheus.Gatherer) error {
	if job == "" {
		job = defaultJobName
	}

	err := push.New(url, job).Gatherer(registry).PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}

	return nil
}
