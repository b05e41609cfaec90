package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/palantir/stacktrace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics records the outcome of failure cases and health checks.
// The otel instruments are exported into a dedicated prometheus registry.
type Metrics struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	failureCases     metric.Int64Counter
	healthChecks     metric.Int64Counter
	injectionSeconds metric.Float64Histogram

	runInProgress prometheus.Gauge
}

// NewMetrics builds the registry and the meter provider feeding it
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, stacktrace.Propagate(err, "could not create the prometheus exporter")
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(TracerName)

	m := &Metrics{
		registry: reg,
		provider: provider,
		runInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "resiliency",
			Name:      "run_in_progress",
			Help:      "1 while a resiliency run is injecting failures",
		}),
	}
	reg.MustRegister(m.runInProgress)

	if m.failureCases, err = meter.Int64Counter("resiliency_failure_cases",
		metric.WithDescription("Failure cases executed by scenario, method and result")); err != nil {
		return nil, stacktrace.Propagate(err, "could not create the failure case counter")
	}
	if m.healthChecks, err = meter.Int64Counter("resiliency_health_checks",
		metric.WithDescription("Post-injection health checks by scenario and result")); err != nil {
		return nil, stacktrace.Propagate(err, "could not create the health check counter")
	}
	if m.injectionSeconds, err = meter.Float64Histogram("resiliency_injection_duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of failure injections")); err != nil {
		return nil, stacktrace.Propagate(err, "could not create the injection histogram")
	}
	return m, nil
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordFailureCase records one executed failure case
func (m *Metrics) RecordFailureCase(ctx context.Context, scenario, method string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("scenario", scenario),
		attribute.String("method", method),
		attribute.String("result", result(err)),
	)
	m.failureCases.Add(ctx, 1, attrs)
	m.injectionSeconds.Record(ctx, duration.Seconds(), attrs)
}

// RecordHealthCheck records one post-injection health check
func (m *Metrics) RecordHealthCheck(ctx context.Context, scenario string, err error) {
	if m == nil {
		return
	}
	m.healthChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scenario", scenario),
		attribute.String("result", result(err)),
	))
}

// SetRunInProgress flags whether a run is injecting failures
func (m *Metrics) SetRunInProgress(running bool) {
	if m == nil {
		return
	}
	if running {
		m.runInProgress.Set(1)
		return
	}
	m.runInProgress.Set(0)
}

// Registry returns the prometheus registry the metrics are exported to
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until the context is done
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Infof("[Info]: Serving metrics on %v/metrics", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics server stopped, err: %v", err)
		}
	}()
}

// Shutdown flushes the meter provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
