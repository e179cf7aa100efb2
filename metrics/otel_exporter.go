package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export in Prometheus format
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	registry      *promclient.Registry

	meter       metric.Meter
	booksGauge  metric.Int64ObservableGauge
	coversGauge metric.Int64ObservableGauge
}

// NewOTelExporter creates an exporter writing to registry and installs its
// meter provider as the global one, so instruments created through otel.Meter
// elsewhere are exported too.
func NewOTelExporter(collector Collector, registry *promclient.Registry) (*OTelExporter, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"book-manager",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		registry:      registry,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.booksGauge, err = oe.meter.Int64ObservableGauge(
		"book.catalog.books",
		metric.WithDescription("Number of books in the catalog"),
		metric.WithUnit("{books}"),
	)
	if err != nil {
		return fmt.Errorf("creating books gauge: %w", err)
	}

	oe.coversGauge, err = oe.meter.Int64ObservableGauge(
		"book.catalog.covers",
		metric.WithDescription("Number of books with a stored cover, per side"),
		metric.WithUnit("{books}"),
	)
	if err != nil {
		return fmt.Errorf("creating covers gauge: %w", err)
	}

	// one Collect per scrape for both gauges
	_, err = oe.meter.RegisterCallback(oe.observe, oe.booksGauge, oe.coversGauge)
	if err != nil {
		return fmt.Errorf("registering callback: %w", err)
	}

	return nil
}

func (oe *OTelExporter) observe(ctx context.Context, observer metric.Observer) error {
	m, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}

	observer.ObserveInt64(oe.booksGauge, m.Books)
	for side, count := range m.Covers {
		observer.ObserveInt64(oe.coversGauge, count, metric.WithAttributes(
			attribute.String("cover.side", side),
		))
	}

	return nil
}

// ServeHTTP returns the handler serving Prometheus-formatted metrics
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
