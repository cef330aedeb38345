// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	conversions        *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	solverIterations   *prometheus.HistogramVec
	batchSize          *prometheus.HistogramVec
	pipelinesLoaded    prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector registered with
// reg. A nil reg registers with the default registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "geodatum"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		conversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of point conversions",
			},
			[]string{"pipeline", "direction", "status"},
		),

		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Conversion duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"pipeline", "direction"},
		),

		solverIterations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solver_iterations",
				Help:      "Iterations of the Cartesian to geodetic solver",
				Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10, 20, 50, 100},
			},
			[]string{"pipeline"},
		),

		batchSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_size",
				Help:      "Number of points per batch conversion",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"pipeline"},
		),

		pipelinesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pipelines_loaded",
				Help:      "Number of pipelines in the catalog",
			},
		),
	}
}

// IncConversions increments the conversion counter.
func (c *Collector) IncConversions(pipeline, direction string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.conversions.WithLabelValues(pipeline, direction, status).Inc()
}

// ObserveConversionDuration records conversion duration.
func (c *Collector) ObserveConversionDuration(pipeline, direction string, duration time.Duration) {
	c.conversionDuration.WithLabelValues(pipeline, direction).Observe(duration.Seconds())
}

// ObserveSolverIterations records solver iterations.
func (c *Collector) ObserveSolverIterations(pipeline string, iterations int) {
	c.solverIterations.WithLabelValues(pipeline).Observe(float64(iterations))
}

// ObserveBatchSize records the size of a batch.
func (c *Collector) ObserveBatchSize(pipeline string, size int) {
	c.batchSize.WithLabelValues(pipeline).Observe(float64(size))
}

// SetPipelinesLoaded sets the number of catalog entries.
func (c *Collector) SetPipelinesLoaded(count int) {
	c.pipelinesLoaded.Set(float64(count))
}

// WriteText writes every metric family gathered from g to w in the
// Prometheus text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
