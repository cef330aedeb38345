package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncConversions increments the conversion counter.
	IncConversions(pipeline, direction string, success bool)

	// ObserveConversionDuration records conversion duration.
	ObserveConversionDuration(pipeline, direction string, duration time.Duration)

	// ObserveSolverIterations records the iterations of the geodetic solver.
	ObserveSolverIterations(pipeline string, iterations int)

	// SetPipelinesLoaded sets the number of catalog entries.
	SetPipelinesLoaded(count int)

	// ObserveBatchSize records the number of points in a batch.
	ObserveBatchSize(pipeline string, size int)
}

// Conversion directions.
const (
	DirectionForward = "forward"
	DirectionInverse = "inverse"
)

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncConversions implements MetricsCollector.
func (n *NoOpMetrics) IncConversions(_, _ string, _ bool) {}

// ObserveConversionDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveConversionDuration(_, _ string, _ time.Duration) {}

// ObserveSolverIterations implements MetricsCollector.
func (n *NoOpMetrics) ObserveSolverIterations(_ string, _ int) {}

// SetPipelinesLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetPipelinesLoaded(_ int) {}

// ObserveBatchSize implements MetricsCollector.
func (n *NoOpMetrics) ObserveBatchSize(_ string, _ int) {}
