package application

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/ports/output"
)

var errMockTrace = errors.New("mock trace failure")

// mockPipeline implements output.DatumPipeline for testing. The plane point
// is the input scaled by 1e5 so the inverse is exact.
type mockPipeline struct {
	info       domain.PipelineInfo
	failAt     func(p domain.GeodeticPoint) bool
	inverseErr error
	calls      atomic.Int32
}

func (m *mockPipeline) Info() domain.PipelineInfo {
	return m.info
}

func (m *mockPipeline) Trace(p domain.GeodeticPoint) (domain.ConversionResult, error) {
	m.calls.Add(1)
	if m.failAt != nil && m.failAt(p) {
		return domain.ConversionResult{}, fmt.Errorf("%v: %w", p, errMockTrace)
	}
	return domain.ConversionResult{
		Pipeline:   m.info.Name,
		Input:      p,
		Plane:      domain.NewGaussPlanePoint(p.Longitude*1e5, p.Latitude*1e5, p.Height),
		Iterations: 3,
	}, nil
}

func (m *mockPipeline) Inverse(p domain.GaussPlanePoint) (domain.GeodeticPoint, error) {
	if m.inverseErr != nil {
		return domain.GeodeticPoint{}, m.inverseErr
	}
	return domain.NewGeodeticPoint(p.Y/1e5, p.X/1e5, p.H), nil
}

// mockCatalog implements output.PipelineCatalog for testing.
type mockCatalog struct {
	pipelines   map[string]*mockPipeline
	defaultName string
}

func newMockCatalog(pipelines ...*mockPipeline) *mockCatalog {
	c := &mockCatalog{pipelines: make(map[string]*mockPipeline)}
	for _, p := range pipelines {
		c.pipelines[p.info.Name] = p
	}
	if len(pipelines) > 0 {
		c.defaultName = pipelines[0].info.Name
	}
	return c
}

func (m *mockCatalog) Lookup(name string) (output.DatumPipeline, error) {
	if name == "" {
		name = m.defaultName
	}
	p, ok := m.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrPipelineNotFound)
	}
	return p, nil
}

func (m *mockCatalog) Infos() []domain.PipelineInfo {
	infos := make([]domain.PipelineInfo, 0, len(m.pipelines))
	for _, p := range m.pipelines {
		infos = append(infos, p.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// mockMetrics implements output.MetricsCollector for testing.
type mockMetrics struct {
	mu          sync.Mutex
	conversions map[string]int
	iterations  []int
	durations   int
	batchSizes  []int
	loaded      int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{conversions: make(map[string]int)}
}

func (m *mockMetrics) IncConversions(pipeline, direction string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions[fmt.Sprintf("%s/%s/%t", pipeline, direction, success)]++
}

func (m *mockMetrics) ObserveConversionDuration(_, _ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *mockMetrics) ObserveSolverIterations(_ string, iterations int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iterations = append(m.iterations, iterations)
}

func (m *mockMetrics) SetPipelinesLoaded(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = count
}

func (m *mockMetrics) ObserveBatchSize(_ string, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchSizes = append(m.batchSizes, size)
}

func (m *mockMetrics) count(pipeline, direction string, success bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conversions[fmt.Sprintf("%s/%s/%t", pipeline, direction, success)]
}
