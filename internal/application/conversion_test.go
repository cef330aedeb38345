package application

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/jobrunner/geodatum/internal/adapters/catalog"
	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/geodesy"
	"github.com/jobrunner/geodatum/internal/ports/input"
	"github.com/jobrunner/geodatum/internal/ports/output"
)

var (
	_ input.ConversionService = (*ConversionService)(nil)
	_ input.PipelineRegistry  = (*ConversionService)(nil)
	_ input.PipelineChecker   = (*CheckService)(nil)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestConversionService(c output.PipelineCatalog, m output.MetricsCollector) *ConversionService {
	return NewConversionService(c, m, testLogger(), ConversionServiceConfig{Concurrency: 4})
}

func TestConversionServiceDefaultConfig(t *testing.T) {
	svc := NewConversionService(newMockCatalog(), &output.NoOpMetrics{}, testLogger(), ConversionServiceConfig{})

	if svc.concurrency < 1 {
		t.Errorf("concurrency = %d, want >= 1", svc.concurrency)
	}
}

func TestConversionServiceConvert(t *testing.T) {
	a := &mockPipeline{info: domain.PipelineInfo{Name: "a"}}
	b := &mockPipeline{info: domain.PipelineInfo{Name: "b"}}
	metrics := newMockMetrics()
	svc := newTestConversionService(newMockCatalog(a, b), metrics)

	tests := []struct {
		name     string
		pipeline string
		want     string
	}{
		{name: "default pipeline", pipeline: "", want: "a"},
		{name: "named pipeline", pipeline: "b", want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Convert(context.Background(), domain.ConversionRequest{
				Pipeline: tt.pipeline,
				Point:    domain.NewGeodeticPoint(30, 121, 5),
			})
			if err != nil {
				t.Fatalf("Convert() error: %v", err)
			}
			if res.Pipeline != tt.want {
				t.Errorf("Pipeline = %q, want %q", res.Pipeline, tt.want)
			}
			if res.Plane.X != 121e5 || res.Plane.Y != 30e5 || res.Plane.H != 5 {
				t.Errorf("unexpected plane point %v", res.Plane)
			}
		})
	}

	if got := metrics.count("a", output.DirectionForward, true); got != 1 {
		t.Errorf("forward successes for a = %d, want 1", got)
	}
	if len(metrics.iterations) != 2 || metrics.iterations[0] != 3 {
		t.Errorf("unexpected iteration observations %v", metrics.iterations)
	}
}

func TestConversionServiceConvertErrors(t *testing.T) {
	failing := &mockPipeline{
		info:   domain.PipelineInfo{Name: "failing"},
		failAt: func(domain.GeodeticPoint) bool { return true },
	}
	metrics := newMockMetrics()
	svc := newTestConversionService(newMockCatalog(failing), metrics)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		req     domain.ConversionRequest
		wantErr error
	}{
		{
			name:    "unknown pipeline",
			ctx:     context.Background(),
			req:     domain.ConversionRequest{Pipeline: "missing"},
			wantErr: domain.ErrPipelineNotFound,
		},
		{
			name:    "pipeline failure",
			ctx:     context.Background(),
			req:     domain.ConversionRequest{Pipeline: "failing"},
			wantErr: errMockTrace,
		},
		{
			name:    "canceled context",
			ctx:     canceled,
			req:     domain.ConversionRequest{Pipeline: "failing"},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Convert(tt.ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if got := metrics.count("failing", output.DirectionForward, false); got != 1 {
		t.Errorf("forward failures = %d, want 1", got)
	}
	if len(metrics.iterations) != 0 {
		t.Errorf("iterations observed for failed conversions: %v", metrics.iterations)
	}
}

func TestConversionServiceConvertBatch(t *testing.T) {
	p := &mockPipeline{info: domain.PipelineInfo{Name: "a"}}
	metrics := newMockMetrics()
	svc := newTestConversionService(newMockCatalog(p), metrics)

	points := make([]domain.GeodeticPoint, 100)
	for i := range points {
		points[i] = domain.NewGeodeticPoint(float64(i)/10, 120, float64(i))
	}

	resp, err := svc.ConvertBatch(context.Background(), domain.BatchRequest{Points: points})
	if err != nil {
		t.Fatalf("ConvertBatch() error: %v", err)
	}

	if resp.Count() != len(points) {
		t.Fatalf("Count() = %d, want %d", resp.Count(), len(points))
	}
	if resp.Pipeline != "a" {
		t.Errorf("Pipeline = %q, want a", resp.Pipeline)
	}
	for i, res := range resp.Results {
		if res.Input != points[i] {
			t.Errorf("result %d out of order: input %v, want %v", i, res.Input, points[i])
		}
	}
	if got := p.calls.Load(); got != int32(len(points)) {
		t.Errorf("pipeline called %d times, want %d", got, len(points))
	}
	if len(metrics.batchSizes) != 1 || metrics.batchSizes[0] != len(points) {
		t.Errorf("unexpected batch size observations %v", metrics.batchSizes)
	}
}

func TestConversionServiceConvertBatchError(t *testing.T) {
	p := &mockPipeline{
		info:   domain.PipelineInfo{Name: "a"},
		failAt: func(pt domain.GeodeticPoint) bool { return pt.Height == 7 },
	}
	svc := newTestConversionService(newMockCatalog(p), newMockMetrics())

	points := make([]domain.GeodeticPoint, 10)
	for i := range points {
		points[i] = domain.NewGeodeticPoint(30, 120, float64(i))
	}

	resp, err := svc.ConvertBatch(context.Background(), domain.BatchRequest{Points: points})
	if !errors.Is(err, errMockTrace) {
		t.Fatalf("ConvertBatch() error = %v, want %v", err, errMockTrace)
	}
	if resp != nil {
		t.Errorf("expected nil response on failure, got %+v", resp)
	}
	if want := "point 7: "; len(err.Error()) < len(want) || err.Error()[:len(want)] != want {
		t.Errorf("error should name the failing point, got %q", err.Error())
	}
}

func TestConversionServiceConvertBatchCanceled(t *testing.T) {
	p := &mockPipeline{info: domain.PipelineInfo{Name: "a"}}
	svc := newTestConversionService(newMockCatalog(p), newMockMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	points := make([]domain.GeodeticPoint, 50)
	_, err := svc.ConvertBatch(ctx, domain.BatchRequest{Points: points})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ConvertBatch() error = %v, want context.Canceled", err)
	}
	if got := p.calls.Load(); got != 0 {
		t.Errorf("pipeline called %d times after cancellation", got)
	}
}

func TestConvertBatchMatchesSequential(t *testing.T) {
	repo, err := catalog.NewRepository(geodesy.Solver{})
	if err != nil {
		t.Fatalf("NewRepository() error: %v", err)
	}
	svc := NewConversionService(repo, &output.NoOpMetrics{}, testLogger(), ConversionServiceConfig{Concurrency: 8})

	var points []domain.GeodeticPoint
	for lat := 28.0; lat <= 31.0; lat += 0.25 {
		for lon := 120.0; lon <= 123.0; lon += 0.5 {
			points = append(points, domain.NewGeodeticPoint(lat, lon, lat*10))
		}
	}

	resp, err := svc.ConvertBatch(context.Background(), domain.BatchRequest{
		Pipeline: "wgs84-xian80-ningbo",
		Points:   points,
	})
	if err != nil {
		t.Fatalf("ConvertBatch() error: %v", err)
	}

	for i, pt := range points {
		res, err := svc.Convert(context.Background(), domain.ConversionRequest{
			Pipeline: "wgs84-xian80-ningbo",
			Point:    pt,
		})
		if err != nil {
			t.Fatalf("Convert(%v) error: %v", pt, err)
		}
		got := resp.Results[i]
		got.ProcessingTime, res.ProcessingTime = 0, 0
		if !reflect.DeepEqual(got, *res) {
			t.Errorf("point %d: batch %+v, sequential %+v", i, got, *res)
		}
	}
}

func TestConversionServiceInverse(t *testing.T) {
	p := &mockPipeline{info: domain.PipelineInfo{Name: "a"}}
	broken := &mockPipeline{info: domain.PipelineInfo{Name: "broken"}, inverseErr: domain.ErrDomainSingularity}
	metrics := newMockMetrics()
	svc := newTestConversionService(newMockCatalog(p, broken), metrics)

	res, err := svc.Inverse(context.Background(), domain.InverseRequest{
		Point: domain.NewGaussPlanePoint(121e5, 30e5, 2),
	})
	if err != nil {
		t.Fatalf("Inverse() error: %v", err)
	}
	if res.Pipeline != "a" || res.Point != domain.NewGeodeticPoint(30, 121, 2) {
		t.Errorf("unexpected result %+v", res)
	}

	_, err = svc.Inverse(context.Background(), domain.InverseRequest{Pipeline: "broken"})
	if !errors.Is(err, domain.ErrDomainSingularity) {
		t.Errorf("Inverse() error = %v, want ErrDomainSingularity", err)
	}

	if got := metrics.count("a", output.DirectionInverse, true); got != 1 {
		t.Errorf("inverse successes = %d, want 1", got)
	}
	if got := metrics.count("broken", output.DirectionInverse, false); got != 1 {
		t.Errorf("inverse failures = %d, want 1", got)
	}
}

func TestConversionServicePipelines(t *testing.T) {
	svc := newTestConversionService(newMockCatalog(
		&mockPipeline{info: domain.PipelineInfo{Name: "b", Version: "2"}},
		&mockPipeline{info: domain.PipelineInfo{Name: "a"}},
	), &output.NoOpMetrics{})

	infos := svc.ListPipelines(context.Background())
	if len(infos) != 2 || infos[0].Name != "a" || infos[1].Name != "b" {
		t.Errorf("unexpected pipelines %+v", infos)
	}

	info, err := svc.GetPipeline(context.Background(), "")
	if err != nil {
		t.Fatalf("GetPipeline() error: %v", err)
	}
	if info.Name != "b" || info.Version != "2" {
		t.Errorf("default pipeline = %+v", info)
	}

	if _, err := svc.GetPipeline(context.Background(), "c"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
