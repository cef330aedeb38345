// Package application implements the use cases on top of the pipeline
// catalog.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/ports/output"
)

// ConversionService runs points through catalog pipelines.
type ConversionService struct {
	catalog     output.PipelineCatalog
	metrics     output.MetricsCollector
	logger      *slog.Logger
	concurrency int
}

// ConversionServiceConfig holds configuration for the conversion service.
type ConversionServiceConfig struct {
	Concurrency int // Batch workers, GOMAXPROCS if zero
}

// NewConversionService creates a new conversion service.
func NewConversionService(
	catalog output.PipelineCatalog,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg ConversionServiceConfig,
) *ConversionService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}

	return &ConversionService{
		catalog:     catalog,
		metrics:     metrics,
		logger:      logger,
		concurrency: cfg.Concurrency,
	}
}

// Convert runs one point through a pipeline.
func (s *ConversionService) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.catalog.Lookup(req.Pipeline)
	if err != nil {
		return nil, err
	}

	res, err := s.forward(p, req.Point)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ConvertBatch runs several points through one pipeline. Results keep the
// input order; the first failure cancels the remaining work.
func (s *ConversionService) ConvertBatch(ctx context.Context, req domain.BatchRequest) (*domain.BatchResponse, error) {
	start := time.Now()

	p, err := s.catalog.Lookup(req.Pipeline)
	if err != nil {
		return nil, err
	}
	name := p.Info().Name
	s.metrics.ObserveBatchSize(name, len(req.Points))

	results := make([]domain.ConversionResult, len(req.Points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, pt := range req.Points {
		i, pt := i, pt
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.forward(p, pt)
			if err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &domain.BatchResponse{
		Pipeline:       name,
		Results:        results,
		ProcessingTime: time.Since(start),
	}
	s.logger.Debug("batch converted",
		"pipeline", name,
		"points", resp.Count(),
		"duration", resp.ProcessingTime,
	)
	return resp, nil
}

// Inverse converts a plane point back to the source datum.
func (s *ConversionService) Inverse(ctx context.Context, req domain.InverseRequest) (*domain.InverseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.catalog.Lookup(req.Pipeline)
	if err != nil {
		return nil, err
	}
	name := p.Info().Name

	start := time.Now()
	pt, err := p.Inverse(req.Point)
	elapsed := time.Since(start)

	s.metrics.IncConversions(name, output.DirectionInverse, err == nil)
	s.metrics.ObserveConversionDuration(name, output.DirectionInverse, elapsed)
	if err != nil {
		s.logger.Warn("inverse conversion failed", "pipeline", name, "point", req.Point.String(), "error", err)
		return nil, err
	}

	return &domain.InverseResult{
		Pipeline:       name,
		Input:          req.Point,
		Point:          pt,
		ProcessingTime: elapsed,
	}, nil
}

// ListPipelines returns all pipelines in name order.
func (s *ConversionService) ListPipelines(_ context.Context) []domain.PipelineInfo {
	return s.catalog.Infos()
}

// GetPipeline returns a specific pipeline by name; an empty name selects
// the default.
func (s *ConversionService) GetPipeline(_ context.Context, name string) (*domain.PipelineInfo, error) {
	p, err := s.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	info := p.Info()
	return &info, nil
}

func (s *ConversionService) forward(p output.DatumPipeline, pt domain.GeodeticPoint) (domain.ConversionResult, error) {
	name := p.Info().Name

	start := time.Now()
	res, err := p.Trace(pt)
	elapsed := time.Since(start)

	s.metrics.IncConversions(name, output.DirectionForward, err == nil)
	s.metrics.ObserveConversionDuration(name, output.DirectionForward, elapsed)
	if err != nil {
		s.logger.Warn("conversion failed", "pipeline", name, "point", pt.String(), "error", err)
		return domain.ConversionResult{}, err
	}

	s.metrics.ObserveSolverIterations(name, res.Iterations)
	res.ProcessingTime = elapsed
	return res, nil
}
