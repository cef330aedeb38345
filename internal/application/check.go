package application

import (
	"context"
	"log/slog"
	"math"

	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/ports/output"
)

// Check defaults.
const (
	DefaultRoundTripTolerance = 0.005 // meters
)

// CheckService verifies catalog pipelines against their control points and
// their own inverse.
type CheckService struct {
	catalog   output.PipelineCatalog
	logger    *slog.Logger
	sample    domain.GeodeticPoint
	tolerance float64
}

// CheckServiceConfig holds configuration for the check service.
type CheckServiceConfig struct {
	SamplePoint        domain.GeodeticPoint // Round-trip point for pipelines without a control point
	RoundTripTolerance float64              // Meters, DefaultRoundTripTolerance if zero
}

// NewCheckService creates a new check service.
func NewCheckService(catalog output.PipelineCatalog, logger *slog.Logger, cfg CheckServiceConfig) *CheckService {
	if cfg.RoundTripTolerance <= 0 {
		cfg.RoundTripTolerance = DefaultRoundTripTolerance
	}
	if cfg.SamplePoint == (domain.GeodeticPoint{}) {
		cfg.SamplePoint = domain.NewGeodeticPoint(30, 120, 0)
	}

	return &CheckService{
		catalog:   catalog,
		logger:    logger,
		sample:    cfg.SamplePoint,
		tolerance: cfg.RoundTripTolerance,
	}
}

// Check runs every pipeline in the catalog.
func (s *CheckService) Check(ctx context.Context) []domain.CheckResult {
	infos := s.catalog.Infos()
	results := make([]domain.CheckResult, 0, len(infos))

	for _, info := range infos {
		if ctx.Err() != nil {
			break
		}
		res := s.checkPipeline(info)
		if !res.Passed {
			s.logger.Warn("pipeline check failed",
				"pipeline", res.Pipeline,
				"round_trip_m", res.RoundTripError,
				"reference_m", res.ReferenceError,
				"error", res.Err,
			)
		}
		results = append(results, res)
	}

	return results
}

// IsHealthy returns true if every pipeline passes its check.
func (s *CheckService) IsHealthy(ctx context.Context) bool {
	for _, res := range s.Check(ctx) {
		if !res.Passed {
			return false
		}
	}
	return true
}

func (s *CheckService) checkPipeline(info domain.PipelineInfo) domain.CheckResult {
	res := domain.CheckResult{
		Pipeline:       info.Name,
		RoundTripError: math.NaN(),
		ReferenceError: math.NaN(),
	}

	p, err := s.catalog.Lookup(info.Name)
	if err != nil {
		res.Err = err
		return res
	}

	in := s.sample
	if info.HasReference() {
		in = info.Reference.Input
	}

	first, err := p.Trace(in)
	if err != nil {
		res.Err = err
		return res
	}
	back, err := p.Inverse(first.Plane)
	if err != nil {
		res.Err = err
		return res
	}
	second, err := p.Trace(back)
	if err != nil {
		res.Err = err
		return res
	}

	res.RoundTripError = domain.PlaneDistance(first.Plane, second.Plane)
	res.Passed = res.RoundTripError <= s.tolerance

	if info.HasReference() {
		res.ReferenceError = domain.PointDistance(first.Plane, info.Reference.Plane)
		res.Passed = res.Passed && res.ReferenceError <= info.Reference.Tolerance
	}

	return res
}
