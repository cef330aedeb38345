// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/geodatum/internal/domain"
)

// ConversionService defines the primary port for datum conversions.
type ConversionService interface {
	// Convert runs one point through a pipeline.
	Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error)

	// ConvertBatch runs several points through one pipeline concurrently.
	ConvertBatch(ctx context.Context, req domain.BatchRequest) (*domain.BatchResponse, error)

	// Inverse converts a plane point back to the source datum.
	Inverse(ctx context.Context, req domain.InverseRequest) (*domain.InverseResult, error)
}

// PipelineRegistry defines the primary port for catalog inspection.
type PipelineRegistry interface {
	// ListPipelines returns all pipelines in name order.
	ListPipelines(ctx context.Context) []domain.PipelineInfo

	// GetPipeline returns a specific pipeline by name.
	GetPipeline(ctx context.Context, name string) (*domain.PipelineInfo, error)
}

// PipelineChecker defines the primary port for pipeline self-checks.
type PipelineChecker interface {
	// Check verifies every pipeline against its control point and its own
	// inverse.
	Check(ctx context.Context) []domain.CheckResult

	// IsHealthy returns true if every check passed.
	IsHealthy(ctx context.Context) bool
}
