// Package output defines the secondary/driven ports of the application.
package output

import "github.com/jobrunner/geodatum/internal/domain"

// DatumPipeline defines a calibrated conversion between two datums.
type DatumPipeline interface {
	// Info describes the pipeline.
	Info() domain.PipelineInfo

	// Trace converts a source datum point to the target plane and reports
	// every intermediate stage.
	Trace(p domain.GeodeticPoint) (domain.ConversionResult, error)

	// Inverse converts a target plane point back to the source datum.
	Inverse(p domain.GaussPlanePoint) (domain.GeodeticPoint, error)
}

// PipelineCatalog defines the secondary port for pipeline lookup.
type PipelineCatalog interface {
	// Lookup returns the named pipeline; an empty name selects the default.
	Lookup(name string) (DatumPipeline, error)

	// Infos describes every pipeline in name order.
	Infos() []domain.PipelineInfo
}
