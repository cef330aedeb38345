// Package pipeline composes the geodesy primitives into named datum
// conversions backed by calibrated parameter sets.
package pipeline

import (
	"fmt"

	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/geodesy"
)

// Pipeline stages, as reported in PipelineError.
const (
	StageInput    = "input"
	StageShift    = "datum shift"
	StageGeodetic = "geodetic"
	StageProject  = "projection"
)

// Pipeline converts geodetic coordinates on Source into Gauss-Krüger plane
// coordinates on Target.
//
// A Pipeline holds only values and may be used from several goroutines.
type Pipeline struct {
	Name        string
	Version     string
	Description string
	Source      domain.Ellipsoid
	Target      domain.Ellipsoid
	ZoneWidth   domain.ZoneWidth
	Params      domain.DatumShiftParameters
	Reference   *domain.ReferencePoint
	Default     bool
	Solver      geodesy.Solver
}

// WithSolver returns a copy of the pipeline using s for the iterative stage.
func (p *Pipeline) WithSolver(s geodesy.Solver) *Pipeline {
	cp := *p
	cp.Solver = s
	return &cp
}

// Forward converts a geodetic point on the source datum into a plane point
// on the target datum.
func (p *Pipeline) Forward(in domain.GeodeticPoint) (domain.GaussPlanePoint, error) {
	t, err := p.Trace(in)
	if err != nil {
		return domain.GaussPlanePoint{}, err
	}
	return t.Plane, nil
}

// Trace runs Forward and returns every intermediate value.
func (p *Pipeline) Trace(in domain.GeodeticPoint) (domain.ConversionResult, error) {
	t := domain.ConversionResult{Pipeline: p.Name, Input: in}
	if err := in.Validate(); err != nil {
		return t, p.fail(StageInput, err)
	}

	t.SourceXYZ = geodesy.GeodeticToCartesian(in, p.Source)
	t.TargetXYZ = geodesy.ApplyDatumShift(t.SourceXYZ, p.Params)

	sol, err := p.Solver.Solve(t.TargetXYZ, p.Target)
	if err != nil {
		return t, p.fail(StageGeodetic, err)
	}
	t.TargetGeodetic = sol.Point
	t.Iterations = sol.Iterations

	plane, err := geodesy.GaussForward(sol.Point, p.Target, p.ZoneWidth)
	if err != nil {
		return t, p.fail(StageProject, err)
	}
	plane.X += p.Params.OffsetX
	plane.Y += p.Params.OffsetY
	t.Plane = plane

	return t, nil
}

// Inverse converts a plane point on the target datum back into a geodetic
// point on the source datum.
func (p *Pipeline) Inverse(plane domain.GaussPlanePoint) (domain.GeodeticPoint, error) {
	if err := plane.Validate(); err != nil {
		return domain.GeodeticPoint{}, p.fail(StageInput, err)
	}
	plane.X -= p.Params.OffsetX
	plane.Y -= p.Params.OffsetY

	geo, err := geodesy.GaussReverse(plane, p.Target, p.ZoneWidth)
	if err != nil {
		return domain.GeodeticPoint{}, p.fail(StageProject, err)
	}

	xyz, err := geodesy.InvertDatumShift(geodesy.GeodeticToCartesian(geo, p.Target), p.Params)
	if err != nil {
		return domain.GeodeticPoint{}, p.fail(StageShift, err)
	}

	sol, err := p.Solver.Solve(xyz, p.Source)
	if err != nil {
		return domain.GeodeticPoint{}, p.fail(StageGeodetic, err)
	}
	return sol.Point, nil
}

// Info describes the pipeline.
func (p *Pipeline) Info() domain.PipelineInfo {
	return domain.PipelineInfo{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
		Source:      p.Source.Name(),
		Target:      p.Target.Name(),
		ZoneWidth:   p.ZoneWidth,
		Params:      p.Params,
		Default:     p.Default,
		Reference:   p.Reference,
	}
}

// String returns the pipeline name and version.
func (p *Pipeline) String() string {
	return fmt.Sprintf("%s@%s (%s -> %s, %v)", p.Name, p.Version, p.Source.Name(), p.Target.Name(), p.ZoneWidth)
}

func (p *Pipeline) fail(stage string, err error) error {
	return &domain.PipelineError{Pipeline: p.Name, Stage: stage, Err: err}
}
