package domain

import (
	"math"
	"time"
)

// ConversionRequest asks for the forward conversion of one point.
type ConversionRequest struct {
	Pipeline string        // Pipeline name (empty = default)
	Point    GeodeticPoint // Point on the source datum
}

// ConversionResult holds a forward conversion and its intermediate stages.
type ConversionResult struct {
	Pipeline       string          // Pipeline that produced the result
	Input          GeodeticPoint   // Point on the source datum
	SourceXYZ      CartesianPoint  // Input on the source ellipsoid
	TargetXYZ      CartesianPoint  // After the datum shift
	TargetGeodetic GeodeticPoint   // Geodetic point on the target ellipsoid
	Plane          GaussPlanePoint // Projected result
	Iterations     int             // Iterations of the geodetic solver
	ProcessingTime time.Duration   // Conversion time
}

// BatchRequest asks for the forward conversion of several points through
// one pipeline.
type BatchRequest struct {
	Pipeline string          // Pipeline name (empty = default)
	Points   []GeodeticPoint // Points on the source datum
}

// BatchResponse holds the results of a BatchRequest in input order.
type BatchResponse struct {
	Pipeline       string             // Pipeline that produced the results
	Results        []ConversionResult // One result per input point
	ProcessingTime time.Duration      // Total processing time
}

// Count returns the number of results.
func (r *BatchResponse) Count() int {
	return len(r.Results)
}

// InverseRequest asks for a plane point to be converted back to the source
// datum.
type InverseRequest struct {
	Pipeline string          // Pipeline name (empty = default)
	Point    GaussPlanePoint // Point on the target plane
}

// InverseResult holds an inverse conversion.
type InverseResult struct {
	Pipeline       string          // Pipeline that produced the result
	Input          GaussPlanePoint // Plane point
	Point          GeodeticPoint   // Point on the source datum
	ProcessingTime time.Duration   // Conversion time
}

// CheckResult is the outcome of a pipeline self-check.
type CheckResult struct {
	Pipeline       string  // Pipeline name
	RoundTripError float64 // Plane distance after forward, inverse, forward (m)
	ReferenceError float64 // Distance to the published control point, height included (m), NaN without one
	Passed         bool    // All checks within tolerance
	Err            error   // Conversion failure, if any
}

// HasReference returns true if a control point was checked.
func (r *CheckResult) HasReference() bool {
	return !math.IsNaN(r.ReferenceError)
}

// PlaneDistance returns the horizontal distance between two plane points.
func PlaneDistance(a, b GaussPlanePoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PointDistance returns the distance between two plane points including the
// height difference.
func PointDistance(a, b GaussPlanePoint) float64 {
	return math.Hypot(PlaneDistance(a, b), a.H-b.H)
}
