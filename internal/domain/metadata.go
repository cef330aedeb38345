package domain

import "fmt"

// PipelineInfo describes a catalog entry.
type PipelineInfo struct {
	Name        string               // Unique pipeline name
	Version     string               // Version of the calibration set
	Description string               // Survey area and purpose
	Source      string               // Source ellipsoid name
	Target      string               // Target ellipsoid name
	ZoneWidth   ZoneWidth            // Gauss-Krüger zoning on the target
	Params      DatumShiftParameters // Calibrated transform
	Default     bool                 // Used when no pipeline is named
	Reference   *ReferencePoint      // Published control point (optional)
}

// HasReference returns true if a control point is attached.
func (i *PipelineInfo) HasReference() bool {
	return i.Reference != nil
}

// String returns the name and version.
func (i *PipelineInfo) String() string {
	if i.Version == "" {
		return i.Name
	}
	return fmt.Sprintf("%s@%s", i.Name, i.Version)
}

// ReferencePoint is a control point with its published plane coordinates.
type ReferencePoint struct {
	Input     GeodeticPoint   // Point on the source datum
	Plane     GaussPlanePoint // Published result on the target datum
	Tolerance float64         // Accepted horizontal deviation in meters
}
