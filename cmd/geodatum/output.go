package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jobrunner/geodatum/internal/config"
	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/geodesy"
)

// printer renders results in the configured output format.
type printer struct {
	w         io.Writer
	json      bool
	precision int
}

func newPrinter(w io.Writer, cfg config.OutputConfig) *printer {
	return &printer{
		w:         w,
		json:      cfg.Format == config.OutputJSON,
		precision: cfg.Precision,
	}
}

type planeJSON struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	H    float64 `json:"h"`
	Zone int     `json:"zone"`
}

type geodeticJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Height    float64 `json:"height"`
}

type cartesianJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type conversionJSON struct {
	Pipeline       string         `json:"pipeline"`
	Input          geodeticJSON   `json:"input"`
	Plane          planeJSON      `json:"plane"`
	SourceXYZ      *cartesianJSON `json:"source_xyz,omitempty"`
	TargetXYZ      *cartesianJSON `json:"target_xyz,omitempty"`
	TargetGeodetic *geodeticJSON  `json:"target_geodetic,omitempty"`
	Iterations     int            `json:"iterations,omitempty"`
}

type inverseJSON struct {
	Pipeline string       `json:"pipeline"`
	Input    planeJSON    `json:"input"`
	Point    geodeticJSON `json:"point"`
}

type pipelineJSON struct {
	Name         string                      `json:"name"`
	Version      string                      `json:"version,omitempty"`
	Description  string                      `json:"description,omitempty"`
	Source       string                      `json:"source"`
	Target       string                      `json:"target"`
	ZoneWidth    int                         `json:"zone_width"`
	Default      bool                        `json:"default"`
	HasReference bool                        `json:"has_reference"`
	Params       domain.DatumShiftParameters `json:"params"`
}

type checkJSON struct {
	Pipeline       string   `json:"pipeline"`
	Passed         bool     `json:"passed"`
	RoundTripError *float64 `json:"round_trip_error_m,omitempty"`
	ReferenceError *float64 `json:"reference_error_m,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func toPlaneJSON(p domain.GaussPlanePoint) planeJSON {
	return planeJSON{X: p.X, Y: p.Y, H: p.H, Zone: p.Zone()}
}

func toGeodeticJSON(p domain.GeodeticPoint) geodeticJSON {
	return geodeticJSON{Latitude: p.Latitude, Longitude: p.Longitude, Height: p.Height}
}

func toCartesianJSON(p domain.CartesianPoint) *cartesianJSON {
	return &cartesianJSON{X: p.X, Y: p.Y, Z: p.Z}
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) toConversionJSON(res *domain.ConversionResult, trace bool) conversionJSON {
	out := conversionJSON{
		Pipeline: res.Pipeline,
		Input:    toGeodeticJSON(res.Input),
		Plane:    toPlaneJSON(res.Plane),
	}
	if trace {
		target := toGeodeticJSON(res.TargetGeodetic)
		out.SourceXYZ = toCartesianJSON(res.SourceXYZ)
		out.TargetXYZ = toCartesianJSON(res.TargetXYZ)
		out.TargetGeodetic = &target
		out.Iterations = res.Iterations
	}
	return out
}

func (p *printer) conversion(res *domain.ConversionResult, trace bool) error {
	if p.json {
		return p.encode(p.toConversionJSON(res, trace))
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "pipeline\t%s\n", res.Pipeline)
	fmt.Fprintf(tw, "input\t%s\n", res.Input)
	if trace {
		fmt.Fprintf(tw, "source xyz\t%s\n", res.SourceXYZ)
		fmt.Fprintf(tw, "target xyz\t%s\n", res.TargetXYZ)
		fmt.Fprintf(tw, "target geodetic\t%s\n", res.TargetGeodetic)
		fmt.Fprintf(tw, "iterations\t%d\n", res.Iterations)
	}
	fmt.Fprintf(tw, "zone\t%d\n", res.Plane.Zone())
	fmt.Fprintf(tw, "X\t%.*f\n", p.precision, res.Plane.X)
	fmt.Fprintf(tw, "Y\t%.*f\n", p.precision, res.Plane.Y)
	fmt.Fprintf(tw, "H\t%.*f\n", p.precision, res.Plane.H)
	return tw.Flush()
}

func (p *printer) batch(resp *domain.BatchResponse) error {
	if p.json {
		out := make([]conversionJSON, len(resp.Results))
		for i := range resp.Results {
			out[i] = p.toConversionJSON(&resp.Results[i], false)
		}
		return p.encode(out)
	}

	for _, res := range resp.Results {
		fmt.Fprintf(p.w, "%.*f %.*f %.*f\n",
			p.precision, res.Plane.X,
			p.precision, res.Plane.Y,
			p.precision, res.Plane.H,
		)
	}
	return nil
}

func (p *printer) inverse(res *domain.InverseResult, angles string) error {
	if p.json {
		return p.encode(inverseJSON{
			Pipeline: res.Pipeline,
			Input:    toPlaneJSON(res.Input),
			Point:    toGeodeticJSON(res.Point),
		})
	}

	lat, lon := res.Point.Latitude, res.Point.Longitude
	if angles == config.InputDMS {
		lat = geodesy.DecimalDegreesToDMS(lat)
		lon = geodesy.DecimalDegreesToDMS(lon)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "pipeline\t%s\n", res.Pipeline)
	fmt.Fprintf(tw, "input\t%s\n", res.Input)
	fmt.Fprintf(tw, "latitude\t%.9f\n", lat)
	fmt.Fprintf(tw, "longitude\t%.9f\n", lon)
	fmt.Fprintf(tw, "height\t%.*f\n", p.precision, res.Point.Height)
	return tw.Flush()
}

func (p *printer) pipelines(infos []domain.PipelineInfo) error {
	if p.json {
		out := make([]pipelineJSON, len(infos))
		for i, info := range infos {
			out[i] = pipelineJSON{
				Name:         info.Name,
				Version:      info.Version,
				Description:  info.Description,
				Source:       info.Source,
				Target:       info.Target,
				ZoneWidth:    int(info.ZoneWidth),
				Default:      info.Default,
				HasReference: info.HasReference(),
				Params:       info.Params,
			}
		}
		return p.encode(out)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tSOURCE\tTARGET\tZONE\tDEFAULT\tCONTROL POINT")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\t%t\n",
			info.Name, info.Version, info.Source, info.Target,
			int(info.ZoneWidth), info.Default, info.HasReference())
	}
	return tw.Flush()
}

func (p *printer) checks(results []domain.CheckResult) error {
	if p.json {
		out := make([]checkJSON, len(results))
		for i, res := range results {
			out[i] = checkJSON{
				Pipeline:       res.Pipeline,
				Passed:         res.Passed,
				RoundTripError: optional(res.RoundTripError),
				ReferenceError: optional(res.ReferenceError),
			}
			if res.Err != nil {
				out[i].Error = res.Err.Error()
			}
		}
		return p.encode(out)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PIPELINE\tSTATUS\tROUND TRIP (m)\tCONTROL POINT (m)")
	for _, res := range results {
		status := "ok"
		if !res.Passed {
			status = "FAILED"
		}
		if res.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\t%v\t\n", res.Pipeline, status, res.Err)
			continue
		}
		ref := "-"
		if res.HasReference() {
			ref = strconv.FormatFloat(res.ReferenceError, 'f', 6, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.6f\t%s\n", res.Pipeline, status, res.RoundTripError, ref)
	}
	return tw.Flush()
}

// readPoints reads whitespace separated "lat lon [height]" lines. Empty lines
// and lines starting with # are skipped.
func readPoints(stdin io.Reader, path, angles string) ([]domain.GeodeticPoint, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening points: %w", err)
		}
		defer f.Close()
		r = f
	}

	var points []domain.GeodeticPoint
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: expected 2 or 3 values, got %d", line, len(fields))
		}
		values, err := parseFloats(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var height float64
		if len(values) == 3 {
			height = values[2]
		}
		p := geodeticInput(values[0], values[1], height, angles)
		if err := checkRange(p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading points: %w", err)
	}
	return points, nil
}

func parseFloats(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &domain.ParameterError{Field: fmt.Sprintf("value %d", i+1), Value: f, Constraint: "number"}
		}
		values[i] = v
	}
	return values, nil
}
