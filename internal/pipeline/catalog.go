package pipeline

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jobrunner/geodatum/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML embed.FS

var (
	builtin     *Catalog
	builtinOnce sync.Once
	builtinErr  error
)

// Catalog is a set of named pipelines.
type Catalog struct {
	pipelines   map[string]*Pipeline
	defaultName string
}

type catalogFile struct {
	Default   string          `yaml:"default"`
	Pipelines []pipelineEntry `yaml:"pipelines"`
}

type pipelineEntry struct {
	Name        string                      `yaml:"name"`
	Version     string                      `yaml:"version"`
	Description string                      `yaml:"description"`
	Source      string                      `yaml:"source"`
	Target      string                      `yaml:"target"`
	ZoneWidth   int                         `yaml:"zone_width"`
	Params      domain.DatumShiftParameters `yaml:"params"`
	Reference   *referenceEntry             `yaml:"reference"`
}

type referenceEntry struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Height    float64 `yaml:"height"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	H         float64 `yaml:"h"`
	Tolerance float64 `yaml:"tolerance"`
}

// Builtin returns the catalog compiled into the binary.
// It is decoded on first access and cached.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		var data []byte
		data, builtinErr = catalogYAML.ReadFile("catalog.yaml")
		if builtinErr != nil {
			return
		}
		builtin, builtinErr = ParseCatalog(data)
	})
	return builtin, builtinErr
}

// ParseCatalog decodes a YAML catalog and validates every entry.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(file.Pipelines) == 0 {
		return nil, &domain.ParameterError{Field: "pipelines", Value: 0, Constraint: "at least one entry"}
	}

	c := &Catalog{
		pipelines:   make(map[string]*Pipeline, len(file.Pipelines)),
		defaultName: file.Default,
	}
	for i, entry := range file.Pipelines {
		p, err := entry.build()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, entry.Name, err)
		}
		if _, dup := c.pipelines[p.Name]; dup {
			return nil, &domain.ParameterError{Field: "name", Value: p.Name, Constraint: "unique"}
		}
		c.pipelines[p.Name] = p
	}

	if c.defaultName == "" {
		c.defaultName = file.Pipelines[0].Name
	}
	def, ok := c.pipelines[c.defaultName]
	if !ok {
		return nil, fmt.Errorf("default %q: %w", c.defaultName, domain.ErrPipelineNotFound)
	}
	def.Default = true
	return c, nil
}

func (s pipelineEntry) build() (*Pipeline, error) {
	if s.Name == "" {
		return nil, &domain.ParameterError{Field: "name", Value: s.Name, Constraint: "non-empty"}
	}
	src, err := domain.EllipsoidByName(s.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	dst, err := domain.EllipsoidByName(s.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	width := domain.ZoneWidth(s.ZoneWidth)
	if err := width.Validate(); err != nil {
		return nil, err
	}
	if err := s.Params.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		Name:        s.Name,
		Version:     s.Version,
		Description: s.Description,
		Source:      src,
		Target:      dst,
		ZoneWidth:   width,
		Params:      s.Params,
	}
	if s.Reference != nil {
		ref, err := s.Reference.build()
		if err != nil {
			return nil, fmt.Errorf("reference: %w", err)
		}
		p.Reference = ref
	}
	return p, nil
}

func (s referenceEntry) build() (*domain.ReferencePoint, error) {
	ref := &domain.ReferencePoint{
		Input:     domain.NewGeodeticPoint(s.Latitude, s.Longitude, s.Height),
		Plane:     domain.NewGaussPlanePoint(s.X, s.Y, s.H),
		Tolerance: s.Tolerance,
	}
	if err := ref.Input.Validate(); err != nil {
		return nil, err
	}
	if !ref.Input.InRange() {
		return nil, &domain.ParameterError{
			Field:      "latitude/longitude",
			Value:      ref.Input,
			Constraint: "latitude in [-90, 90], longitude in [-180, 180]",
			Err:        domain.ErrInvalidCoordinate,
		}
	}
	if err := ref.Plane.Validate(); err != nil {
		return nil, err
	}
	if ref.Tolerance <= 0 {
		return nil, &domain.ParameterError{Field: "tolerance", Value: s.Tolerance, Constraint: "> 0"}
	}
	return ref, nil
}

// Lookup returns a copy of the named pipeline.
func (c *Catalog) Lookup(name string) (*Pipeline, error) {
	p, ok := c.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrPipelineNotFound)
	}
	cp := *p
	return &cp, nil
}

// Default returns a copy of the default pipeline.
func (c *Catalog) Default() *Pipeline {
	cp := *c.pipelines[c.defaultName]
	return &cp
}

// DefaultName returns the name of the default pipeline.
func (c *Catalog) DefaultName() string {
	return c.defaultName
}

// Names returns the pipeline names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.pipelines))
	for name := range c.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Infos describes every pipeline in name order.
func (c *Catalog) Infos() []domain.PipelineInfo {
	names := c.Names()
	infos := make([]domain.PipelineInfo, len(names))
	for i, name := range names {
		infos[i] = c.pipelines[name].Info()
	}
	return infos
}

// Lookup returns the named pipeline from the builtin catalog.
func Lookup(name string) (*Pipeline, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	return c.Lookup(name)
}

// Names returns the names in the builtin catalog.
func Names() []string {
	c, err := Builtin()
	if err != nil {
		return nil
	}
	return c.Names()
}

// Default returns the default pipeline of the builtin catalog.
func Default() (*Pipeline, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	return c.Default(), nil
}
