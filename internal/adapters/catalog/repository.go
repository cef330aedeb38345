// Package catalog provides the pipeline catalog repository.
package catalog

import (
	"fmt"
	"os"
	"sync"

	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/geodesy"
	"github.com/jobrunner/geodatum/internal/pipeline"
	"github.com/jobrunner/geodatum/internal/ports/output"
)

// SourceBuiltin names the catalog compiled into the binary.
const SourceBuiltin = "builtin"

// Repository implements the PipelineCatalog port. The catalog can be
// replaced at runtime; lookups always see a complete catalog.
type Repository struct {
	mu      sync.RWMutex
	catalog *pipeline.Catalog
	source  string
	solver  geodesy.Solver
}

// NewRepository creates a repository backed by the builtin catalog. Every
// pipeline handed out uses solver for its iterative stage.
func NewRepository(solver geodesy.Solver) (*Repository, error) {
	c, err := pipeline.Builtin()
	if err != nil {
		return nil, fmt.Errorf("loading builtin catalog: %w", err)
	}
	return &Repository{catalog: c, source: SourceBuiltin, solver: solver}, nil
}

// LoadFile replaces the catalog with the one in path. On error the current
// catalog is kept.
func (r *Repository) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}
	c, err := pipeline.ParseCatalog(data)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = c
	r.source = path
	return nil
}

// Source returns where the current catalog was loaded from.
func (r *Repository) Source() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// Lookup implements output.PipelineCatalog.
func (r *Repository) Lookup(name string) (output.DatumPipeline, error) {
	r.mu.RLock()
	c := r.catalog
	r.mu.RUnlock()

	if name == "" {
		return c.Default().WithSolver(r.solver), nil
	}
	p, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.WithSolver(r.solver), nil
}

// Infos implements output.PipelineCatalog.
func (r *Repository) Infos() []domain.PipelineInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Infos()
}

// Count returns the number of pipelines in the current catalog.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.catalog.Names())
}
