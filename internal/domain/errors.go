package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
)

// Error kinds raised by the conversion engine.
var (
	ErrInvalidParameter  = fmt.Errorf("invalid parameter: %w", ErrInvalidInput)
	ErrDomainSingularity = errors.New("domain singularity")
	ErrNonConvergence    = errors.New("iteration did not converge")
)

// Specific errors.
var (
	ErrInvalidEllipsoid  = fmt.Errorf("ellipsoid: %w", ErrInvalidParameter)
	ErrInvalidZoneWidth  = fmt.Errorf("zone width: %w", ErrInvalidParameter)
	ErrInvalidCoordinate = fmt.Errorf("coordinate: %w", ErrInvalidParameter)
	ErrUnknownEllipsoid  = fmt.Errorf("ellipsoid: %w", ErrNotFound)
	ErrPipelineNotFound  = fmt.Errorf("pipeline: %w", ErrNotFound)
)

// ParameterError describes a rejected input value.
type ParameterError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Err        error       // Specific sentinel, defaults to ErrInvalidParameter
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v (constraint: %s)", e.Field, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ParameterError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidParameter
}

// SingularityError reports an input on which a formula is undefined.
type SingularityError struct {
	Operation string // Operation that hit the singularity
	Reason    string // What vanished or diverged
}

// Error implements the error interface.
func (e *SingularityError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Reason, ErrDomainSingularity)
}

// Unwrap returns the underlying error type.
func (e *SingularityError) Unwrap() error {
	return ErrDomainSingularity
}

// ConvergenceError reports an iterative solver that hit its iteration cap.
type ConvergenceError struct {
	Operation  string  // Solver name
	Iterations int     // Iterations performed
	Residual   float64 // Last change between estimates, in radians
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence after %d iterations (residual %g rad)",
		e.Operation, e.Iterations, e.Residual)
}

// Unwrap returns the underlying error type.
func (e *ConvergenceError) Unwrap() error {
	return ErrNonConvergence
}

// PipelineError wraps a failure inside a named datum pipeline stage.
type PipelineError struct {
	Pipeline string // Pipeline name
	Stage    string // Stage that failed
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s, stage %s: %v", e.Pipeline, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
