package forcefield

import (
	"errors"
	"fmt"
)

var (
	// ErrForceThreshold indicates that an atom's force magnitude exceeded
	// the configured safety threshold. Fatal for the trajectory.
	ErrForceThreshold = errors.New("forcefield: force threshold exceeded")

	// ErrNoParts indicates an evaluator with no registered force parts.
	ErrNoParts = errors.New("forcefield: no force parts registered")

	// ErrBuffer indicates a gradient or virial buffer of the wrong shape.
	ErrBuffer = errors.New("forcefield: buffer dimension mismatch")
)

// ThresholdError carries the offending atom and its force magnitude when
// the runaway-force check trips.
type ThresholdError struct {
	MaxForce  float64 // eV/A
	Atom      int
	Threshold float64 // eV/A
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("forcefield: max force %.4f eV/A on atom %d exceeds threshold %.4f eV/A",
		e.MaxForce, e.Atom, e.Threshold)
}

func (e *ThresholdError) Unwrap() error { return ErrForceThreshold }
