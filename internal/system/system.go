// Package system holds the mutable atomic configuration evaluated by the
// force field, plus immutable Frame snapshots taken by trajectory hooks.
//
// Positions, box vectors and masses are stored in atomic units; Frame
// snapshots are in angstrom, the unit of the trajectory formats.
package system

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/units"
)

var (
	// ErrDimension indicates mismatched array shapes at construction.
	ErrDimension = errors.New("system: dimension mismatch")
)

// System is a periodic (or isolated) atomic configuration. Atomic numbers
// are fixed after construction; positions and box are advanced by the
// integrator between force evaluations. Force parts read a System by
// reference and never mutate it.
type System struct {
	Numbers   []int
	Positions *mat.Dense // N x 3, Bohr
	Box       *mat.Dense // 3 x 3 rows are lattice vectors, Bohr; nil means isolated
	Masses    []float64  // electron masses
	Charges   []float64  // optional, elementary charges
}

// New validates shapes and assembles a System. The box may be nil for an
// isolated configuration; an all-zero box is treated the same way.
func New(numbers []int, positions, box *mat.Dense) (*System, error) {
	if positions == nil {
		return nil, fmt.Errorf("%w: positions are required", ErrDimension)
	}
	r, c := positions.Dims()
	if r != len(numbers) || c != 3 {
		return nil, fmt.Errorf("%w: positions are %dx%d for %d atoms", ErrDimension, r, c, len(numbers))
	}
	if box != nil {
		br, bc := box.Dims()
		if br != 3 || bc != 3 {
			return nil, fmt.Errorf("%w: box is %dx%d, want 3x3", ErrDimension, br, bc)
		}
	}
	return &System{
		Numbers:   append([]int(nil), numbers...),
		Positions: positions,
		Box:       box,
	}, nil
}

// Len returns the number of atoms.
func (s *System) Len() int { return len(s.Numbers) }

// Periodic reports whether the system carries a non-zero box.
func (s *System) Periodic() bool {
	if s.Box == nil {
		return false
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if s.Box.At(i, j) != 0 {
				return true
			}
		}
	}
	return false
}

// SetStandardMasses fills Masses with the tabulated atomic weights,
// converted to internal units.
func (s *System) SetStandardMasses() error {
	masses := make([]float64, s.Len())
	for i, z := range s.Numbers {
		m, err := StandardMass(z)
		if err != nil {
			return err
		}
		masses[i] = m * units.AMU
	}
	s.Masses = masses
	return nil
}

// Frame is a value-type snapshot of a configuration, in angstrom. Frames
// never alias System storage.
type Frame struct {
	Numbers   []int
	Positions *mat.Dense // N x 3, angstrom
	Box       *mat.Dense // 3 x 3, angstrom; nil if not periodic
	PBC       bool
}

// Snapshot deep-copies the current configuration into a new Frame.
func (s *System) Snapshot() *Frame {
	f := &Frame{
		Numbers: append([]int(nil), s.Numbers...),
		PBC:     s.Periodic(),
	}
	f.Positions = mat.NewDense(s.Len(), 3, nil)
	f.Positions.Scale(1/units.Angstrom, s.Positions)
	if f.PBC {
		f.Box = mat.NewDense(3, 3, nil)
		f.Box.Scale(1/units.Angstrom, s.Box)
	}
	return f
}

// Update overwrites the frame's positions and box from the current system
// state. Atomic numbers are fixed for a run and are not touched.
func (f *Frame) Update(s *System) error {
	if s.Len() != len(f.Numbers) {
		return fmt.Errorf("%w: frame holds %d atoms, system %d", ErrDimension, len(f.Numbers), s.Len())
	}
	f.Positions.Scale(1/units.Angstrom, s.Positions)
	f.PBC = s.Periodic()
	if f.PBC {
		if f.Box == nil {
			f.Box = mat.NewDense(3, 3, nil)
		}
		f.Box.Scale(1/units.Angstrom, s.Box)
	} else {
		f.Box = nil
	}
	return nil
}

// Copy returns an independent deep copy of the frame.
func (f *Frame) Copy() *Frame {
	c := &Frame{
		Numbers: append([]int(nil), f.Numbers...),
		PBC:     f.PBC,
	}
	c.Positions = mat.DenseCopyOf(f.Positions)
	if f.Box != nil {
		c.Box = mat.DenseCopyOf(f.Box)
	}
	return c
}

// ToSystem converts the frame back into a System in internal units.
func (f *Frame) ToSystem() (*System, error) {
	pos := mat.NewDense(len(f.Numbers), 3, nil)
	pos.Scale(units.Angstrom, f.Positions)
	var box *mat.Dense
	if f.Box != nil {
		box = mat.NewDense(3, 3, nil)
		box.Scale(units.Angstrom, f.Box)
	}
	return New(f.Numbers, pos, box)
}
