package forcefield

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/system"
	"github.com/ArnoutMaet/walker-masses/internal/units"
)

// Calculator is the capability boundary to an external energy/force/stress
// engine. All exchanged quantities are in calculator units: angstrom for
// lengths, eV for energies, eV/A for forces, eV/A^3 for stress.
//
// Set updates the calculator's configuration; repeated Set calls with
// identical inputs are expected to be idempotent. A nil cell denotes an
// isolated configuration. Stress must be the full 3x3 tensor, not a Voigt
// reduction.
type Calculator interface {
	Set(positions, cell *mat.Dense)
	PotentialEnergy() (float64, error)
	Forces(dst *mat.Dense) error
	Stress(dst *mat.Dense) error
}

// CalculatorPart bridges a Calculator into the evaluator's gradient/virial
// convention: it pushes the current positions and box, pulls energy,
// forces and stress back, and converts units and signs.
type CalculatorPart struct {
	sys  *system.System
	calc Calculator

	posAng *mat.Dense
	boxAng *mat.Dense
	forces *mat.Dense
	stress *mat.Dense
}

// NewCalculatorPart wraps calc as a force part reading sys.
func NewCalculatorPart(sys *system.System, calc Calculator) *CalculatorPart {
	return &CalculatorPart{
		sys:    sys,
		calc:   calc,
		posAng: mat.NewDense(sys.Len(), 3, nil),
		boxAng: mat.NewDense(3, 3, nil),
		forces: mat.NewDense(sys.Len(), 3, nil),
		stress: mat.NewDense(3, 3, nil),
	}
}

// Compute pushes positions/box to the calculator and accumulates its
// contribution. The gradient is the negated force; the virial is the cell
// volume times the full stress tensor, the conjugate-to-strain quantity.
func (p *CalculatorPart) Compute(gpos, vtens *mat.Dense) (float64, error) {
	p.posAng.Scale(1/units.Angstrom, p.sys.Positions)
	var cell *mat.Dense
	if p.sys.Periodic() {
		p.boxAng.Scale(1/units.Angstrom, p.sys.Box)
		cell = p.boxAng
	}
	p.calc.Set(p.posAng, cell)

	energy, err := p.calc.PotentialEnergy()
	if err != nil {
		return 0, err
	}
	energy *= units.Electronvolt

	if gpos != nil {
		if err := p.calc.Forces(p.forces); err != nil {
			return 0, err
		}
		// gradient = -force, eV/A -> Hartree/Bohr
		conv := units.Electronvolt / units.Angstrom
		n := p.sys.Len()
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				gpos.Set(i, j, gpos.At(i, j)-p.forces.At(i, j)*conv)
			}
		}
	}
	if vtens != nil {
		if err := p.calc.Stress(p.stress); err != nil {
			return 0, err
		}
		volume := 1.0
		if cell != nil {
			volume = mat.Det(cell) // A^3
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				vtens.Set(i, j, vtens.At(i, j)+volume*p.stress.At(i, j)*units.Electronvolt)
			}
		}
	}
	return energy, nil
}
