// Package bias bridges an external enhanced-sampling engine into the force
// evaluator. The engine steers the dynamics with an additional bias energy
// and writes its forces and virial into caller-provided buffers.
//
// The engine's contract requires writable buffers unconditionally; the
// force part therefore supplies zero-filled scratch buffers whenever the
// evaluator did not request gradients or virial, so that "caller wants
// output" stays decoupled from "engine needs a buffer".
package bias

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/system"
)

// Engine is the capability boundary to the enhanced-sampling engine. The
// call sequence per evaluation is: SetStep, the Set* pushes, SetForces and
// SetVirial with non-nil buffers, then the two-phase Prepare followed by
// ComputeNoUpdate, which evaluates the bias without advancing the engine's
// integration state. The engine adds forces (physical sign) into the
// buffer given to SetForces.
type Engine interface {
	SetStep(step int)
	SetPositions(pos *mat.Dense)
	SetMasses(masses []float64)
	SetCharges(charges []float64)
	SetBox(box *mat.Dense)
	SetForces(buf *mat.Dense)
	SetVirial(buf *mat.Dense)
	Prepare() error
	ComputeNoUpdate() error
	BiasEnergy() float64
}

// Part is a force part backed by an Engine. It advances the engine's step
// counter exactly once per Compute call; the counter is engine-internal
// state that must move even when the evaluation is later discarded.
type Part struct {
	sys    *system.System
	engine Engine
	step   int

	gscratch *mat.Dense
	vscratch *mat.Dense
}

// NewPart builds a bias force part reading sys.
func NewPart(sys *system.System, engine Engine) *Part {
	return &Part{
		sys:      sys,
		engine:   engine,
		gscratch: mat.NewDense(sys.Len(), 3, nil),
		vscratch: mat.NewDense(3, 3, nil),
	}
}

// Step returns the number of Compute calls issued so far.
func (p *Part) Step() int { return p.step }

// Compute pushes the configuration into the engine and returns the bias
// energy. The caller-visible gradient keeps the gradient = -force
// convention: the buffer is flipped to force sign around the engine call
// exactly once, never twice.
func (p *Part) Compute(gpos, vtens *mat.Dense) (float64, error) {
	p.engine.SetStep(p.step)
	p.step++

	p.engine.SetPositions(p.sys.Positions)
	p.engine.SetMasses(p.sys.Masses)
	if p.sys.Charges != nil {
		p.engine.SetCharges(p.sys.Charges)
	}
	if p.sys.Periodic() {
		p.engine.SetBox(p.sys.Box)
	}

	forces := gpos
	if forces == nil {
		p.gscratch.Zero()
		forces = p.gscratch
	} else {
		// The engine adds forces; expose the accumulated gradient in
		// force sign for the duration of the call.
		gpos.Scale(-1, gpos)
		defer gpos.Scale(-1, gpos)
	}
	p.engine.SetForces(forces)

	virial := vtens
	if virial == nil {
		p.vscratch.Zero()
		virial = p.vscratch
	}
	p.engine.SetVirial(virial)

	if err := p.engine.Prepare(); err != nil {
		return 0, err
	}
	if err := p.engine.ComputeNoUpdate(); err != nil {
		return 0, err
	}
	return p.engine.BiasEnergy(), nil
}
