package bias

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrNotPrepared indicates ComputeNoUpdate was called before Prepare.
var ErrNotPrepared = errors.New("bias: engine compute before prepare")

// Restraint is a minimal in-process Engine: a harmonic tether pulling one
// atom toward an anchor point. It exists so the bias boundary has a
// conforming implementation; real enhanced-sampling engines plug in
// through the same interface.
//
// Energy is 0.5*K*|r-a|^2 in internal units, with K in Hartree/Bohr^2 and
// the anchor in Bohr.
type Restraint struct {
	Atom   int
	Anchor [3]float64
	K      float64

	step     int
	pos      *mat.Dense
	forces   *mat.Dense
	virial   *mat.Dense
	energy   float64
	prepared bool
}

// NewRestraint tethers atom to anchor with spring constant k.
func NewRestraint(atom int, anchor [3]float64, k float64) *Restraint {
	return &Restraint{Atom: atom, Anchor: anchor, K: k}
}

func (r *Restraint) SetStep(step int)            { r.step = step }
func (r *Restraint) SetPositions(pos *mat.Dense) { r.pos = pos }
func (r *Restraint) SetMasses([]float64)         {}
func (r *Restraint) SetCharges([]float64)        {}
func (r *Restraint) SetBox(*mat.Dense)           {}
func (r *Restraint) SetForces(buf *mat.Dense)    { r.forces = buf }
func (r *Restraint) SetVirial(buf *mat.Dense)    { r.virial = buf }

// CurrentStep returns the step most recently pushed with SetStep.
func (r *Restraint) CurrentStep() int { return r.step }

func (r *Restraint) Prepare() error {
	r.prepared = true
	return nil
}

// ComputeNoUpdate evaluates the restraint and adds its forces and virial
// into the buffers pushed beforehand. It does not mutate hill or history
// state, matching the engine contract's no-update phase.
func (r *Restraint) ComputeNoUpdate() error {
	if !r.prepared {
		return ErrNotPrepared
	}
	r.prepared = false

	var d [3]float64
	for j := 0; j < 3; j++ {
		d[j] = r.pos.At(r.Atom, j) - r.Anchor[j]
	}
	r.energy = 0.5 * r.K * (d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	for j := 0; j < 3; j++ {
		f := -r.K * d[j]
		r.forces.Set(r.Atom, j, r.forces.At(r.Atom, j)+f)
		for i := 0; i < 3; i++ {
			// vtens_ij += d_i * k * d_j
			r.virial.Set(i, j, r.virial.At(i, j)+d[i]*r.K*d[j])
		}
	}
	return nil
}

func (r *Restraint) BiasEnergy() float64 { return r.energy }
