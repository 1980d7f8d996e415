// Package forcefield evaluates the total energy, gradient and virial of an
// atomic system by fanning out over pluggable force parts, and enforces a
// runaway-force safety check on every evaluation.
//
// The accumulation convention throughout is gradient = -force: every part
// adds its gradient contribution into the shared buffers, in registration
// order, so that the sum over parts is itself a valid gradient.
package forcefield

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/system"
	"github.com/ArnoutMaet/walker-masses/internal/units"
)

// Part is one additive contributor to the total energy. Compute adds its
// gradient (N x 3) and virial (3 x 3) contributions into the given buffers
// and returns its scalar energy in internal units. Either buffer may be
// nil when the caller does not need that output.
type Part interface {
	Compute(gpos, vtens *mat.Dense) (float64, error)
}

// NeighborList is a spatial index some force parts use to limit pairwise
// search. It is refreshed lazily, at the start of the first evaluation
// after an invalidation.
type NeighborList interface {
	Update() error
}

// DefaultThreshold is the runaway-force cutoff in eV/A.
const DefaultThreshold = 20.0

// ForceField owns an atomic system and an ordered list of force parts.
// It is not safe for concurrent use: buffers and external-calculator state
// are not reentrant, and parts are invoked strictly sequentially.
type ForceField struct {
	sys       *system.System
	parts     []Part
	threshold float64

	nlist      NeighborList
	nlistStale bool

	// scratch holds the accumulated gradient when the caller passes a nil
	// gradient buffer; the threshold check always needs it.
	scratch *mat.Dense

	// failed latches the first threshold violation; the evaluator refuses
	// further work for this trajectory until Reset.
	failed error
}

// New builds a safety-checked evaluator over sys. A threshold <= 0 selects
// DefaultThreshold.
func New(sys *system.System, threshold float64, parts ...Part) *ForceField {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &ForceField{
		sys:       sys,
		parts:     parts,
		threshold: threshold,
	}
}

// System returns the atomic system owned by the evaluator.
func (ff *ForceField) System() *system.System { return ff.sys }

// Threshold returns the configured force cutoff in eV/A.
func (ff *ForceField) Threshold() float64 { return ff.threshold }

// AddPart appends a force part; evaluation order is registration order.
func (ff *ForceField) AddPart(p Part) { ff.parts = append(ff.parts, p) }

// SetNeighborList installs a neighbor list and marks it stale so the first
// evaluation refreshes it.
func (ff *ForceField) SetNeighborList(nl NeighborList) {
	ff.nlist = nl
	ff.nlistStale = nl != nil
}

// InvalidateNeighborList flags the neighbor list for a lazy refresh at the
// next evaluation.
func (ff *ForceField) InvalidateNeighborList() {
	ff.nlistStale = ff.nlist != nil
}

// Compute evaluates all force parts, accumulating into gpos (N x 3) and
// vtens (3 x 3) when non-nil, and returns the total energy. The buffers
// are zeroed first; on return they hold this evaluation's sums.
//
// After every evaluation the accumulated gradient is converted to physical
// forces and the largest per-atom force magnitude is checked against the
// threshold. A violation returns a *ThresholdError and latches the
// evaluator: the trajectory must not continue, and further calls fail with
// the same error until Reset.
func (ff *ForceField) Compute(gpos, vtens *mat.Dense) (float64, error) {
	if ff.failed != nil {
		return 0, ff.failed
	}
	if len(ff.parts) == 0 {
		return 0, ErrNoParts
	}
	if err := ff.checkBuffers(gpos, vtens); err != nil {
		return 0, err
	}
	if ff.nlistStale {
		if err := ff.nlist.Update(); err != nil {
			return 0, err
		}
		ff.nlistStale = false
	}

	grad := gpos
	if grad == nil {
		if ff.scratch == nil {
			ff.scratch = mat.NewDense(ff.sys.Len(), 3, nil)
		}
		grad = ff.scratch
	}
	grad.Zero()
	if vtens != nil {
		vtens.Zero()
	}

	var total float64
	for _, p := range ff.parts {
		e, err := p.Compute(grad, vtens)
		if err != nil {
			return 0, err
		}
		total += e
	}

	maxForce, atom := maxForceNorm(grad)
	if maxForce > ff.threshold {
		err := &ThresholdError{MaxForce: maxForce, Atom: atom, Threshold: ff.threshold}
		ff.failed = err
		return 0, err
	}
	return total, nil
}

// Reset clears a latched threshold failure. Only meaningful when starting
// a fresh trajectory from a consistent state.
func (ff *ForceField) Reset() { ff.failed = nil }

func (ff *ForceField) checkBuffers(gpos, vtens *mat.Dense) error {
	if gpos != nil {
		r, c := gpos.Dims()
		if r != ff.sys.Len() || c != 3 {
			return ErrBuffer
		}
	}
	if vtens != nil {
		r, c := vtens.Dims()
		if r != 3 || c != 3 {
			return ErrBuffer
		}
	}
	return nil
}

// maxForceNorm converts the accumulated gradient to physical forces in
// eV/A and returns the largest per-atom Euclidean norm with its index.
func maxForceNorm(grad *mat.Dense) (float64, int) {
	n, _ := grad.Dims()
	maxForce, atom := 0.0, 0
	for i := 0; i < n; i++ {
		var sq float64
		for j := 0; j < 3; j++ {
			f := grad.At(i, j) * units.ForcePerEVA
			sq += f * f
		}
		if norm := math.Sqrt(sq); norm > maxForce {
			maxForce, atom = norm, i
		}
	}
	return maxForce, atom
}
