package potential

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LennardJones is a truncated 12-6 pair potential with minimum-image
// periodic wrapping when a cell is set. Defaults are argon.
type LennardJones struct {
	Epsilon float64 // eV
	Sigma   float64 // A
	Cutoff  float64 // A; pairs beyond are skipped

	pos   *mat.Dense
	cell  *mat.Dense
	dirty bool

	energy float64
	forces *mat.Dense
	stress *mat.Dense
}

// Argon parameters, the conventional LJ test fluid.
const (
	ArgonEpsilon = 0.0103 // eV
	ArgonSigma   = 3.405  // A
)

// NewLennardJones builds a pair potential; zero values select argon
// parameters and a 3*sigma cutoff.
func NewLennardJones(epsilon, sigma, cutoff float64) *LennardJones {
	if epsilon <= 0 {
		epsilon = ArgonEpsilon
	}
	if sigma <= 0 {
		sigma = ArgonSigma
	}
	if cutoff <= 0 {
		cutoff = 3 * sigma
	}
	return &LennardJones{Epsilon: epsilon, Sigma: sigma, Cutoff: cutoff}
}

// Set updates the configuration the next pulls evaluate.
func (lj *LennardJones) Set(positions, cell *mat.Dense) {
	lj.pos = positions
	lj.cell = cell
	lj.dirty = true
}

func (lj *LennardJones) compute() {
	n, _ := lj.pos.Dims()
	if lj.forces == nil || !sameDims(lj.forces, n) {
		lj.forces = mat.NewDense(n, 3, nil)
		lj.stress = mat.NewDense(3, 3, nil)
	}
	lj.forces.Zero()
	lj.stress.Zero()
	lj.energy = 0

	var inv *mat.Dense
	if lj.cell != nil {
		inv = mat.NewDense(3, 3, nil)
		if err := inv.Inverse(lj.cell); err != nil {
			inv = nil
		}
	}

	rc2 := lj.Cutoff * lj.Cutoff
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d [3]float64
			for k := 0; k < 3; k++ {
				d[k] = lj.pos.At(j, k) - lj.pos.At(i, k)
			}
			if inv != nil {
				minimumImage(&d, lj.cell, inv)
			}
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			if r2 > rc2 || r2 == 0 {
				continue
			}
			s2 := lj.Sigma * lj.Sigma / r2
			s6 := s2 * s2 * s2
			s12 := s6 * s6
			lj.energy += 4 * lj.Epsilon * (s12 - s6)
			// fs*d is the force on atom j; fs = -u'(r)/r.
			fs := 24 * lj.Epsilon * (2*s12 - s6) / r2
			for a := 0; a < 3; a++ {
				lj.forces.Set(i, a, lj.forces.At(i, a)-fs*d[a])
				lj.forces.Set(j, a, lj.forces.At(j, a)+fs*d[a])
				for b := 0; b < 3; b++ {
					// dE/dstrain_ab = sum_pairs u'(r)/r d_a d_b
					lj.stress.Set(a, b, lj.stress.At(a, b)-fs*d[a]*d[b])
				}
			}
		}
	}
	lj.stress.Scale(1/volumeOf(lj.cell), lj.stress)
	lj.dirty = false
}

// minimumImage wraps the separation d to the nearest periodic image. Rows
// of cell are lattice vectors, so fractional coordinates are d * cell^-1.
func minimumImage(d *[3]float64, cell, inv *mat.Dense) {
	var frac [3]float64
	for a := 0; a < 3; a++ {
		frac[a] = d[0]*inv.At(0, a) + d[1]*inv.At(1, a) + d[2]*inv.At(2, a)
	}
	for a := 0; a < 3; a++ {
		shift := math.Round(frac[a])
		if shift == 0 {
			continue
		}
		for k := 0; k < 3; k++ {
			d[k] -= shift * cell.At(a, k)
		}
	}
}

func (lj *LennardJones) PotentialEnergy() (float64, error) {
	if lj.dirty {
		lj.compute()
	}
	return lj.energy, nil
}

func (lj *LennardJones) Forces(dst *mat.Dense) error {
	if lj.dirty {
		lj.compute()
	}
	dst.Copy(lj.forces)
	return nil
}

func (lj *LennardJones) Stress(dst *mat.Dense) error {
	if lj.dirty {
		lj.compute()
	}
	dst.Copy(lj.stress)
	return nil
}
