// Package strain implements the finite-strain kinematics relating a strain
// tensor to a deformed box matrix.
//
// Apply and Compute are exact algebraic inverses of each other: for any
// symmetric strain s with 2s+I positive-definite and any invertible
// reference box b0,
//
//	Compute(Apply(s, b0), b0) == s
//
// to numerical tolerance.
package strain

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShape indicates an input matrix that is not 3x3.
	ErrShape = errors.New("strain: matrix is not 3x3")

	// ErrNotSymmetric indicates a strain tensor that is not symmetric.
	ErrNotSymmetric = errors.New("strain: tensor is not symmetric")

	// ErrNotPositiveDefinite indicates a strain for which 2s+I has a
	// negative eigenvalue, i.e. an unphysical deformation.
	ErrNotPositiveDefinite = errors.New("strain: 2*strain + I is not positive semi-definite")

	// ErrSingularBox indicates a reference box that cannot be inverted.
	ErrSingularBox = errors.New("strain: reference box is singular")
)

// symTol bounds the allowed asymmetry |s_ij - s_ji| of a strain tensor.
const symTol = 1e-10

func check3x3(m *mat.Dense, name string) error {
	if m == nil {
		return fmt.Errorf("%w: %s is nil", ErrShape, name)
	}
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return fmt.Errorf("%w: %s is %dx%d", ErrShape, name, r, c)
	}
	return nil
}

// Apply deforms a reference box by a symmetric strain tensor:
//
//	box = box0 * sqrt(2*strain + I)
//
// where the square root is the unique symmetric principal root, obtained
// from a symmetric eigendecomposition. An asymmetric strain or one whose
// 2s+I operator has negative eigenvalues is rejected.
func Apply(strain, box0 *mat.Dense) (*mat.Dense, error) {
	if err := check3x3(strain, "strain"); err != nil {
		return nil, err
	}
	if err := check3x3(box0, "box0"); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(strain.At(i, j)-strain.At(j, i)) > symTol {
				return nil, fmt.Errorf("%w: s[%d][%d]=%g, s[%d][%d]=%g",
					ErrNotSymmetric, i, j, strain.At(i, j), j, i, strain.At(j, i))
			}
		}
	}

	// A = 2*strain + I, symmetric by the check above.
	a := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			v := strain.At(i, j) + strain.At(j, i)
			if i == j {
				v += 1
			}
			a.SetSym(i, j, v)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(a, true) {
		return nil, fmt.Errorf("%w: eigendecomposition failed", ErrNotPositiveDefinite)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	sqrtD := mat.NewDense(3, 3, nil)
	for i, v := range values {
		if v < -symTol {
			return nil, fmt.Errorf("%w: eigenvalue %g", ErrNotPositiveDefinite, v)
		}
		if v < 0 {
			v = 0
		}
		sqrtD.Set(i, i, math.Sqrt(v))
	}

	// sqrt(A) = V * diag(sqrt(lambda)) * V^T
	var tmp, sqrtA, box mat.Dense
	tmp.Mul(&vectors, sqrtD)
	sqrtA.Mul(&tmp, vectors.T())
	box.Mul(box0, &sqrtA)
	return &box, nil
}

// Compute measures the strain of a box relative to a reference box:
//
//	strain = 0.5 * (box0^-1 * box * box^T * box0^-T - I)
//
// It inverts Apply exactly when box was produced by Apply from box0.
func Compute(box, box0 *mat.Dense) (*mat.Dense, error) {
	if err := check3x3(box, "box"); err != nil {
		return nil, err
	}
	if err := check3x3(box0, "box0"); err != nil {
		return nil, err
	}
	var inv0 mat.Dense
	if err := inv0.Inverse(box0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularBox, err)
	}
	var t1, t2, tmp mat.Dense
	t1.Mul(&inv0, box)
	t2.Mul(&t1, box.T())
	tmp.Mul(&t2, inv0.T())
	strain := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := tmp.At(i, j)
			if i == j {
				v -= 1
			}
			strain.Set(i, j, 0.5*v)
		}
	}
	return strain, nil
}
