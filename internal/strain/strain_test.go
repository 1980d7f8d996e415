package strain

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestApplyIdentity(t *testing.T) {
	box0 := mat.NewDense(3, 3, []float64{5, 0, 0, 1, 4, 0, 0.5, 0.2, 6})
	zero := mat.NewDense(3, 3, nil)

	box, err := Apply(zero, box0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.EqualApprox(box, box0, 1e-12) {
		t.Errorf("zero strain should leave the box unchanged, got %v", mat.Formatted(box))
	}
}

func TestRoundTrip(t *testing.T) {
	strains := []*mat.Dense{
		mat.NewDense(3, 3, []float64{0.10, 0.02, 0.00, 0.02, 0.05, 0.01, 0.00, 0.01, -0.02}),
		mat.NewDense(3, 3, []float64{-0.05, 0, 0, 0, -0.05, 0, 0, 0, -0.05}),
		mat.NewDense(3, 3, []float64{0, 0.03, -0.01, 0.03, 0, 0.02, -0.01, 0.02, 0}),
	}
	boxes := []*mat.Dense{
		mat.NewDense(3, 3, []float64{5, 0, 0, 0, 5, 0, 0, 0, 5}),
		mat.NewDense(3, 3, []float64{5, 0, 0, 1, 4, 0, 0.5, 0.2, 6}),
	}

	for si, s := range strains {
		for bi, box0 := range boxes {
			box, err := Apply(s, box0)
			if err != nil {
				t.Fatalf("strain %d box %d: apply: %v", si, bi, err)
			}
			back, err := Compute(box, box0)
			if err != nil {
				t.Fatalf("strain %d box %d: compute: %v", si, bi, err)
			}
			if !mat.EqualApprox(back, s, 1e-10) {
				t.Errorf("strain %d box %d: round trip mismatch\nwant %v\ngot  %v",
					si, bi, mat.Formatted(s), mat.Formatted(back))
			}
		}
	}
}

func TestApplyRejectsAsymmetric(t *testing.T) {
	s := mat.NewDense(3, 3, []float64{0, 0.1, 0, 0, 0, 0, 0, 0, 0})
	box0 := mat.NewDense(3, 3, []float64{5, 0, 0, 0, 5, 0, 0, 0, 5})

	_, err := Apply(s, box0)
	if !errors.Is(err, ErrNotSymmetric) {
		t.Errorf("expected ErrNotSymmetric, got %v", err)
	}
}

func TestApplyRejectsUnphysical(t *testing.T) {
	// 2s + I has eigenvalue -0.2 along x.
	s := mat.NewDense(3, 3, []float64{-0.6, 0, 0, 0, 0, 0, 0, 0, 0})
	box0 := mat.NewDense(3, 3, []float64{5, 0, 0, 0, 5, 0, 0, 0, 5})

	_, err := Apply(s, box0)
	if !errors.Is(err, ErrNotPositiveDefinite) {
		t.Errorf("expected ErrNotPositiveDefinite, got %v", err)
	}
}

func TestComputeRejectsSingularReference(t *testing.T) {
	box := mat.NewDense(3, 3, []float64{5, 0, 0, 0, 5, 0, 0, 0, 5})
	box0 := mat.NewDense(3, 3, []float64{5, 0, 0, 5, 0, 0, 0, 0, 5})

	_, err := Compute(box, box0)
	if !errors.Is(err, ErrSingularBox) {
		t.Errorf("expected ErrSingularBox, got %v", err)
	}
}

func TestShapeChecks(t *testing.T) {
	bad := mat.NewDense(2, 3, nil)
	good := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})

	if _, err := Apply(bad, good); !errors.Is(err, ErrShape) {
		t.Errorf("Apply: expected ErrShape, got %v", err)
	}
	if _, err := Compute(good, bad); !errors.Is(err, ErrShape) {
		t.Errorf("Compute: expected ErrShape, got %v", err)
	}
	if _, err := Apply(nil, good); !errors.Is(err, ErrShape) {
		t.Errorf("Apply nil: expected ErrShape, got %v", err)
	}
}
