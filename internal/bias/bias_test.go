package bias

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/system"
)

func restrainedSystem(t *testing.T) *system.System {
	t.Helper()
	pos := mat.NewDense(1, 3, []float64{1, 0, 0})
	sys, err := system.New([]int{1}, pos, nil)
	if err != nil {
		t.Fatalf("system.New: %v", err)
	}
	if err := sys.SetStandardMasses(); err != nil {
		t.Fatalf("SetStandardMasses: %v", err)
	}
	return sys
}

func TestPartEnergyAndGradient(t *testing.T) {
	sys := restrainedSystem(t)
	part := NewPart(sys, NewRestraint(0, [3]float64{0, 0, 0}, 2))

	gpos := mat.NewDense(1, 3, nil)
	vtens := mat.NewDense(3, 3, nil)
	energy, err := part.Compute(gpos, vtens)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// E = 0.5 * 2 * 1^2
	if math.Abs(energy-1.0) > 1e-14 {
		t.Errorf("expected bias energy 1.0, got %f", energy)
	}
	// force = -k*d = -2 along x, so gradient = +2
	if math.Abs(gpos.At(0, 0)-2.0) > 1e-14 {
		t.Errorf("expected gradient +2, got %f", gpos.At(0, 0))
	}
	// vtens_xx = d_x * k * d_x
	if math.Abs(vtens.At(0, 0)-2.0) > 1e-14 {
		t.Errorf("expected virial 2, got %f", vtens.At(0, 0))
	}
}

func TestPartNilBuffers(t *testing.T) {
	sys := restrainedSystem(t)
	engine := NewRestraint(0, [3]float64{0, 0, 0}, 2)
	part := NewPart(sys, engine)

	// The engine requires writable buffers unconditionally; nil caller
	// buffers must still produce the same energy via internal scratch.
	energy, err := part.Compute(nil, nil)
	if err != nil {
		t.Fatalf("Compute with nil buffers: %v", err)
	}
	if math.Abs(energy-1.0) > 1e-14 {
		t.Errorf("expected bias energy 1.0, got %f", energy)
	}

	gpos := mat.NewDense(1, 3, nil)
	energy2, err := part.Compute(gpos, nil)
	if err != nil {
		t.Fatalf("Compute with buffers: %v", err)
	}
	if energy2 != energy {
		t.Errorf("energy depends on buffer presence: %f vs %f", energy, energy2)
	}
}

func TestPartAccumulates(t *testing.T) {
	sys := restrainedSystem(t)
	part := NewPart(sys, NewRestraint(0, [3]float64{0, 0, 0}, 2))

	// a previous part already deposited gradient 5
	gpos := mat.NewDense(1, 3, []float64{5, 0, 0})
	if _, err := part.Compute(gpos, nil); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(gpos.At(0, 0)-7.0) > 1e-14 {
		t.Errorf("expected accumulated gradient 7 (5 + 2), got %f", gpos.At(0, 0))
	}
}

func TestPartAdvancesStep(t *testing.T) {
	sys := restrainedSystem(t)
	engine := NewRestraint(0, [3]float64{0, 0, 0}, 1)
	part := NewPart(sys, engine)

	for i := 0; i < 3; i++ {
		if engineStep := engine.CurrentStep(); i > 0 && engineStep != i-1 {
			t.Errorf("before call %d: engine step %d", i, engineStep)
		}
		if _, err := part.Compute(nil, nil); err != nil {
			t.Fatalf("Compute %d: %v", i, err)
		}
	}
	if part.Step() != 3 {
		t.Errorf("expected 3 recorded calls, got %d", part.Step())
	}
	if engine.CurrentStep() != 2 {
		t.Errorf("expected last pushed step 2, got %d", engine.CurrentStep())
	}
}

func TestRestraintTwoPhase(t *testing.T) {
	engine := NewRestraint(0, [3]float64{0, 0, 0}, 1)
	engine.SetPositions(mat.NewDense(1, 3, []float64{1, 0, 0}))
	engine.SetForces(mat.NewDense(1, 3, nil))
	engine.SetVirial(mat.NewDense(3, 3, nil))

	if err := engine.ComputeNoUpdate(); err == nil {
		t.Error("expected error when computing before prepare")
	}
	if err := engine.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := engine.ComputeNoUpdate(); err != nil {
		t.Errorf("ComputeNoUpdate after prepare: %v", err)
	}
}
