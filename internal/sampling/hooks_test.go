package sampling

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/system"
	"github.com/ArnoutMaet/walker-masses/internal/units"
)

type fakeIteration struct {
	counter int
	sys     *system.System
}

func (it *fakeIteration) Counter() int           { return it.counter }
func (it *fakeIteration) System() *system.System { return it.sys }

func hookSystem(t *testing.T) *system.System {
	t.Helper()
	pos := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		units.Angstrom, 0, 0,
	})
	box := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		box.Set(i, i, 5*units.Angstrom)
	}
	sys, err := system.New([]int{1, 1}, pos, box)
	if err != nil {
		t.Fatalf("system.New: %v", err)
	}
	return sys
}

func TestScheduleValidation(t *testing.T) {
	if _, err := NewSchedule(-1, 1); err == nil {
		t.Error("expected error for negative start")
	}
	if _, err := NewSchedule(0, 0); err == nil {
		t.Error("expected error for zero step")
	}
}

func TestDataHookSchedule(t *testing.T) {
	sys := hookSystem(t)
	hook, err := NewDataHook(0, 2)
	if err != nil {
		t.Fatalf("NewDataHook: %v", err)
	}

	for counter := 0; counter < 5; counter++ {
		sys.Positions.Set(0, 0, float64(counter)*units.Angstrom)
		if err := hook.OnStep(&fakeIteration{counter, sys}); err != nil {
			t.Fatalf("OnStep %d: %v", counter, err)
		}
	}

	frames := hook.Frames()
	if len(frames) != 3 {
		t.Fatalf("schedule 0,2 over 0..4 should capture 3 frames, got %d", len(frames))
	}
	for i, want := range []float64{0, 2, 4} {
		got := frames[i].Positions.At(0, 0)
		if got != want {
			t.Errorf("frame %d: position %f, want %f", i, got, want)
		}
	}
	// frames must be independent deep copies
	if frames[0].Positions.At(0, 0) == frames[1].Positions.At(0, 0) {
		t.Error("frames alias the reusable snapshot")
	}
}

func TestDataHookStartOffset(t *testing.T) {
	sys := hookSystem(t)
	hook, _ := NewDataHook(3, 2)
	for counter := 0; counter < 8; counter++ {
		if err := hook.OnStep(&fakeIteration{counter, sys}); err != nil {
			t.Fatalf("OnStep %d: %v", counter, err)
		}
	}
	// triggers at 3, 5, 7
	if got := len(hook.Frames()); got != 3 {
		t.Errorf("expected 3 frames, got %d", got)
	}
}

func TestXYZHookWritesScheduledFrames(t *testing.T) {
	sys := hookSystem(t)
	path := filepath.Join(t.TempDir(), "traj.xyz")
	hook, err := NewXYZHook(path, 0, 2)
	if err != nil {
		t.Fatalf("NewXYZHook: %v", err)
	}

	for counter := 0; counter < 5; counter++ {
		if err := hook.OnStep(&fakeIteration{counter, sys}); err != nil {
			t.Fatalf("OnStep %d: %v", counter, err)
		}
	}

	frames, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(frames) != 3 {
		t.Errorf("expected 3 appended frames, got %d", len(frames))
	}
}

func TestXYZHookSkipFirst(t *testing.T) {
	sys := hookSystem(t)
	path := filepath.Join(t.TempDir(), "traj.xyz")
	hook, _ := NewXYZHook(path, 0, 2)
	hook.SkipFirst = true

	for counter := 0; counter < 5; counter++ {
		if err := hook.OnStep(&fakeIteration{counter, sys}); err != nil {
			t.Fatalf("OnStep %d: %v", counter, err)
		}
	}

	frames, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("skip-first should drop exactly the first scheduled write, got %d frames", len(frames))
	}
}

func TestExtXYZRoundTrip(t *testing.T) {
	sys := hookSystem(t)
	frame := sys.Snapshot()

	var sb strings.Builder
	if err := WriteFrame(&sb, frame); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	text := sb.String()
	if !strings.Contains(text, `Lattice="5.00000000`) {
		t.Errorf("missing lattice in comment line:\n%s", text)
	}
	if !strings.Contains(text, `pbc="T T T"`) {
		t.Errorf("missing pbc flag:\n%s", text)
	}

	path := filepath.Join(t.TempDir(), "frame.xyz")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	frames, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := frames[0]
	if got.Numbers[0] != 1 || got.Numbers[1] != 1 {
		t.Errorf("numbers: %v", got.Numbers)
	}
	if !mat.EqualApprox(got.Positions, frame.Positions, 1e-7) {
		t.Errorf("positions changed in round trip")
	}
	if !got.PBC || !mat.EqualApprox(got.Box, frame.Box, 1e-7) {
		t.Errorf("box changed in round trip")
	}
}

func TestReadPlainXYZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xyz")
	content := "2\n\nH 0.0 0.0 0.0\nO 0.0 0.0 0.96\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	frames, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if frames[0].PBC || frames[0].Box != nil {
		t.Error("plain xyz should be non-periodic")
	}
	if frames[0].Numbers[1] != 8 {
		t.Errorf("expected oxygen, got %d", frames[0].Numbers[1])
	}
}
