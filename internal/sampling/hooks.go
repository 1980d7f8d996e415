// Package sampling implements the trajectory-observation side of a run:
// step-triggered hooks invoked by the integrator, extended-XYZ frame I/O,
// and the integrator log summary parser.
//
// Hooks only read the system state; they never mutate it, and never
// perturb the trajectory.
package sampling

import (
	"errors"
	"fmt"
	"os"

	"github.com/ArnoutMaet/walker-masses/internal/system"
)

// ErrSchedule indicates an invalid start/step trigger schedule.
var ErrSchedule = errors.New("sampling: invalid schedule")

// Iteration is the opaque handle the integrator passes to hooks: the
// current step counter and the system state being advanced.
type Iteration interface {
	Counter() int
	System() *system.System
}

// Hook is a step-triggered trajectory callback.
type Hook interface {
	OnStep(it Iteration) error
}

// Schedule triggers at counters start, start+step, start+2*step, ...
type Schedule struct {
	Start int
	Step  int
}

// NewSchedule validates start >= 0 and step >= 1.
func NewSchedule(start, step int) (Schedule, error) {
	if start < 0 || step < 1 {
		return Schedule{}, fmt.Errorf("%w: start=%d step=%d", ErrSchedule, start, step)
	}
	return Schedule{Start: start, Step: step}, nil
}

// Triggers reports whether the schedule fires at this counter.
func (s Schedule) Triggers(counter int) bool {
	return counter >= s.Start && (counter-s.Start)%s.Step == 0
}

// DataHook collects frames into an in-memory ordered sequence. Growth is
// unbounded; bounding run length is the caller's responsibility.
type DataHook struct {
	Schedule
	snap   *system.Frame
	frames []*system.Frame
}

// NewDataHook builds an in-memory collector on the given schedule.
func NewDataHook(start, step int) (*DataHook, error) {
	sched, err := NewSchedule(start, step)
	if err != nil {
		return nil, err
	}
	return &DataHook{Schedule: sched}, nil
}

func (h *DataHook) OnStep(it Iteration) error {
	if !h.Triggers(it.Counter()) {
		return nil
	}
	if h.snap == nil {
		h.snap = it.System().Snapshot()
	} else if err := h.snap.Update(it.System()); err != nil {
		return err
	}
	h.frames = append(h.frames, h.snap.Copy())
	return nil
}

// Frames returns the captured frames in trigger order.
func (h *DataHook) Frames() []*system.Frame { return h.frames }

// XYZHook appends each scheduled frame to an extended-XYZ file.
//
// SkipFirst suppresses the first scheduled write. This replicates the
// legacy driver convention where frame zero is written out-of-band before
// integration starts; it is an explicit off-by-one compatibility switch,
// off by default so that every scheduled frame is written.
type XYZHook struct {
	Schedule
	Path      string
	SkipFirst bool

	snap    *system.Frame
	skipped bool
}

// NewXYZHook builds a file-appending hook on the given schedule.
func NewXYZHook(path string, start, step int) (*XYZHook, error) {
	sched, err := NewSchedule(start, step)
	if err != nil {
		return nil, err
	}
	return &XYZHook{Schedule: sched, Path: path}, nil
}

func (h *XYZHook) OnStep(it Iteration) error {
	if !h.Triggers(it.Counter()) {
		return nil
	}
	if h.snap == nil {
		h.snap = it.System().Snapshot()
	} else if err := h.snap.Update(it.System()); err != nil {
		return err
	}
	if h.SkipFirst && !h.skipped {
		h.skipped = true
		return nil
	}
	f, err := os.OpenFile(h.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := WriteFrame(f, h.snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
