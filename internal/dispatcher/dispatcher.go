// Package dispatcher drives the two stepper motors in lockstep toward a
// planner-emitted motion frame, interleaving pulses so that both axes
// advance proportionally and finish together.
package dispatcher

import (
	"context"

	"github.com/itohio/sandtable/internal/kinematics"
	"github.com/itohio/sandtable/internal/planner"
)

// Axis identifies one of the two stepper motors.
type Axis int

const (
	AxisPrimary Axis = iota
	AxisSecondary
)

// PulseSink is the I/O capability the dispatcher needs from the board: a
// single edge-triggered step line per axis, a shared ENABLE line, and a
// cooperative microsecond sleep.
type PulseSink interface {
	Pulse(axis Axis, forward bool)
	Engage()
	Disengage()
	SleepUS(ctx context.Context, us int64) error
}

// Dispatcher converts motion frames into step pulses.
type Dispatcher struct {
	sink    PulseSink
	kinCfg  kinematics.Config
	last    kinematics.StepPosition
	engaged bool
}

// New captures ownership of sink. kinCfg is used to resolve each frame's
// polar position into absolute motor step targets.
func New(sink PulseSink, kinCfg kinematics.Config) *Dispatcher {
	return &Dispatcher{sink: sink, kinCfg: kinCfg}
}

// MoveToFrame drives both motors from the last dispatched position to
// frame's absolute step target, pacing pulses from frame.Speed.
func (d *Dispatcher) MoveToFrame(ctx context.Context, frame planner.MotionFrame) error {
	target := kinematics.Steps(d.kinCfg, frame.Position.Theta, frame.Position.Rho)
	delta := d.last.Delta(target)

	absP := absInt32(delta.Primary)
	absS := absInt32(delta.Secondary)
	if absP == 0 && absS == 0 {
		d.last = target
		return nil
	}

	if !d.engaged {
		d.sink.Engage()
		d.engaged = true
	}

	rp := rate(absP, absS)
	rs := rate(absS, absP)

	// Primary forward is a positive delta. The secondary motor is wired
	// with its shaft coupled on top of the primary's, so its forward
	// direction is inverted relative to the sign of its delta.
	primaryForward := delta.Primary > 0
	secondaryForward := delta.Secondary < 0

	period := pulsePeriodUS(frame.Speed)

	var ap, as float32
	var primaryDone, secondaryDone int32
	for primaryDone < absP || secondaryDone < absS {
		ap += rp
		as += rs

		if ap >= 1 && primaryDone < absP {
			d.sink.Pulse(AxisPrimary, primaryForward)
			ap -= 1
			primaryDone++
		}
		if as >= 1 && secondaryDone < absS {
			d.sink.Pulse(AxisSecondary, secondaryForward)
			as -= 1
			secondaryDone++
		}

		if err := d.sink.SleepUS(ctx, period); err != nil {
			return err
		}
	}

	d.last = target
	return nil
}

// rate returns the pulse rate for an axis whose own delta magnitude is n,
// relative to the other axis's magnitude other: at least one axis always
// returns exactly 1 (the faster axis pulses every tick).
func rate(n, other int32) float32 {
	denom := other
	if denom < 1 {
		denom = 1
	}
	r := float32(n) / float32(denom)
	if r > 1 {
		r = 1
	}
	return r
}

// pulsePeriodUS derives a per-pulse sleep duration from speed: higher
// speed means a shorter period, floored at 250us.
func pulsePeriodUS(speed float32) int64 {
	clamped := speed
	if clamped < 1 {
		clamped = 1
	}
	if clamped > 100 {
		clamped = 100
	}
	return int64((100-clamped)*100 + 250)
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
