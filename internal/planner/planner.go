// Package planner implements the look-ahead motion planner: a FIFO of
// queued polar checkpoints is consumed one interpolated step at a time,
// producing a stream of motion frames that accelerate into each segment,
// decelerate ahead of direction reversals, and never drop below the
// configured minimum speed.
package planner

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/itohio/sandtable/internal/coordinate"
)

// Checkpoint is a queued target point together with the segment geometry
// needed to interpolate through it one step at a time.
type Checkpoint struct {
	Position         coordinate.Polar
	Vector           coordinate.Polar
	AbsoluteDistance float32
	Steps            int32
	StepSize         float32
}

// MotionFrame is a single emitted trajectory sample.
type MotionFrame struct {
	Position         coordinate.Polar
	Speed            float32
	RelativeDistance float32
	AbsoluteDistance float32
}

// Config is the planner's immutable construction-time configuration.
type Config struct {
	Home            coordinate.Polar
	MaxAcceleration float32
	MaxSpeed        float32
	MinSpeed        float32
	StepDistance    float32
}

// DefaultConfig returns the defaults described in spec.md §6.
func DefaultConfig() Config {
	return Config{
		Home:            coordinate.Polar{Theta: 0, Rho: 0},
		MaxAcceleration: 500,
		MaxSpeed:        20,
		MinSpeed:        1,
		StepDistance:    0.02,
	}
}

func (c Config) validate() error {
	if c.MaxAcceleration <= 0 {
		return errors.New("planner: max_acceleration must be > 0")
	}
	if c.StepDistance <= 0 {
		return errors.New("planner: step_distance must be > 0")
	}
	if c.MinSpeed > c.MaxSpeed {
		return fmt.Errorf("planner: min_speed %v exceeds max_speed %v", c.MinSpeed, c.MaxSpeed)
	}
	return nil
}

// Planner owns a FIFO of checkpoints and the last emitted motion frame.
// It is not safe for concurrent use; the intended owner is a single worker
// task that both enqueues targets and pulls frames.
type Planner struct {
	cfg Config

	fifo checkpointQueue

	lastPosition         coordinate.Polar
	lastAbsoluteDistance float32

	initialized bool
	frame       MotionFrame
}

// New validates cfg and returns an empty planner seeded at cfg.Home.
func New(cfg Config) (*Planner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg, lastPosition: cfg.Home}, nil
}

// Enqueue appends a checkpoint for position, unless it equals the most
// recently enqueued position (or home, before anything has been enqueued),
// in which case it is silently dropped.
func (p *Planner) Enqueue(position coordinate.Polar) {
	if position.Equal(p.lastPosition) {
		return
	}

	distance := coordinate.Distance(p.lastPosition, position)
	steps := int32(math32.Ceil(distance / p.cfg.StepDistance))
	if steps < 1 {
		steps = 1
	}
	absDist := p.lastAbsoluteDistance + distance

	cp := Checkpoint{
		Position:         position,
		Vector:           position.Sub(p.lastPosition),
		AbsoluteDistance: absDist,
		Steps:            steps,
		StepSize:         distance / float32(steps),
	}

	p.fifo.push(cp)
	p.lastPosition = position
	p.lastAbsoluteDistance = absDist
}

// Pending returns the number of checkpoints waiting in the FIFO.
func (p *Planner) Pending() int {
	return p.fifo.len()
}

// IsQueueReady reports whether the look-ahead window still has slack to
// accept another checkpoint without the planner being forced to decelerate
// before it can make use of it.
func (p *Planner) IsQueueReady() bool {
	if p.fifo.empty() {
		return true
	}
	tail := p.fifo.back()
	slack := tail.AbsoluteDistance - p.nextSlowdownDistance()
	return slack < 0.5
}

// NextFrame emits the next planned motion state. It is idempotent on an
// empty queue: the stored frame is returned unchanged.
func (p *Planner) NextFrame() MotionFrame {
	if !p.initialized {
		p.frame = MotionFrame{Position: p.cfg.Home}
		p.initialized = true
	}
	if p.fifo.empty() {
		return p.frame
	}

	cp := p.fifo.front()

	slowdown := p.nextSlowdownDistance()
	accelDir := float32(-1)
	if slowdown > p.frame.AbsoluteDistance {
		accelDir = 1
	}
	slowdownRemaining := slowdown - p.frame.AbsoluteDistance

	newSpeed := p.frame.Speed + p.cfg.MaxAcceleration*accelDir*cp.StepSize
	if slowdownRemaining > 0 && slowdownRemaining < cp.StepSize {
		newSpeed = p.frame.Speed
	}
	newSpeed = clamp(newSpeed, p.cfg.MinSpeed, p.cfg.MaxSpeed)

	newPosition := p.frame.Position.Add(cp.Vector.Scale(1 / float32(cp.Steps)))

	newFrame := MotionFrame{
		Position:         newPosition,
		Speed:            newSpeed,
		RelativeDistance: cp.StepSize,
		AbsoluteDistance: p.frame.AbsoluteDistance + cp.StepSize,
	}

	if newFrame.AbsoluteDistance >= cp.AbsoluteDistance {
		p.fifo.popFront()
	}

	p.frame = newFrame
	return newFrame
}

// nextStopDistance scans the FIFO from the front and returns the absolute
// distance of the last checkpoint before the path's direction changes (or
// the distance of the tail, if it never does). The planner decelerates to
// min speed exactly at this point.
func (p *Planner) nextStopDistance() float32 {
	if p.fifo.empty() {
		return p.frame.AbsoluteDistance
	}
	startDir := p.fifo.front().Vector.Sign()
	last := p.fifo.front()
	for _, cp := range p.fifo.rest() {
		if !cp.Vector.Sign().Equal(startDir) {
			break
		}
		last = cp
	}
	return last.AbsoluteDistance
}

// nextSlowdownDistance is the point at which braking must begin to reach
// min speed exactly at nextStopDistance.
func (p *Planner) nextSlowdownDistance() float32 {
	return p.nextStopDistance() - (p.currentSpeed()/p.cfg.MaxAcceleration)*p.cfg.StepDistance
}

func (p *Planner) currentSpeed() float32 {
	if !p.initialized {
		return 0
	}
	return p.frame.Speed
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
