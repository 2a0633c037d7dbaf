// Package coordinate implements the polar coordinate arithmetic the motion
// planner and kinematics mapping build on: a point is an angle (theta, in
// radians, unbounded) and a normalized radius (rho, in [0, 1]).
package coordinate

import "github.com/chewxy/math32"

// Polar is a target point on the sand table expressed in polar form.
type Polar struct {
	Theta float32
	Rho   float32
}

// Equal reports whether a and b are the same point.
func (a Polar) Equal(b Polar) bool {
	return a.Theta == b.Theta && a.Rho == b.Rho
}

// Scale returns a scaled component-wise by c.
func (a Polar) Scale(c float32) Polar {
	return Polar{Theta: a.Theta * c, Rho: a.Rho * c}
}

// Add returns the component-wise sum of a and b.
func (a Polar) Add(b Polar) Polar {
	return Polar{Theta: a.Theta + b.Theta, Rho: a.Rho + b.Rho}
}

// Sub returns the component-wise difference a - b.
func (a Polar) Sub(b Polar) Polar {
	return Polar{Theta: a.Theta - b.Theta, Rho: a.Rho - b.Rho}
}

// Sign returns the per-component sign of a: -1, 0, or +1. Zero maps to zero,
// not either signed value, so that two stationary components compare equal
// when direction-change detection runs over a FIFO of checkpoints.
func (a Polar) Sign() Polar {
	return Polar{Theta: signum(a.Theta), Rho: signum(a.Rho)}
}

func signum(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Distance approximates the arc length traveled moving from a to b on a
// disk, where angular travel near the center (small rho) is cheap:
//
//	distance(a, b) = |Δθ| * ((a.rho+b.rho)/2) + |Δρ|
func Distance(a, b Polar) float32 {
	dTheta := math32.Abs(b.Theta - a.Theta)
	dRho := math32.Abs(b.Rho - a.Rho)
	return dTheta*((a.Rho+b.Rho)/2) + dRho
}
