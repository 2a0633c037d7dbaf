// Package kinematics maps a polar target (theta, rho) to the absolute
// step counts of the two pulley motors driving the arm. It is a pure
// function with no state: the same input always yields the same output,
// and invalid rho is not reported as an error (see Steps).
package kinematics

import "github.com/chewxy/math32"

// Config describes the mechanical reduction between a motor shaft and its
// pulley, and the driver's microstepping factor. It is immutable once
// built.
type Config struct {
	MainPulleyTeeth  float32
	MotorPulleyTeeth float32
	DegPerStep       float32
	Microsteps       float32
}

// DefaultConfig returns the reduction described in spec.md §6: a 90/16
// tooth ratio, a 1.8° motor step, and 16x microstepping.
func DefaultConfig() Config {
	return Config{
		MainPulleyTeeth:  90,
		MotorPulleyTeeth: 16,
		DegPerStep:       1.8,
		Microsteps:       16,
	}
}

// StepsPerDegree returns the number of microsteps needed to rotate the main
// pulley by one degree.
func (c Config) StepsPerDegree() float32 {
	return c.Microsteps * c.MainPulleyTeeth / c.MotorPulleyTeeth / c.DegPerStep
}

// StepPosition is an absolute target position for both motors, in
// microsteps. Secondary is measured relative to Primary, since the
// secondary motor's shaft is mechanically coupled on top of the primary's.
type StepPosition struct {
	Primary   int32
	Secondary int32
}

// Delta returns the component-wise difference target - s.
func (s StepPosition) Delta(target StepPosition) StepPosition {
	return StepPosition{
		Primary:   target.Primary - s.Primary,
		Secondary: target.Secondary - s.Secondary,
	}
}

// Magnitude returns |Primary| + |Secondary|.
func (s StepPosition) Magnitude() int32 {
	return absInt32(s.Primary) + absInt32(s.Secondary)
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Steps converts a polar target into absolute motor step counts.
//
// rho must be in [0, 1]; callers are responsible for rejecting out-of-range
// values upstream. Out-of-range rho makes acos return NaN, and that NaN is
// then converted to int32, whose result Go leaves implementation-specific;
// no error is returned (spec.md §7: kinematic domain errors are caller
// responsibility on this single-user device).
func Steps(cfg Config, theta, rho float32) StepPosition {
	stepsPerDeg := cfg.StepsPerDegree()

	thetaDeg := -degrees(theta)

	// Law of cosines for two equal-length links with combined reach
	// normalized to rho in [0, 1]: rho=1 is a straight arm (elbow angle
	// 0), rho=0 is fully folded (elbow angle 180).
	secondaryDeg := 180 - degrees(math32.Acos((0.5-rho*rho)*2))

	primaryDeg := thetaDeg - secondaryDeg/2

	primarySteps := round(primaryDeg * stepsPerDeg)
	secondarySteps := round(secondaryDeg*stepsPerDeg) + primarySteps

	return StepPosition{Primary: primarySteps, Secondary: secondarySteps}
}

func degrees(rad float32) float32 {
	return rad * (180 / math32.Pi)
}

func round(v float32) int32 {
	return int32(math32.Round(v))
}
