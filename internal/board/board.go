// Package board wires the dispatcher's PulseSink capability to concrete
// GPIO pins, and wraps the platform's UART into the io.Reader/Writer pair
// the serial reader/writer tasks consume. Platform-specific pin and
// serial implementations live in the build-tagged files in this package;
// this file holds the platform-agnostic wiring.
package board

import (
	"context"
	"time"

	"github.com/itohio/sandtable/internal/dispatcher"
)

// Pin is the GPIO capability the dispatcher needs: a level that can be
// driven high or low. Platform implementations are in pin_linux.go,
// pin_tinygo.go and pin_stub.go.
type Pin interface {
	Set(value bool)
	High()
	Low()
}

// SerialConfig configures a UART connection.
type SerialConfig struct {
	BaudRate        int
	EnableBuffering bool
}

// DefaultSerialConfig matches spec.md §6: 8N1 at 115200 baud.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{BaudRate: 115200}
}

// Pins is the hardware pin surface described in spec.md §6. Fields are
// exported so a host config file can override the illustrative defaults.
type Pins struct {
	UARTRx int
	UARTTx int

	PrimaryStep int
	PrimaryDir  int

	SecondaryStep int
	SecondaryDir  int

	Enable int
}

// DefaultPins returns the illustrative pin assignment from spec.md §6.
func DefaultPins() Pins {
	return Pins{
		UARTRx:        0,
		UARTTx:        1,
		PrimaryStep:   14,
		PrimaryDir:    15,
		SecondaryStep: 12,
		SecondaryDir:  13,
		Enable:        18,
	}
}

// GPIOPulseSink implements dispatcher.PulseSink over discrete step/dir
// pins per axis and one shared, active-low ENABLE line.
type GPIOPulseSink struct {
	primaryStep, primaryDir     Pin
	secondaryStep, secondaryDir Pin
	enable                      Pin
}

// NewGPIOPulseSink captures ownership of the five pins driving both
// steppers and the shared enable line.
func NewGPIOPulseSink(primaryStep, primaryDir, secondaryStep, secondaryDir, enable Pin) *GPIOPulseSink {
	return &GPIOPulseSink{
		primaryStep:   primaryStep,
		primaryDir:    primaryDir,
		secondaryStep: secondaryStep,
		secondaryDir:  secondaryDir,
		enable:        enable,
	}
}

// Pulse sets the axis's direction line, then toggles its step line once.
func (g *GPIOPulseSink) Pulse(axis dispatcher.Axis, forward bool) {
	switch axis {
	case dispatcher.AxisPrimary:
		g.primaryDir.Set(forward)
		g.primaryStep.High()
		g.primaryStep.Low()
	case dispatcher.AxisSecondary:
		g.secondaryDir.Set(forward)
		g.secondaryStep.High()
		g.secondaryStep.Low()
	}
}

// Engage drives the shared ENABLE line active (low).
func (g *GPIOPulseSink) Engage() {
	g.enable.Low()
}

// Disengage drives the shared ENABLE line inactive (high).
func (g *GPIOPulseSink) Disengage() {
	g.enable.High()
}

// SleepUS yields for at least n microseconds, or returns early with ctx's
// error if it is canceled first.
func (g *GPIOPulseSink) SleepUS(ctx context.Context, n int64) error {
	timer := time.NewTimer(time.Duration(n) * time.Microsecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
