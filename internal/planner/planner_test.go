package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/sandtable/internal/coordinate"
)

func scenarioConfig() Config {
	return Config{
		Home:            coordinate.Polar{Theta: 0, Rho: 0},
		MaxAcceleration: 1.0,
		MaxSpeed:        100,
		MinSpeed:        1,
		StepDistance:    0.1,
	}
}

func TestNextFrame_SixFrameTrajectory(t *testing.T) {
	p, err := New(scenarioConfig())
	require.NoError(t, err)

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 0.3})
	p.Enqueue(coordinate.Polar{Theta: -0.4, Rho: 0.4})
	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 0})

	want := []MotionFrame{
		{Speed: 1.0, Position: coordinate.Polar{Theta: 0, Rho: 0.1}},
		{Speed: 1.1, Position: coordinate.Polar{Theta: 0, Rho: 0.2}},
		{Speed: 1.0, Position: coordinate.Polar{Theta: 0, Rho: 0.3}},
		{Speed: 1.08, Position: coordinate.Polar{Theta: -0.133333, Rho: 0.333333}},
		{Speed: 1.08, Position: coordinate.Polar{Theta: -0.266667, Rho: 0.366667}},
		{Speed: 1.0, Position: coordinate.Polar{Theta: -0.4, Rho: 0.4}},
	}

	for i, w := range want {
		got := p.NextFrame()
		assert.InDeltaf(t, w.Speed, got.Speed, 1e-3, "frame %d speed", i)
		assert.InDeltaf(t, w.Position.Theta, got.Position.Theta, 1e-3, "frame %d theta", i)
		assert.InDeltaf(t, w.Position.Rho, got.Position.Rho, 1e-3, "frame %d rho", i)
	}
}

func TestIsQueueReady_FillsLookAheadWindow(t *testing.T) {
	p, err := New(scenarioConfig())
	require.NoError(t, err)

	assert.True(t, p.IsQueueReady())

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 0.3})
	assert.True(t, p.IsQueueReady())

	p.Enqueue(coordinate.Polar{Theta: -0.4, Rho: 0.4})
	assert.True(t, p.IsQueueReady())

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 0})
	assert.False(t, p.IsQueueReady())
}

func TestEnqueue_DuplicateOfTailIsNoop(t *testing.T) {
	p, err := New(scenarioConfig())
	require.NoError(t, err)

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 1})
	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 1})

	assert.Equal(t, 1, p.Pending())
}

func TestEnqueue_DuplicateOfHomeIsNoop(t *testing.T) {
	p, err := New(scenarioConfig())
	require.NoError(t, err)

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 0})

	assert.Equal(t, 0, p.Pending())
}

func TestNextFrame_EmptyQueueReturnsStoredFrameUnchanged(t *testing.T) {
	p, err := New(scenarioConfig())
	require.NoError(t, err)

	first := p.NextFrame()
	second := p.NextFrame()

	assert.Equal(t, first, second)
}

func TestNextFrame_SpeedStaysWithinBounds(t *testing.T) {
	cfg := DefaultConfig()
	p, err := New(cfg)
	require.NoError(t, err)

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 1})
	p.Enqueue(coordinate.Polar{Theta: 1.2, Rho: 0.2})
	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 0})

	for i := 0; i < 200; i++ {
		f := p.NextFrame()
		assert.GreaterOrEqual(t, f.Speed, cfg.MinSpeed)
		assert.LessOrEqual(t, f.Speed, cfg.MaxSpeed)
	}
}

func TestNextFrame_AbsoluteDistanceMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	p, err := New(cfg)
	require.NoError(t, err)

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 1})
	p.Enqueue(coordinate.Polar{Theta: 0.5, Rho: 0.5})

	prev := float32(0)
	for i := 0; i < 200; i++ {
		f := p.NextFrame()
		assert.GreaterOrEqual(t, f.AbsoluteDistance, prev)
		prev = f.AbsoluteDistance
	}
}

func TestNextFrame_SegmentTraversedInExactlyStepsFrames(t *testing.T) {
	p, err := New(scenarioConfig())
	require.NoError(t, err)

	p.Enqueue(coordinate.Polar{Theta: 0, Rho: 0.3})
	require.Equal(t, 1, p.Pending())
	steps := p.fifo.front().Steps

	for i := int32(0); i < steps; i++ {
		assert.Equal(t, 1, p.Pending())
		p.NextFrame()
	}
	assert.Equal(t, 0, p.Pending())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAcceleration = 0
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.StepDistance = -1
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.MinSpeed = cfg.MaxSpeed + 1
	_, err = New(cfg)
	assert.Error(t, err)
}
