package coordinate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceSymmetric(t *testing.T) {
	a := Polar{Theta: 0, Rho: 0.3}
	b := Polar{Theta: -0.4, Rho: 0.4}

	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
}

func TestSignZeroComponent(t *testing.T) {
	v := Polar{Theta: 0, Rho: -0.2}
	s := v.Sign()

	assert.Equal(t, float32(0), s.Theta)
	assert.Equal(t, float32(-1), s.Rho)
}

func TestSignIdempotent(t *testing.T) {
	tests := []Polar{
		{Theta: 1, Rho: -1},
		{Theta: 0, Rho: 0},
		{Theta: -3, Rho: 2},
	}
	for _, v := range tests {
		s := v.Sign()
		assert.Equal(t, s, s.Sign())
	}
}

func TestSubAddRoundTrip(t *testing.T) {
	a := Polar{Theta: 1.5, Rho: 0.7}
	b := Polar{Theta: -0.3, Rho: 0.1}

	assert.Equal(t, a, a.Sub(b).Add(b))
}

func TestDistanceZeroForEqualPoints(t *testing.T) {
	a := Polar{Theta: 0.25, Rho: 0.5}
	assert.Equal(t, float32(0), Distance(a, a))
}
