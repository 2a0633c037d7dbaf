//go:build !tinygo && !linux

package board

// stubPin drives no hardware; it exists so the firmware's wiring code links
// and runs on platforms with no real GPIO (host development, CI).
type stubPin struct {
	state bool
}

// NewPin returns a stub Pin that remembers the last value written to it
// but drives no hardware.
func NewPin(pinNum int) (Pin, error) {
	return &stubPin{}, nil
}

func (p *stubPin) Set(value bool) { p.state = value }
func (p *stubPin) High()          { p.state = true }
func (p *stubPin) Low()           { p.state = false }
