//go:build tinygo

package board

import "machine"

// NewPin configures GPIO pin pinNum as a push-pull output. machine.Pin
// already satisfies Pin (Set/High/Low), so no wrapper type is needed.
func NewPin(pinNum int) (Pin, error) {
	pin := machine.Pin(pinNum)
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return pin, nil
}
