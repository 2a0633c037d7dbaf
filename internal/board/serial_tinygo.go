//go:build tinygo

package board

import "machine"

// Serial is a byte-oriented UART connection. machine.UART already
// satisfies it directly.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Buffered() int
}

// OpenDefaultSerial configures the board's UART0 at config.BaudRate (8N1)
// on the RX/TX pins named in pins. device is unused on this platform; it
// is accepted so callers can stay build-tag agnostic.
func OpenDefaultSerial(device string, pins Pins, config SerialConfig) (Serial, error) {
	baudRate := uint32(config.BaudRate)
	if baudRate == 0 {
		baudRate = 115200
	}
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: baudRate,
		RX:       machine.Pin(pins.UARTRx),
		TX:       machine.Pin(pins.UARTTx),
	})
	return uart, nil
}
