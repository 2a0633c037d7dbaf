//go:build !tinygo && linux

package board

import (
	"fmt"
	"os"
)

// sysfsPin implements Pin using Linux sysfs GPIO. It assumes the pin has
// already been exported (e.g. echo 18 > /sys/class/gpio/export).
type sysfsPin struct {
	pinNum int
	value  *os.File
}

// NewPin opens the sysfs value file for GPIO pin pinNum.
func NewPin(pinNum int) (Pin, error) {
	valuePath := fmt.Sprintf("/sys/class/gpio/gpio%d/value", pinNum)
	value, err := os.OpenFile(valuePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open gpio pin %d: %w (ensure pin is exported)", pinNum, err)
	}
	return &sysfsPin{pinNum: pinNum, value: value}, nil
}

func (p *sysfsPin) Set(value bool) {
	b := byte('0')
	if value {
		b = '1'
	}
	p.value.WriteAt([]byte{b}, 0)
}

func (p *sysfsPin) High() {
	p.value.WriteAt([]byte{'1'}, 0)
}

func (p *sysfsPin) Low() {
	p.value.WriteAt([]byte{'0'}, 0)
}

// Close releases the underlying sysfs file.
func (p *sysfsPin) Close() error {
	return p.value.Close()
}
