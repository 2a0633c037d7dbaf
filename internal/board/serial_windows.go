//go:build !tinygo && windows

package board

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// Serial is a byte-oriented UART connection.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Buffered() int
	Close() error
}

// windowsSerial implements Serial over a Windows COM port.
type windowsSerial struct {
	file   *os.File
	handle windows.Handle
	config SerialConfig
}

// OpenDefaultSerial opens a COM port (e.g. "COM3") and configures it per
// config. pins is unused on this platform; accepted so callers can stay
// build-tag agnostic.
func OpenDefaultSerial(device string, pins Pins, config SerialConfig) (Serial, error) {
	return OpenSerial(device, config)
}

// OpenSerial opens a COM port (e.g. "COM3") and configures it per config
// (8N1, config.BaudRate, defaulting to 115200).
func OpenSerial(device string, config SerialConfig) (Serial, error) {
	devicePath := device
	if len(device) > 4 && device[:4] == "COM" {
		devicePath = "\\\\.\\" + device
	}

	deviceUTF16, err := windows.UTF16PtrFromString(devicePath)
	if err != nil {
		return nil, fmt.Errorf("invalid device path: %w", err)
	}

	handle, err := windows.CreateFile(
		deviceUTF16,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("open serial device %s: %w", device, err)
	}

	file := os.NewFile(uintptr(handle), device)

	dcb := &windows.DCB{}
	if err := windows.GetCommState(handle, dcb); err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("get serial state: %w", err)
	}

	baudRate := config.BaudRate
	if baudRate == 0 {
		baudRate = 115200
	}
	dcb.BaudRate = uint32(baudRate)
	dcb.ByteSize = 8
	dcb.Parity = windows.NOPARITY
	dcb.StopBits = windows.ONESTOPBIT

	if err := windows.SetCommState(handle, dcb); err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("set serial state: %w", err)
	}

	timeouts := &windows.CommTimeouts{
		ReadIntervalTimeout: 0xFFFFFFFF,
	}
	if err := windows.SetCommTimeouts(handle, timeouts); err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("set serial timeouts: %w", err)
	}

	return &windowsSerial{file: file, handle: handle, config: config}, nil
}

func (s *windowsSerial) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

func (s *windowsSerial) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

// Buffered reports bytes available in the COM port's receive queue.
// Returns 0 unless config.EnableBuffering was set.
func (s *windowsSerial) Buffered() int {
	if !s.config.EnableBuffering {
		return 0
	}
	var stat windows.ComStat
	if err := windows.ClearCommError(s.handle, nil, &stat); err != nil {
		return 0
	}
	return int(stat.InQue)
}

func (s *windowsSerial) Close() error {
	if s.handle != 0 {
		windows.CloseHandle(s.handle)
		s.handle = 0
	}
	return s.file.Close()
}
