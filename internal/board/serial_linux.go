//go:build !tinygo && linux

package board

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Serial is a byte-oriented UART connection. Platform implementations
// live in this file (Linux termios) and serial_windows.go.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Buffered() int
	Close() error
}

// linuxSerial implements Serial over a Linux tty device configured via
// termios.
type linuxSerial struct {
	file   *os.File
	config SerialConfig
}

// OpenDefaultSerial opens device (e.g. "/dev/ttyAMA0") and configures it
// per config (8N1, config.BaudRate). pins is unused on this platform; it
// is accepted so callers can stay build-tag agnostic.
func OpenDefaultSerial(device string, pins Pins, config SerialConfig) (Serial, error) {
	return OpenSerial(device, config)
}

// OpenSerial opens device (e.g. "/dev/ttyAMA0") and configures it per
// config (8N1, config.BaudRate).
func OpenSerial(device string, config SerialConfig) (Serial, error) {
	file, err := os.OpenFile(device, os.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open serial device %s: %w (ensure user is in dialout group)", device, err)
	}

	flags, _, errno := syscall.Syscall(syscall.SYS_FCNTL, file.Fd(), syscall.F_GETFL, 0)
	if errno != 0 {
		file.Close()
		return nil, fmt.Errorf("get file flags: %v", errno)
	}
	flags &^= syscall.O_NONBLOCK
	if _, _, errno = syscall.Syscall(syscall.SYS_FCNTL, file.Fd(), syscall.F_SETFL, flags); errno != 0 {
		file.Close()
		return nil, fmt.Errorf("set blocking mode: %v", errno)
	}

	termios, err := unix.IoctlGetTermios(int(file.Fd()), unix.TCGETS)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("get termios: %w", err)
	}

	baudRate := config.BaudRate
	if baudRate == 0 {
		baudRate = 115200
	}
	if baudConst := baudRateToConstant(baudRate); baudConst != 0 {
		termios.Cflag &^= unix.CBAUD
		termios.Cflag |= baudConst
		termios.Ispeed = baudConst
		termios.Ospeed = baudConst
	} else {
		termios.Cflag &^= unix.CBAUD
		termios.Cflag |= unix.BOTHER
		termios.Ispeed = uint32(baudRate)
		termios.Ospeed = uint32(baudRate)
	}

	// 8N1: 8 data bits, no parity, one stop bit.
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	termios.Cflag |= unix.CS8
	termios.Cflag |= unix.CREAD | unix.CLOCAL

	termios.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ISIG
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(int(file.Fd()), unix.TCSETS, termios); err != nil {
		file.Close()
		return nil, fmt.Errorf("set termios: %w", err)
	}

	return &linuxSerial{file: file, config: config}, nil
}

func baudRateToConstant(baud int) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	case 460800:
		return unix.B460800
	case 921600:
		return unix.B921600
	default:
		return 0
	}
}

// Read reads from the tty via a raw syscall, since os.File.Read can
// misreport EOF on serial devices.
func (s *linuxSerial) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := syscall.Read(int(s.file.Fd()), p)
	if err != nil {
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			return 0, nil
		}
		return n, err
	}
	return n, nil
}

func (s *linuxSerial) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

// Buffered reports bytes available in the tty's receive queue. Returns 0
// unless config.EnableBuffering was set, matching devices that expect
// unbuffered, immediate reads.
func (s *linuxSerial) Buffered() int {
	if !s.config.EnableBuffering {
		return 0
	}
	const fionread = 0x541B
	var n int32
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, s.file.Fd(), fionread, uintptr(unsafe.Pointer(&n)))
	if errno != 0 {
		return 0
	}
	return int(n)
}

func (s *linuxSerial) Close() error {
	return s.file.Close()
}
