package serial

import (
	"io"
	"time"
)

// Port is the byte stream a device streams tick reports over.
// Implementations: native serial (github.com/tarm/serial), or anything
// else satisfying io.ReadWriteCloser in tests.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// ReadTimeout bounds a single Read; 0 blocks until data arrives
	ReadTimeout time.Duration
}

// DefaultConfig returns a configuration suitable for a USB CDC device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100 * time.Millisecond,
	}
}
