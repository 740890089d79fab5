//go:build rp2040

package main

import (
	"machine"
)

// InitUSB configures machine.Serial, which is USB CDC-ACM on the RP2040.
// The USB descriptors are set by TinyGo's runtime.
func InitUSB() error {
	return machine.Serial.Configure(machine.UARTConfig{})
}

// usbWriter sends tick reports over USB CDC
type usbWriter struct{}

func (usbWriter) Write(data []byte) (int, error) {
	return machine.Serial.Write(data)
}
