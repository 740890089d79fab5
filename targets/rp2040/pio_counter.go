//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"rollclock/core"
)

// counterProgram decrements X every third cycle and pushes its complement,
// so each RX FIFO word is an up-count at a third of the state machine clock.
//
//	.wrap_target
//	0: jmp x--, 1
//	1: mov isr, ~x
//	2: push noblock
//	.wrap
func counterProgram() []uint16 {
	return []uint16{
		rp2pio.EncodeJmp(1, rp2pio.JmpXNZeroDec),
		rp2pio.EncodeMovNot(rp2pio.SrcDestISR, rp2pio.SrcDestX),
		rp2pio.EncodePush(false, false),
	}
}

const (
	counterPIOOrigin     = -1 // Relocatable, AddProgram patches the jmp
	counterCyclesPerTick = 3
)

// PIOCounter runs a free-running 32-bit counter on a PIO state machine,
// leaving the TIMER peripheral's alarms to TinyGo's runtime.
type PIOCounter struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	offset uint8
	whole  uint16
	frac   uint8
}

// NewPIOCounter claims a state machine on block and loads the counter
// program. The counter does not run until Start.
func NewPIOCounter(block *rp2pio.PIO) (*PIOCounter, error) {
	whole, frac, err := rp2pio.ClkDivFromFrequency(core.GlobalTimerRate*counterCyclesPerTick, machine.CPUFrequency())
	if err != nil {
		return nil, err
	}

	sm, err := block.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	offset, err := block.AddProgram(counterProgram(), counterPIOOrigin)
	if err != nil {
		sm.Unclaim()
		return nil, err
	}

	return &PIOCounter{
		pio:    block,
		sm:     sm,
		offset: offset,
		whole:  whole,
		frac:   frac,
	}, nil
}

// Start configures the state machine and starts counting from 0
func (c *PIOCounter) Start() {
	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetWrap(c.offset, c.offset+uint8(len(counterProgram()))-1)
	cfg.SetClkDivIntFrac(c.whole, c.frac)

	c.sm.Init(c.offset, cfg)
	c.sm.SetX(0)
	c.sm.SetEnabled(true)
}

// Capture drops the stale FIFO contents and waits for the next push, at
// most one tick away.
func (c *PIOCounter) Capture() uint32 {
	c.sm.ClearFIFOs()
	for c.sm.IsRxFIFOEmpty() {
	}
	return c.sm.RxGet()
}

// Clear restarts the count at 0
func (c *PIOCounter) Clear() {
	c.sm.SetEnabled(false)
	c.sm.Restart()
	c.sm.SetX(0)
	c.sm.Exec(rp2pio.EncodeJmp(c.offset, rp2pio.JmpAlways))
	c.sm.ClearFIFOs()
	c.sm.SetEnabled(true)
}
