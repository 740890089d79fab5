// Package remote turns the tick reports a device streams over a serial port
// into a host-side rolling timer.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"rollclock/core"
	"rollclock/protocol"
)

// Timer is a RollingTimer whose ticks are the last value reported by a
// device. It reads 0 until the first report arrives.
//
// The device counter wraps on its own schedule; elapsed-time arithmetic on
// reported ticks has the same one-wrap limit as on the device.
type Timer struct {
	port        io.ReadCloser
	readTimeout time.Duration

	// report holds rate<<32 | ticks so both change together
	report      atomic.Uint64
	initialized atomic.Bool

	reports     atomic.Uint64
	frameErrors atomic.Uint64

	// OnReport, if set before Run, is called from the reader goroutine for
	// every decoded report.
	OnReport func(protocol.TickReport)

	// OnFrameError, if set before Run, is called for every corrupt block
	OnFrameError func(error)
}

var _ core.RollingTimer[uint32] = (*Timer)(nil)

// ErrHangup is returned by Run when the port keeps reporting end of stream
// without waiting for its read timeout, as a tty does after the device is
// unplugged.
var ErrHangup = fmt.Errorf("port hung up: %w", io.ErrClosedPipe)

// maxImmediateEOFs is how many end-of-stream reads in a row, each returning
// well before the read timeout, make a hangup
const maxImmediateEOFs = 3

// New creates a timer reading reports from port. readTimeout is the timeout
// the port was opened with; 0 means reads block until data arrives, so any
// end of stream is a hangup. Call Run to start reading.
func New(port io.ReadCloser, readTimeout time.Duration) *Timer {
	return &Timer{port: port, readTimeout: readTimeout}
}

// TicksPerSecond returns the reported device rate, or 1 before the first
// report so conversions never divide by zero.
func (t *Timer) TicksPerSecond() uint32 {
	if rate := uint32(t.report.Load() >> 32); rate != 0 {
		return rate
	}
	return 1
}

// GetTicks returns the last reported device tick, or 0 before the first
// report
func (t *Timer) GetTicks() uint32 {
	return uint32(t.report.Load())
}

// IsInitialized reports whether a report has been received
func (t *Timer) IsInitialized() bool {
	return t.initialized.Load()
}

// Reports returns how many reports have been decoded
func (t *Timer) Reports() uint64 {
	return t.reports.Load()
}

// FrameErrors returns how many corrupt blocks were dropped
func (t *Timer) FrameErrors() uint64 {
	return t.frameErrors.Load()
}

// MillisSince returns the device milliseconds elapsed since ref
func (t *Timer) MillisSince(ref uint32) uint64 {
	return core.MillisSince[uint32](t, ref)
}

// Run reads reports until ctx is cancelled or the port fails. Read
// timeouts on the port (io.EOF) are not failures. Cancelling ctx closes
// the port to unblock the reader and is not reported as an error.
func (t *Timer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		return t.readLoop(gctx)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return t.Close()
		case <-done:
			return nil
		}
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (t *Timer) readLoop(ctx context.Context) error {
	fr := protocol.NewFrameReader(t.port)
	immediateEOFs := 0
	for {
		start := time.Now()
		report, err := fr.Next()
		isEOF := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if !isEOF {
			immediateEOFs = 0
		}

		switch {
		case err == nil:
			t.publish(report)
		case protocol.IsFrameError(err):
			if t.OnFrameError != nil {
				t.OnFrameError(err)
			}
			t.frameErrors.Add(1)
		case isEOF:
			// A read timeout takes readTimeout; a hung up tty returns at once
			if time.Since(start) < t.readTimeout/2 {
				immediateEOFs++
			} else {
				immediateEOFs = 0
			}
			if t.readTimeout == 0 || immediateEOFs >= maxImmediateEOFs {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("reading tick reports: %w", ErrHangup)
			}
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading tick reports: %w", err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (t *Timer) publish(r protocol.TickReport) {
	if t.OnReport != nil {
		t.OnReport(r)
	}
	t.report.Store(uint64(r.Rate)<<32 | uint64(r.Ticks))
	t.initialized.Store(true)
	t.reports.Add(1)
}

// Close closes the port. Closing an already closed port is not an error.
func (t *Timer) Close() error {
	if err := t.port.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("closing port: %w", err)
	}
	return nil
}
