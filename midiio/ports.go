// Package midiio connects the codec to MIDI hardware through gomidi.
package midiio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"
)

const (
	DefaultPreferredPort = "usb-midi"
	openAttempts         = 3
	openRetryDelay       = 500 * time.Millisecond
)

// Driver owns the rtmidi backend for the lifetime of the process.
type Driver struct {
	drv    *rtmididrv.Driver
	logger *zap.Logger
}

func OpenDriver(logger *zap.Logger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("open rtmidi driver: %w", err)
	}
	return &Driver{drv: drv, logger: logger}, nil
}

func (d *Driver) Close() error { return d.drv.Close() }

// Ports lists input and output port names in driver order.
func (d *Driver) Ports() (ins, outs []string, err error) {
	inPorts, err := d.drv.Ins()
	if err != nil {
		return nil, nil, fmt.Errorf("list inputs: %w", err)
	}
	outPorts, err := d.drv.Outs()
	if err != nil {
		return nil, nil, fmt.Errorf("list outputs: %w", err)
	}
	for _, p := range inPorts {
		ins = append(ins, p.String())
	}
	for _, p := range outPorts {
		outs = append(outs, p.String())
	}
	return ins, outs, nil
}

// PickPort returns the index of the first name containing preferred
// (case-insensitive). Without a match it falls back to the first port, or
// the last one when fallbackLast is set.
func PickPort(names []string, preferred string, fallbackLast bool) (int, bool) {
	if len(names) == 0 {
		return -1, false
	}
	if preferred != "" {
		want := strings.ToLower(preferred)
		for i, n := range names {
			if strings.Contains(strings.ToLower(n), want) {
				return i, true
			}
		}
	}
	if fallbackLast {
		return len(names) - 1, true
	}
	return 0, true
}

// OpenIn opens the preferred input port, falling back to the first one.
func (d *Driver) OpenIn(ctx context.Context, preferred string) (drivers.In, error) {
	var port drivers.In
	err := retry(ctx, d.logger, "input", func() error {
		ins, err := d.drv.Ins()
		if err != nil {
			return err
		}
		names := make([]string, len(ins))
		for i, p := range ins {
			names[i] = p.String()
		}
		idx, ok := PickPort(names, preferred, false)
		if !ok {
			return fmt.Errorf("no MIDI input ports")
		}
		if err := ins[idx].Open(); err != nil {
			return fmt.Errorf("open input %q: %w", names[idx], err)
		}
		port = ins[idx]
		return nil
	})
	return port, err
}

// OpenOut opens the preferred output port, falling back to the last one.
func (d *Driver) OpenOut(ctx context.Context, preferred string) (drivers.Out, error) {
	var port drivers.Out
	err := retry(ctx, d.logger, "output", func() error {
		outs, err := d.drv.Outs()
		if err != nil {
			return err
		}
		names := make([]string, len(outs))
		for i, p := range outs {
			names[i] = p.String()
		}
		idx, ok := PickPort(names, preferred, true)
		if !ok {
			return fmt.Errorf("no MIDI output ports")
		}
		if err := outs[idx].Open(); err != nil {
			return fmt.Errorf("open output %q: %w", names[idx], err)
		}
		port = outs[idx]
		return nil
	})
	return port, err
}

func retry(ctx context.Context, logger *zap.Logger, what string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= openAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		logger.Warn("MIDI port open failed", zap.String("port", what), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == openAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(openRetryDelay):
		}
	}
	return fmt.Errorf("open %s port after %d attempts: %w", what, openAttempts, err)
}
