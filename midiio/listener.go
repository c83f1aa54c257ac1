package midiio

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"

	"melody/capture"
)

const sustainController = 64

// Translate converts a raw MIDI message into a capture event.
func Translate(msg midi.Message) (capture.Event, bool) {
	var ch, key, vel, ctl, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return capture.Event{Kind: capture.NoteOn, Pitch: int(key), Velocity: int(vel)}, true
	case msg.GetNoteEnd(&ch, &key):
		return capture.Event{Kind: capture.NoteOff, Pitch: int(key)}, true
	case msg.GetControlChange(&ch, &ctl, &val):
		if ctl == sustainController {
			return capture.Event{Kind: capture.Sustain, Value: int(val)}, true
		}
	}
	return capture.Event{}, false
}

// Listen feeds the port's note and pedal events into q from the driver's
// callback goroutine. The returned stop function ends the listener.
func Listen(in drivers.In, q *capture.Queue, logger *zap.Logger) (func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		ev, ok := Translate(msg)
		if !ok {
			return
		}
		if !q.Push(ev) {
			logger.Warn("input queue full, event dropped", zap.Uint64("dropped", q.Dropped()))
		}
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("MIDI listener error", zap.String("port", in.String()), zap.Error(listenErr))
	}))
	if err != nil {
		return nil, fmt.Errorf("listen on %q: %w", in.String(), err)
	}
	return stop, nil
}
