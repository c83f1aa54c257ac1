package midiio

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"melody/cantus"
)

const (
	DefaultVelocity = 100
	DefaultHold     = 220 * time.Millisecond
	DefaultNoteGap  = 40 * time.Millisecond

	retryPitch = 48
	retryOn    = 120 * time.Millisecond
	retryOff   = 80 * time.Millisecond
)

// Output renders phrases as single notes, one after another.
type Output struct {
	send     func(midi.Message) error
	Channel  uint8
	Velocity uint8
	Hold     time.Duration
	Gap      time.Duration
}

func NewOutput(out drivers.Out) (*Output, error) {
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("send to %q: %w", out.String(), err)
	}
	return NewOutputFunc(send), nil
}

// NewOutputFunc builds an Output on an arbitrary message sink.
func NewOutputFunc(send func(midi.Message) error) *Output {
	return &Output{
		send:     send,
		Velocity: DefaultVelocity,
		Hold:     DefaultHold,
		Gap:      DefaultNoteGap,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Note plays one pitch for hold, then waits gap. The note-off is sent even
// when ctx ends during the hold.
func (o *Output) Note(ctx context.Context, pitch int, hold, gap time.Duration) error {
	key := uint8(pitch)
	if err := o.send(midi.NoteOn(o.Channel, key, o.Velocity)); err != nil {
		return fmt.Errorf("note on %d: %w", pitch, err)
	}
	holdErr := sleep(ctx, hold)
	if err := o.send(midi.NoteOff(o.Channel, key)); err != nil {
		return fmt.Errorf("note off %d: %w", pitch, err)
	}
	if holdErr != nil {
		return holdErr
	}
	return sleep(ctx, gap)
}

// Play renders every token of the phrase in the given key.
func (o *Output) Play(ctx context.Context, key cantus.KeyContext, p cantus.Phrase) error {
	for _, t := range p {
		if err := o.Note(ctx, key.PitchOfToken(t), o.Hold, o.Gap); err != nil {
			return err
		}
	}
	return nil
}

// Retry plays the two low beeps that ask the player to try again.
func (o *Output) Retry(ctx context.Context) error {
	for i := 0; i < 2; i++ {
		if err := o.Note(ctx, retryPitch, retryOn, retryOff); err != nil {
			return err
		}
	}
	return nil
}

// Chord holds several pitches together.
func (o *Output) Chord(ctx context.Context, pitches []int, hold time.Duration) error {
	for _, p := range pitches {
		if err := o.send(midi.NoteOn(o.Channel, uint8(p), o.Velocity)); err != nil {
			return fmt.Errorf("note on %d: %w", p, err)
		}
	}
	holdErr := sleep(ctx, hold)
	for _, p := range pitches {
		if err := o.send(midi.NoteOff(o.Channel, uint8(p))); err != nil {
			return fmt.Errorf("note off %d: %w", p, err)
		}
	}
	return holdErr
}

// Pause waits without sounding anything.
func (o *Output) Pause(ctx context.Context, d time.Duration) error { return sleep(ctx, d) }
