package midiio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/goleak"

	"melody/cantus"
	"melody/capture"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		msg  midi.Message
		want capture.Event
		ok   bool
	}{
		{"note on", midi.NoteOn(0, 64, 90), capture.Event{Kind: capture.NoteOn, Pitch: 64, Velocity: 90}, true},
		{"note off", midi.NoteOff(0, 64), capture.Event{Kind: capture.NoteOff, Pitch: 64}, true},
		{"zero velocity is note off", midi.NoteOn(0, 64, 0), capture.Event{Kind: capture.NoteOff, Pitch: 64}, true},
		{"sustain down", midi.ControlChange(0, 64, 127), capture.Event{Kind: capture.Sustain, Value: 127}, true},
		{"other controller", midi.ControlChange(0, 1, 20), capture.Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickPort(t *testing.T) {
	names := []string{"Midi Through Port-0", "CASIO USB-MIDI:0", "FluidSynth"}
	idx, ok := PickPort(names, "usb-midi", false)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = PickPort(names, "nope", false)
	require.True(t, ok)
	assert.Equal(t, 0, idx, "inputs fall back to the first port")

	idx, ok = PickPort(names, "nope", true)
	require.True(t, ok)
	assert.Equal(t, 2, idx, "outputs fall back to the last port")

	_, ok = PickPort(nil, "usb-midi", true)
	assert.False(t, ok)
}

type recorder struct {
	msgs []midi.Message
}

func (r *recorder) send(m midi.Message) error {
	r.msgs = append(r.msgs, m)
	return nil
}

func (r *recorder) noteOns() []int {
	var out []int
	for _, m := range r.msgs {
		var ch, key, vel uint8
		if m.GetNoteStart(&ch, &key, &vel) {
			out = append(out, int(key))
		}
	}
	return out
}

func fastOutput(r *recorder) *Output {
	o := NewOutputFunc(r.send)
	o.Hold = time.Millisecond
	o.Gap = 0
	return o
}

func TestPlayRendersAlterations(t *testing.T) {
	r := &recorder{}
	o := fastOutput(r)
	err := o.Play(context.Background(), cantus.DefaultKey(), cantus.EncodeCastling(cantus.Black, cantus.Queenside))
	require.NoError(t, err)
	assert.Equal(t, []int{72, 66, 67, 65, 64}, r.noteOns())
	assert.Len(t, r.msgs, 10, "every note-on is paired with a note-off")
}

func TestRetryEarcon(t *testing.T) {
	r := &recorder{}
	o := fastOutput(r)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, o.Retry(ctx))
	assert.Equal(t, []int{48, 48}, r.noteOns())
}

func TestNoteOffSentOnCancel(t *testing.T) {
	r := &recorder{}
	o := NewOutputFunc(r.send)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := o.Note(ctx, 60, time.Second, 0)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, r.msgs, 2)
	var ch, key uint8
	assert.True(t, r.msgs[1].GetNoteEnd(&ch, &key))
}

func TestChord(t *testing.T) {
	r := &recorder{}
	o := NewOutputFunc(r.send)
	require.NoError(t, o.Chord(context.Background(), []int{60, 64, 67}, time.Millisecond))
	assert.Equal(t, []int{60, 64, 67}, r.noteOns())
	assert.Len(t, r.msgs, 6)
}
