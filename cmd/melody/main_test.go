package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"melody/cantus"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPhraseCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"phrase", "e2"}, "degrees: 1 5 2\npitches: 60 67 62\n"},
		{[]string{"phrase", "e7", "--side", "black"}, "degrees: 8 5 7\npitches: 72 67 71\n"},
		{[]string{"phrase", "O-O-O", "--side", "black"}, "degrees: 8 #4 5 4 3\npitches: 72 66 67 65 64\n"},
		{[]string{"phrase", "knight"}, "degrees: 1 b2 1 b2\npitches: 60 61 60 61\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPhraseCommandRejectsUnknownTarget(t *testing.T) {
	_, err := execute(t, "", "phrase", "z9")
	assert.Error(t, err)
}

func TestDecodeCommand(t *testing.T) {
	out, err := execute(t, "", "decode", "1", "5", "2")
	require.NoError(t, err)
	assert.Equal(t, "white square e2 (generic)\n", out)

	out, err = execute(t, "", "decode", "1", "4", "--short", "--side", "white")
	require.NoError(t, err)
	assert.Equal(t, "d4\n", out)

	out, err = execute(t, "", "decode", "8", "#4", "5", "4", "--side", "black")
	require.NoError(t, err)
	assert.Equal(t, "O-O-O\n", out)

	_, err = execute(t, "", "decode", "1", "4", "--side", "white")
	assert.True(t, errors.Is(err, cantus.ErrNoMatch))
}

func TestDescribePhrase(t *testing.T) {
	assert.Equal(t, []string{"white square a1 (edge-mordent)"}, describePhrase(cantus.Degrees(1, 7, 1, 1), false))
	assert.Equal(t, []string{"black square a3 (octave-flip)"}, describePhrase(cantus.Degrees(8, 1, 3), false))
	assert.Equal(t, []string{"castling O-O", "white square d5 (generic)"},
		describePhrase(cantus.Phrase{cantus.T(1), cantus.Sharp(4), cantus.T(5)}, false))
	assert.Empty(t, describePhrase(cantus.Degrees(3, 4, 5), true))
}

func TestPrintPorts(t *testing.T) {
	var buf bytes.Buffer
	printPorts(&buf, []string{"Through", "USB-MIDI 1"}, nil, "usb-midi", "usb-midi")
	assert.Equal(t, "Inputs:\n   0: Through\n * 1: USB-MIDI 1\nOutputs:\n  (none)\n", buf.String())
}

type canned struct {
	phrases []cantus.Phrase
}

func (c *canned) Capture(ctx context.Context, _ int) (cantus.Phrase, error) {
	if len(c.phrases) == 0 {
		return nil, context.Canceled
	}
	p := c.phrases[0]
	c.phrases = c.phrases[1:]
	return p, nil
}

func TestMonitorPrintsCandidates(t *testing.T) {
	var buf bytes.Buffer
	src := &canned{phrases: []cantus.Phrase{cantus.Degrees(1, 5, 2), cantus.Degrees(8, 2, 8, 4)}}
	require.NoError(t, monitor(context.Background(), &buf, src))
	assert.Equal(t, "phrase: 1 5 2\n  white square e2 (generic)\nphrase: 8 2 8 4\n  black square h4 (edge-mordent)\n", buf.String())
}

func TestUCICommand(t *testing.T) {
	out, err := execute(t, "uci\nisready\nquit\n", "uci")
	require.NoError(t, err)
	assert.Contains(t, out, "uciok")
	assert.Contains(t, out, "readyok")
}

func TestBadConfigFails(t *testing.T) {
	_, err := execute(t, "", "--config", t.TempDir()+"/missing.yaml", "decode", "1", "5", "2")
	assert.Error(t, err)
}
