package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"melody/cantus"
	"melody/capture"
	"melody/midiio"
)

var pingChord = []int{60, 64, 67}

func (a *app) portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List MIDI input and output ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drv, err := midiio.OpenDriver(a.logger)
			if err != nil {
				return err
			}
			defer drv.Close()
			ins, outs, err := drv.Ports()
			if err != nil {
				return err
			}
			printPorts(cmd.OutOrStdout(), ins, outs, a.inputPreference(), a.outputPreference())
			return nil
		},
	}
}

// printPorts marks the ports play would pick with an asterisk.
func printPorts(w io.Writer, ins, outs []string, inPref, outPref string) {
	list := func(title string, names []string, preferred string, fallbackLast bool) {
		fmt.Fprintf(w, "%s:\n", title)
		if len(names) == 0 {
			fmt.Fprintln(w, "  (none)")
			return
		}
		pick, _ := midiio.PickPort(names, preferred, fallbackLast)
		for i, n := range names {
			mark := " "
			if i == pick {
				mark = "*"
			}
			fmt.Fprintf(w, " %s %d: %s\n", mark, i, n)
		}
	}
	list("Inputs", ins, inPref, false)
	list("Outputs", outs, outPref, true)
}

func (a *app) pingCmd() *cobra.Command {
	var hold time.Duration
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Sound a C major chord on the output port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			drv, err := midiio.OpenDriver(a.logger)
			if err != nil {
				return err
			}
			defer drv.Close()
			out, err := drv.OpenOut(ctx, a.outputPreference())
			if err != nil {
				return err
			}
			output, err := a.newOutput(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sending chord to %s\n", out)
			return output.Chord(ctx, pingChord, hold)
		},
	}
	cmd.Flags().DurationVar(&hold, "hold", time.Second, "How long to hold the chord")
	return cmd
}

func (a *app) monitorCmd() *cobra.Command {
	var boundary string
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print the degree of every note and decode each phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("boundary") {
				a.cfg.Capture.Boundary = boundary
			}
			b, err := a.cfg.Boundary()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			drv, err := midiio.OpenDriver(a.logger)
			if err != nil {
				return err
			}
			defer drv.Close()
			in, err := drv.OpenIn(ctx, a.inputPreference())
			if err != nil {
				return err
			}
			queue := capture.NewQueue(a.cfg.Capture.QueueSize)
			stopListening, err := midiio.Listen(in, queue, a.logger)
			if err != nil {
				return err
			}
			defer stopListening()

			w := cmd.OutOrStdout()
			key := a.cfg.KeyContext()
			seg := capture.NewSegmenter(key, queue, b, a.logger)
			seg.PollInterval = a.cfg.Capture.PollInterval
			seg.OnNote = func(pitch int, tok cantus.Token) {
				fmt.Fprintf(w, "note %3d -> %s\n", pitch, tok)
			}
			fmt.Fprintf(w, "Listening on %s (tonic %d, %s boundary). Ctrl+C to stop.\n", in, key.Tonic, b)
			return monitor(ctx, w, seg)
		},
	}
	cmd.Flags().StringVar(&boundary, "boundary", "pedal", "Phrase boundary: pedal or silence")
	return cmd
}

type phraseCapturer interface {
	Capture(ctx context.Context, min int) (cantus.Phrase, error)
}

func monitor(ctx context.Context, w io.Writer, src phraseCapturer) error {
	for {
		p, err := src.Capture(ctx, 1)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "phrase: %s\n", p)
		for _, line := range describePhrase(p, true) {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
