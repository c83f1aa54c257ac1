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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"melody/capture"
	"melody/engine"
	"melody/game"
	"melody/metrics"
	"melody/midiio"
	"melody/rules"
)

const droppedPollInterval = time.Second

func (a *app) playCmd() *cobra.Command {
	var (
		human      string
		boundary   string
		enginePath string
		builtin    bool
		elo        int
		moveTime   time.Duration
		fen        string
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game against the engine on the keyboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("human") {
				a.cfg.Game.Human = human
			}
			if flags.Changed("boundary") {
				a.cfg.Capture.Boundary = boundary
			}
			if flags.Changed("engine") {
				a.cfg.Engine.Path = enginePath
			}
			if flags.Changed("builtin") {
				a.cfg.Engine.Builtin = builtin
			}
			if flags.Changed("elo") {
				a.cfg.Engine.Elo = elo
			}
			if flags.Changed("movetime") {
				a.cfg.Engine.MoveTime = moveTime
			}
			if flags.Changed("fen") {
				a.cfg.Game.FEN = fen
			}
			if flags.Changed("metrics-addr") {
				a.cfg.Metrics.Addr = addr
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runPlay(cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&human, "human", "white", "Side played at the keyboard: white, black, both or none")
	f.StringVar(&boundary, "boundary", "pedal", "Phrase boundary: pedal or silence")
	f.StringVar(&enginePath, "engine", "", "Path to a UCI engine (default: $"+engine.EnvEnginePath+", tools/stockfish, PATH)")
	f.BoolVar(&builtin, "builtin", false, "Use the built-in searcher even if an external engine is found")
	f.IntVar(&elo, "elo", 1500, "Engine strength when limited")
	f.DurationVar(&moveTime, "movetime", engine.DefaultMoveTime, "Engine thinking time per move")
	f.StringVar(&fen, "fen", "", "Start from this position")
	f.StringVar(&addr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func (a *app) runPlay(stdout io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	logger := a.logger
	humans, err := game.ParseHumans(cfg.Game.Human)
	if err != nil {
		return err
	}
	boundary, err := cfg.Boundary()
	if err != nil {
		return err
	}
	pos := rules.NewPosition()
	if cfg.Game.FEN != "" {
		if pos, err = rules.FromFEN(cfg.Game.FEN); err != nil {
			return err
		}
	}

	drv, err := midiio.OpenDriver(logger)
	if err != nil {
		return err
	}
	defer drv.Close()
	in, err := drv.OpenIn(ctx, a.inputPreference())
	if err != nil {
		return err
	}
	out, err := drv.OpenOut(ctx, a.outputPreference())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "MIDI in:  %s\nMIDI out: %s\n", in, out)

	output, err := a.newOutput(out)
	if err != nil {
		return err
	}
	queue := capture.NewQueue(cfg.Capture.QueueSize)
	stopListening, err := midiio.Listen(in, queue, logger)
	if err != nil {
		return err
	}
	defer stopListening()

	searcher, closeEngine, err := a.openSearcher(ctx)
	if err != nil {
		return err
	}
	defer closeEngine()

	rec, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	seg := capture.NewSegmenter(cfg.KeyContext(), queue, boundary, logger)
	seg.PollInterval = cfg.Capture.PollInterval
	player := &game.Player{
		Key:      cfg.KeyContext(),
		Input:    seg,
		Output:   output,
		Searcher: searcher,
		MoveTime: cfg.Engine.MoveTime,
		Drain:    queue.Drain,
		Boundary: boundary.String(),
		Logger:   logger,
		Metrics:  rec,
		Console:  stdout,
	}
	session := game.NewSession(pos, player, humans, logger)
	session.Console = stdout
	printHelpBanner(stdout)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		_, err := session.Run(gctx)
		return err
	})
	g.Go(func() error {
		return watchDropped(gctx, queue, rec)
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return rec.Serve(gctx, cfg.Metrics.Addr, logger)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		fmt.Fprintln(stdout, "\nInterrupted. Exiting...")
		return nil
	}
	return err
}

// watchDropped reports input lost to a full queue.
func watchDropped(ctx context.Context, q *capture.Queue, rec *metrics.Recorder) error {
	ticker := time.NewTicker(droppedPollInterval)
	defer ticker.Stop()
	var seen uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n := q.Dropped()
			rec.Dropped(n - seen)
			seen = n
		}
	}
}

func (a *app) inputPreference() string {
	if a.cfg.MIDI.InputPort != "" {
		return a.cfg.MIDI.InputPort
	}
	return a.cfg.MIDI.PreferredPort
}

func (a *app) outputPreference() string {
	if a.cfg.MIDI.OutputPort != "" {
		return a.cfg.MIDI.OutputPort
	}
	return a.cfg.MIDI.PreferredPort
}

func (a *app) newOutput(out drivers.Out) (*midiio.Output, error) {
	output, err := midiio.NewOutput(out)
	if err != nil {
		return nil, err
	}
	output.Channel = uint8(a.cfg.MIDI.Channel)
	output.Velocity = uint8(a.cfg.MIDI.Velocity)
	if a.cfg.MIDI.NoteHold > 0 {
		output.Hold = a.cfg.MIDI.NoteHold
	}
	if a.cfg.MIDI.NoteGap >= 0 {
		output.Gap = a.cfg.MIDI.NoteGap
	}
	return output, nil
}

// openSearcher prefers an external UCI engine and falls back to the
// built-in searcher. An explicitly configured engine that fails to start is
// an error.
func (a *app) openSearcher(ctx context.Context) (engine.MoveSearcher, func(), error) {
	cfg := a.cfg.Engine
	if !cfg.Builtin {
		if path := engine.FindEngine(cfg.Path); path != "" {
			opts := engine.UCIOptions{
				LimitStrength: cfg.LimitStrength,
				Elo:           cfg.Elo,
				HashMB:        cfg.HashMB,
			}
			client, err := engine.StartUCI(ctx, path, opts, a.logger)
			if err == nil {
				a.logger.Info("using external engine", zap.String("path", path), zap.String("strength", opts.Describe()))
				return client, func() { _ = client.Close() }, nil
			}
			if cfg.Path != "" {
				return nil, nil, err
			}
			a.logger.Warn("external engine unavailable", zap.String("path", path), zap.Error(err))
		}
	}
	a.logger.Info("using built-in searcher")
	s := engine.NewSearcher(engine.WithLogger(a.logger), engine.WithHashSize(cfg.HashMB))
	return s, func() {}, nil
}

func printHelpBanner(w io.Writer) {
	fmt.Fprint(w, `
=== How to play ===
Phrase boundary: hold the sustain pedal while playing a phrase and
release it to end the phrase (or pause, with --boundary silence).

A normal move is two phrases: the start square, then the landing square.
White phrases open on 1 (the tonic), Black phrases on 8 (the octave).
  White e2 = 1 5 2        Black e7 = 8 5 7
  Landing short form: anchor and file, d4 = 1 4

Edge files:
  White a-file: 1 7 1 <rank>    White h-file: 1 8 <rank>
  Black h-file: 8 2 8 <rank>    Black a-file: 8 1 <rank>

Castling: anchor #4 5, then run up for O-O or down for O-O-O.

Promotion: a third phrase after a pawn reaches the last rank.
  Cue: anchor b2, then the tetrachord up to the piece:
  1 = rook, b2 = knight, b3 = bishop, 3 = queen
==================
`)
}
