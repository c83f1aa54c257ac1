package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"melody/cantus"
	"melody/engine"
	"melody/midiio"
)

// encodeTarget turns a square, O-O, O-O-O or a promotion piece into its phrase.
func encodeTarget(target string, side cantus.Side) (cantus.Phrase, error) {
	switch strings.ToUpper(target) {
	case "O-O", "0-0":
		return cantus.EncodeCastling(side, cantus.Kingside), nil
	case "O-O-O", "0-0-0":
		return cantus.EncodeCastling(side, cantus.Queenside), nil
	}
	if sq, err := cantus.ParseSquare(strings.ToLower(target)); err == nil {
		return cantus.EncodeSquare(sq, side), nil
	}
	if piece, err := cantus.ParsePromotionPiece(strings.ToLower(target)); err == nil {
		return cantus.EncodePromotion(piece, side), nil
	}
	return nil, fmt.Errorf("%q is not a square, castling or promotion piece", target)
}

// describePhrase lists every reading of p, for either side.
func describePhrase(p cantus.Phrase, shortFormOK bool) []string {
	var out []string
	if cs, ok := cantus.DetectCastling(p); ok {
		out = append(out, "castling "+cs.String())
	}
	if piece, ok := cantus.DecodePromotion(p); ok {
		out = append(out, "promotion "+piece.String())
	}
	for _, side := range []cantus.Side{cantus.White, cantus.Black} {
		if sq, ok := cantus.DecodeSquare(p, side, shortFormOK); ok {
			out = append(out, fmt.Sprintf("%s square %s (%s)", side, sq, cantus.SquareRule(p, side)))
		}
	}
	return out
}

func (a *app) phraseCmd() *cobra.Command {
	var (
		sideName string
		play     bool
	)
	cmd := &cobra.Command{
		Use:   "phrase <square|O-O|O-O-O|piece>",
		Short: "Show the phrase that names a square, castling or promotion",
		Example: `  melody phrase e4
  melody phrase O-O-O --side black
  melody phrase knight --play`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := cantus.ParseSide(sideName)
			if err != nil {
				return err
			}
			p, err := encodeTarget(args[0], side)
			if err != nil {
				return err
			}
			key := a.cfg.KeyContext()
			printPhrase(cmd.OutOrStdout(), key, p)
			if !play {
				return nil
			}
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
			return output.Play(ctx, key, p)
		},
	}
	cmd.Flags().StringVarP(&sideName, "side", "s", "white", "Side the phrase speaks for")
	cmd.Flags().BoolVar(&play, "play", false, "Play the phrase on the output port")
	return cmd
}

func printPhrase(w io.Writer, key cantus.KeyContext, p cantus.Phrase) {
	pitches := make([]string, len(p))
	for i, t := range p {
		pitches[i] = fmt.Sprint(key.PitchOfToken(t))
	}
	fmt.Fprintf(w, "degrees: %s\npitches: %s\n", p, strings.Join(pitches, " "))
}

func (a *app) decodeCmd() *cobra.Command {
	var (
		sideName string
		short    bool
	)
	cmd := &cobra.Command{
		Use:   "decode <tokens...>",
		Short: "Decode a phrase typed as degree tokens",
		Example: `  melody decode 1 5 2
  melody decode 8 '#4' 5 4 3
  melody decode 1 4 --short`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cantus.ParsePhrase(strings.Join(args, " "))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if cmd.Flags().Changed("side") {
				side, err := cantus.ParseSide(sideName)
				if err != nil {
					return err
				}
				return decodeForSide(w, p, side, short)
			}
			lines := describePhrase(p, short)
			if len(lines) == 0 {
				return fmt.Errorf("%s: %w", p, cantus.ErrNoMatch)
			}
			for _, l := range lines {
				fmt.Fprintln(w, l)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&sideName, "side", "s", "white", "Only decode squares for this side")
	cmd.Flags().BoolVar(&short, "short", false, "Allow the two-token landing short form")
	return cmd
}

func decodeForSide(w io.Writer, p cantus.Phrase, side cantus.Side, short bool) error {
	if cs, ok := cantus.DetectCastling(p); ok {
		fmt.Fprintln(w, cs)
		return nil
	}
	if sq, ok := cantus.DecodeSquare(p, side, short); ok {
		fmt.Fprintln(w, sq)
		return nil
	}
	if piece, ok := cantus.DecodePromotion(p); ok {
		fmt.Fprintln(w, piece)
		return nil
	}
	return fmt.Errorf("%s: %w", p, cantus.ErrNoMatch)
}

func (a *app) uciCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uci",
		Short: "Run the built-in searcher as a UCI engine on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			s := engine.NewSearcher(engine.WithLogger(a.logger), engine.WithHashSize(a.cfg.Engine.HashMB))
			return engine.ServeUCI(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), s)
		},
	}
}
