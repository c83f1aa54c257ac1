package game

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"melody/cantus"
	"melody/rules"
)

// Humans says which sides are played at the keyboard.
type Humans struct {
	White bool
	Black bool
}

// ParseHumans accepts white, black, both or none.
func ParseHumans(s string) (Humans, error) {
	switch s {
	case "white", "w":
		return Humans{White: true}, nil
	case "black", "b":
		return Humans{Black: true}, nil
	case "both":
		return Humans{White: true, Black: true}, nil
	case "none", "engine":
		return Humans{}, nil
	}
	return Humans{}, fmt.Errorf("unknown human side %q", s)
}

func (h Humans) Plays(side cantus.Side) bool {
	if side == cantus.Black {
		return h.Black
	}
	return h.White
}

// Session is one game from the current position to its end.
type Session struct {
	ID       string
	Position *rules.Position
	Player   *Player
	Humans   Humans
	Logger   *zap.Logger
	Console  io.Writer
}

func NewSession(pos *rules.Position, player *Player, humans Humans, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		ID:       id,
		Position: pos,
		Player:   player,
		Humans:   humans,
		Logger:   logger.With(zap.String("session", id)),
	}
}

func (s *Session) printf(format string, args ...any) {
	if s.Console != nil {
		fmt.Fprintf(s.Console, format, args...)
	}
}

// Run alternates human and engine moves until the game is over or ctx ends.
func (s *Session) Run(ctx context.Context) (rules.Outcome, error) {
	s.Logger.Info("game started", zap.String("fen", s.Position.FEN()))
	for {
		if o := s.Position.Outcome(); o.Over() {
			s.Logger.Info("game over",
				zap.String("result", o.Result()),
				zap.Stringer("termination", o.Termination),
				zap.Strings("moves", s.Position.Moves()))
			s.printf("\nResult: %s (%s)\n", o.Result(), o.Termination)
			return o, nil
		}
		if err := ctx.Err(); err != nil {
			return rules.Outcome{}, err
		}

		side := s.Position.SideToMove()
		var (
			move string
			err  error
		)
		if s.Humans.Plays(side) {
			s.printf("\nYour move (%s).\n", side)
			move, err = s.Player.HumanMove(ctx, s.Position)
		} else {
			s.printf("\nEngine move (%s) thinking...\n", side)
			move, err = s.Player.EngineMove(ctx, s.Position)
		}
		if err != nil {
			return rules.Outcome{}, err
		}
		s.Logger.Info("move", zap.Stringer("side", side), zap.String("move", move))
	}
}
