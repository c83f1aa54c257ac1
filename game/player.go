package game

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"melody/cantus"
	"melody/engine"
	"melody/metrics"
	"melody/rules"
)

// Pauses between the phrases of an engine move.
const (
	landingPause   = 150 * time.Millisecond
	promotionPause = 120 * time.Millisecond
)

// PhraseSource yields one collapsed phrase of at least min tokens.
type PhraseSource interface {
	Capture(ctx context.Context, min int) (cantus.Phrase, error)
}

// Sink renders phrases and cues.
type Sink interface {
	Play(ctx context.Context, key cantus.KeyContext, p cantus.Phrase) error
	Retry(ctx context.Context) error
	Pause(ctx context.Context, d time.Duration) error
}

// Player makes moves for either side: a human through the phrase source,
// the engine through the searcher.
type Player struct {
	Key      cantus.KeyContext
	Input    PhraseSource
	Output   Sink
	Searcher engine.MoveSearcher
	MoveTime time.Duration

	// Drain discards input left over from before the turn; it returns the
	// number of events dropped.
	Drain func() int
	// Boundary labels captured phrases in metrics.
	Boundary string

	Logger  *zap.Logger
	Metrics *metrics.Recorder
	// Console receives the prompts a player reads; nil discards them.
	Console io.Writer
}

func (pl *Player) logger() *zap.Logger {
	if pl.Logger == nil {
		return zap.NewNop()
	}
	return pl.Logger
}

func (pl *Player) printf(format string, args ...any) {
	if pl.Console != nil {
		fmt.Fprintf(pl.Console, format, args...)
	}
}

// HumanMove listens until the side to move plays a legal move, pushes it on
// pos and returns it. Rejected phrases sound the retry cue.
func (pl *Player) HumanMove(ctx context.Context, pos *rules.Position) (string, error) {
	logger := pl.logger()
	if pl.Drain != nil {
		if n := pl.Drain(); n > 0 {
			logger.Debug("discarded stale input", zap.Int("events", n))
		}
	}

	turn := NewTurn(pos.SideToMove(), pos)
	for {
		phrase, err := pl.Input.Capture(ctx, turn.Need())
		if err != nil {
			return "", err
		}
		pl.Metrics.Phrase(pl.Boundary)

		state := turn.State()
		step := turn.Feed(phrase)
		pl.Metrics.Decode(step.Classifier, step.Decoded())
		logger.Debug("phrase",
			zap.Stringer("phrase", phrase),
			zap.Stringer("state", state),
			zap.String("classifier", step.Classifier))

		switch step.Kind {
		case StepContinue:
			if turn.State() == AwaitingPromotion {
				pl.printf("Promotion cue: anchor, b2, then steps 1..4 (r, n, b, q).\n")
			}
		case StepMove:
			if err := pos.Push(step.Move); err != nil {
				return "", err
			}
			pl.Metrics.Move("human")
			pl.printf("Last move (you): %s\n", step.Move)
			return step.Move, nil
		case StepRetry:
			logger.Info("move rejected",
				zap.String("reason", step.Reason),
				zap.Stringer("phrase", phrase),
				zap.Stringer("side", turn.Side()))
			pl.Metrics.Retry(step.Reason)
			pl.printf("%s; please repeat.\n", retryMessage(step.Reason))
			if err := pl.Output.Retry(ctx); err != nil {
				return "", fmt.Errorf("retry cue: %w", err)
			}
		}
	}
}

func retryMessage(reason string) string {
	switch reason {
	case ReasonIllegalCastling:
		return "Illegal castling attempt"
	case ReasonStartSquare:
		return "Could not decode start square"
	case ReasonLandingSquare:
		return "Could not decode landing square"
	case ReasonSameSquare:
		return "Start and landing are identical"
	case ReasonPromotionPiece:
		return "Could not decode promotion piece"
	}
	return "Illegal move"
}

// EngineMove asks the searcher for a move, plays its phrases and pushes it.
func (pl *Player) EngineMove(ctx context.Context, pos *rules.Position) (string, error) {
	budget := pl.MoveTime
	if budget <= 0 {
		budget = engine.DefaultMoveTime
	}
	began := time.Now()
	uci, err := pl.Searcher.BestMove(ctx, pos.FEN(), budget)
	pl.Metrics.Search(time.Since(began))
	if err != nil {
		return "", fmt.Errorf("engine search: %w", err)
	}
	if !pos.IsLegal(uci) {
		return "", fmt.Errorf("engine returned illegal move %q", uci)
	}
	pl.logger().Info("engine move", zap.String("move", uci), zap.Duration("took", time.Since(began)))
	pl.printf("Engine: %s\n", uci)

	if err := pl.Render(ctx, pos.SideToMove(), uci, pos.IsCastling(uci)); err != nil {
		return "", err
	}
	if err := pos.Push(uci); err != nil {
		return "", err
	}
	pl.Metrics.Move("engine")
	return uci, nil
}

// Render plays the phrases that spell uci for side.
func (pl *Player) Render(ctx context.Context, side cantus.Side, uci string, castling bool) error {
	if len(uci) < 4 {
		return fmt.Errorf("short move %q", uci)
	}
	if castling {
		cs := cantus.Kingside
		if uci[2] == 'c' {
			cs = cantus.Queenside
		}
		return pl.Output.Play(ctx, pl.Key, cantus.EncodeCastling(side, cs))
	}

	from, err := cantus.ParseSquare(uci[:2])
	if err != nil {
		return err
	}
	to, err := cantus.ParseSquare(uci[2:4])
	if err != nil {
		return err
	}
	if err := pl.Output.Play(ctx, pl.Key, cantus.EncodeSquare(from, side)); err != nil {
		return err
	}
	if err := pl.Output.Pause(ctx, landingPause); err != nil {
		return err
	}
	if err := pl.Output.Play(ctx, pl.Key, cantus.EncodeSquare(to, side)); err != nil {
		return err
	}
	if len(uci) == 5 {
		piece, err := cantus.ParsePromotionPiece(uci[4:])
		if err != nil {
			return err
		}
		if err := pl.Output.Pause(ctx, promotionPause); err != nil {
			return err
		}
		return pl.Output.Play(ctx, pl.Key, cantus.EncodePromotion(piece, side))
	}
	return nil
}
