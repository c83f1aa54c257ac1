package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"melody/cantus"
	"melody/rules"
)

const (
	castlingFEN       = "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1"
	castlingBlackFEN  = "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R b KQkq - 0 1"
	whitePromotionFEN = "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
	blackPromotionFEN = "4k3/8/8/8/8/8/4p3/K7 b - - 0 1"
)

func sq(t *testing.T, s string) cantus.Square {
	t.Helper()
	out, err := cantus.ParseSquare(s)
	require.NoError(t, err)
	return out
}

func position(t *testing.T, fen string) *rules.Position {
	t.Helper()
	pos, err := rules.FromFEN(fen)
	require.NoError(t, err)
	return pos
}

func TestTurnNormalMove(t *testing.T) {
	pos := rules.NewPosition()
	turn := NewTurn(cantus.White, pos)
	assert.Equal(t, 3, turn.Need())

	step := turn.Feed(cantus.EncodeSquare(sq(t, "e2"), cantus.White))
	require.Equal(t, StepContinue, step.Kind)
	assert.Equal(t, AwaitingPhrase2, turn.State())
	assert.Equal(t, sq(t, "e2"), turn.Start())
	assert.Equal(t, 2, turn.Need())

	step = turn.Feed(cantus.EncodeSquare(sq(t, "e4"), cantus.White))
	require.Equal(t, StepMove, step.Kind)
	assert.Equal(t, "e2e4", step.Move)
	assert.Equal(t, Finalized, turn.State())
}

func TestTurnShortFormLanding(t *testing.T) {
	turn := NewTurn(cantus.White, rules.NewPosition())
	require.Equal(t, StepContinue, turn.Feed(cantus.Degrees(1, 4, 2)).Kind)
	step := turn.Feed(cantus.Degrees(1, 4))
	require.Equal(t, StepMove, step.Kind)
	assert.Equal(t, "d2d4", step.Move)
}

func TestTurnBlackMove(t *testing.T) {
	pos := rules.NewPosition()
	require.NoError(t, pos.Push("e2e4"))
	turn := NewTurn(cantus.Black, pos)
	require.Equal(t, StepContinue, turn.Feed(cantus.Degrees(8, 5, 7)).Kind)
	step := turn.Feed(cantus.EncodeSquare(sq(t, "e5"), cantus.Black))
	require.Equal(t, StepMove, step.Kind)
	assert.Equal(t, "e7e5", step.Move)
}

func TestTurnCastling(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		side cantus.Side
		cs   cantus.CastlingSide
		want string
	}{
		{"white kingside", castlingFEN, cantus.White, cantus.Kingside, "e1g1"},
		{"white queenside", castlingFEN, cantus.White, cantus.Queenside, "e1c1"},
		{"black kingside", castlingBlackFEN, cantus.Black, cantus.Kingside, "e8g8"},
		{"black queenside", castlingBlackFEN, cantus.Black, cantus.Queenside, "e8c8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := NewTurn(tt.side, position(t, tt.fen))
			step := turn.Feed(cantus.EncodeCastling(tt.side, tt.cs))
			require.Equal(t, StepMove, step.Kind)
			assert.Equal(t, tt.want, step.Move)
			assert.Equal(t, ClassCastling, step.Classifier)
		})
	}
}

func TestTurnBareCastlingPreludeIsKingside(t *testing.T) {
	turn := NewTurn(cantus.White, position(t, castlingFEN))
	step := turn.Feed(cantus.Phrase{cantus.T(1), cantus.Sharp(4), cantus.T(5)})
	require.Equal(t, StepMove, step.Kind)
	assert.Equal(t, "e1g1", step.Move)
}

func TestTurnRetries(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		phrases []cantus.Phrase
		reason  string
	}{
		{
			name:    "castling not allowed",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			phrases: []cantus.Phrase{cantus.EncodeCastling(cantus.White, cantus.Kingside)},
			reason:  ReasonIllegalCastling,
		},
		{
			name:    "start on wrong anchor",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			phrases: []cantus.Phrase{cantus.Degrees(5, 3, 2)},
			reason:  ReasonStartSquare,
		},
		{
			name:    "landing undecodable",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			phrases: []cantus.Phrase{cantus.Degrees(1, 5, 2), cantus.Degrees(3, 4)},
			reason:  ReasonLandingSquare,
		},
		{
			name:    "same square",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			phrases: []cantus.Phrase{cantus.Degrees(1, 5, 2), cantus.Degrees(1, 5, 2)},
			reason:  ReasonSameSquare,
		},
		{
			name:    "illegal move",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			phrases: []cantus.Phrase{cantus.Degrees(1, 5, 2), cantus.Degrees(1, 5, 5)},
			reason:  ReasonIllegalMove,
		},
		{
			name:    "no promotion cue",
			fen:     whitePromotionFEN,
			phrases: []cantus.Phrase{cantus.Degrees(1, 5, 7), cantus.Degrees(1, 5, 8), cantus.Degrees(1, 5)},
			reason:  ReasonPromotionPiece,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := NewTurn(cantus.White, position(t, tt.fen))
			var step Step
			for _, p := range tt.phrases {
				step = turn.Feed(p)
			}
			require.Equal(t, StepRetry, step.Kind)
			assert.Equal(t, tt.reason, step.Reason)
			assert.Equal(t, AwaitingPhrase1, turn.State(), "a retry resets the turn")
			assert.Equal(t, cantus.White, turn.Side())
		})
	}
}

func TestTurnPromotion(t *testing.T) {
	for _, piece := range []cantus.PromotionPiece{cantus.Rook, cantus.Knight, cantus.Bishop, cantus.Queen} {
		t.Run("white "+piece.String(), func(t *testing.T) {
			turn := NewTurn(cantus.White, position(t, whitePromotionFEN))
			require.Equal(t, StepContinue, turn.Feed(cantus.EncodeSquare(sq(t, "e7"), cantus.White)).Kind)
			require.Equal(t, StepContinue, turn.Feed(cantus.EncodeSquare(sq(t, "e8"), cantus.White)).Kind)
			require.Equal(t, AwaitingPromotion, turn.State())
			assert.Equal(t, 2, turn.Need())

			step := turn.Feed(cantus.EncodePromotion(piece, cantus.White))
			require.Equal(t, StepMove, step.Kind)
			assert.Equal(t, "e7e8"+piece.Letter(), step.Move)
		})
		t.Run("black "+piece.String(), func(t *testing.T) {
			turn := NewTurn(cantus.Black, position(t, blackPromotionFEN))
			require.Equal(t, StepContinue, turn.Feed(cantus.EncodeSquare(sq(t, "e2"), cantus.Black)).Kind)
			require.Equal(t, StepContinue, turn.Feed(cantus.EncodeSquare(sq(t, "e1"), cantus.Black)).Kind)
			step := turn.Feed(cantus.EncodePromotion(piece, cantus.Black))
			require.Equal(t, StepMove, step.Kind)
			assert.Equal(t, "e2e1"+piece.Letter(), step.Move)
		})
	}
}

func TestTurnFeedAfterFinalizeStartsOver(t *testing.T) {
	turn := NewTurn(cantus.White, rules.NewPosition())
	turn.Feed(cantus.Degrees(1, 5, 2))
	require.Equal(t, StepMove, turn.Feed(cantus.Degrees(1, 5, 4)).Kind)
	require.Equal(t, StepContinue, turn.Feed(cantus.Degrees(1, 4, 2)).Kind)
	assert.Equal(t, sq(t, "d2"), turn.Start())
}

func TestStepDecoded(t *testing.T) {
	assert.True(t, Step{Kind: StepRetry, Reason: ReasonIllegalMove}.Decoded())
	assert.False(t, Step{Kind: StepRetry, Reason: ReasonStartSquare}.Decoded())
	assert.True(t, Step{Kind: StepMove}.Decoded())
}

func TestParseHumans(t *testing.T) {
	h, err := ParseHumans("both")
	require.NoError(t, err)
	assert.True(t, h.Plays(cantus.White) && h.Plays(cantus.Black))

	h, err = ParseHumans("black")
	require.NoError(t, err)
	assert.False(t, h.Plays(cantus.White))
	assert.True(t, h.Plays(cantus.Black))

	_, err = ParseHumans("martian")
	assert.Error(t, err)
}
