package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

var pieceValue = [7]int32{
	dragontoothmg.Pawn:   100,
	dragontoothmg.Knight: 320,
	dragontoothmg.Bishop: 330,
	dragontoothmg.Rook:   500,
	dragontoothmg.Queen:  900,
}

// phase weight per piece; 24 is a full middlegame
var phaseWeight = [7]int{
	dragontoothmg.Knight: 1,
	dragontoothmg.Bishop: 1,
	dragontoothmg.Rook:   2,
	dragontoothmg.Queen:  4,
}

const totalPhase = 24

// Piece-square tables from White's side, rank 8 first.
var pstPawn = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstKnight = [64]int32{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var pstBishop = [64]int32{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var pstRook = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var pstQueen = [64]int32{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var pstKingMG = [64]int32{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var pstKingEG = [64]int32{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var pstByPiece = [6]*[64]int32{nil, &pstPawn, &pstKnight, &pstBishop, &pstRook, &pstQueen}

// pstIndex maps a board square (a1 = 0) to the table layout above.
func pstIndex(sq int, white bool) int {
	if white {
		return sq ^ 56
	}
	return sq
}

func pieceBoards(bb *dragontoothmg.Bitboards) [6]uint64 {
	return [6]uint64{0, bb.Pawns, bb.Knights, bb.Bishops, bb.Rooks, bb.Queens}
}

// GetPiecePhase returns 0 (bare kings) .. 24 (all minor and major pieces).
func GetPiecePhase(b *dragontoothmg.Board) int {
	phase := 0
	for _, bb := range []*dragontoothmg.Bitboards{&b.White, &b.Black} {
		boards := pieceBoards(bb)
		for piece := dragontoothmg.Knight; piece <= dragontoothmg.Queen; piece++ {
			phase += bits.OnesCount64(boards[piece]) * phaseWeight[piece]
		}
	}
	return Min(phase, totalPhase)
}

func evaluateSide(bb *dragontoothmg.Bitboards, white bool, phase int) int32 {
	var score int32
	boards := pieceBoards(bb)
	for piece := dragontoothmg.Pawn; piece <= dragontoothmg.Queen; piece++ {
		for x := boards[piece]; x != 0; x &= x - 1 {
			sq := bits.TrailingZeros64(x)
			score += pieceValue[piece] + pstByPiece[piece][pstIndex(sq, white)]
		}
	}
	if bb.Kings != 0 {
		idx := pstIndex(bits.TrailingZeros64(bb.Kings), white)
		mg, eg := pstKingMG[idx], pstKingEG[idx]
		score += (mg*int32(phase) + eg*int32(totalPhase-phase)) / totalPhase
	}
	return score
}

// Evaluation scores the position from the side to move's point of view.
func Evaluation(b *dragontoothmg.Board) int32 {
	phase := GetPiecePhase(b)
	score := evaluateSide(&b.White, true, phase) - evaluateSide(&b.Black, false, phase)
	if !b.Wtomove {
		score = -score
	}
	return score
}

// hasMinorOrMajorPiece keeps static pruning out of pawn endings, where
// zugzwang makes the static score unreliable.
func hasMinorOrMajorPiece(b *dragontoothmg.Board) bool {
	own, _ := sides(b)
	return own.Knights|own.Bishops|own.Rooks|own.Queens != 0
}
