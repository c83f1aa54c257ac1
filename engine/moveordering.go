package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

type move struct {
	move  dragontoothmg.Move
	score uint16
}
type moveList struct {
	moves []move
}

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort captures
var mvvLva [7][7]uint16 = [7][7]uint16{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

/*
	Move ordering offsets: the hash/PV move first, then promotions and
	captures, then killers and counters, then the rest by history.
*/
const (
	pvOffset        uint16 = 25000
	promotionOffset uint16 = 20000
	captureOffset   uint16 = 15000
	killerOffset    uint16 = 4000
	counterOffset   uint16 = 3000
)

// GetPieceTypeAtPosition returns what piece, if any, sits on the square.
func GetPieceTypeAtPosition(position uint8, bitboards *dragontoothmg.Bitboards) (pieceType dragontoothmg.Piece, occupied bool) {
	mask := uint64(1) << position
	switch {
	case bitboards.Pawns&mask != 0:
		return dragontoothmg.Pawn, true
	case bitboards.Knights&mask != 0:
		return dragontoothmg.Knight, true
	case bitboards.Bishops&mask != 0:
		return dragontoothmg.Bishop, true
	case bitboards.Rooks&mask != 0:
		return dragontoothmg.Rook, true
	case bitboards.Queens&mask != 0:
		return dragontoothmg.Queen, true
	case bitboards.Kings&mask != 0:
		return dragontoothmg.King, true
	}
	return dragontoothmg.Nothing, false
}

func sides(b *dragontoothmg.Board) (own, opp *dragontoothmg.Bitboards) {
	if b.Wtomove {
		return &b.White, &b.Black
	}
	return &b.Black, &b.White
}

// Ordering the moves one at a time, at index given
func orderNextMove(currIndex int, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score
	for index := bestIndex + 1; index < len(moves.moves); index++ {
		if moves.moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves.moves[index].score
		}
	}
	moves.moves[currIndex], moves.moves[bestIndex] = moves.moves[bestIndex], moves.moves[currIndex]
}

func (s *Searcher) scoreMovesList(b *dragontoothmg.Board, moves []dragontoothmg.Move, ply int8, pvMove, prevMove dragontoothmg.Move) moveList {
	own, opp := sides(b)
	side := sideIndex(b.Wtomove)

	list := moveList{moves: make([]move, len(moves))}
	for i, m := range moves {
		var score uint16
		captured, isCapture := GetPieceTypeAtPosition(m.To(), opp)
		switch {
		case m == pvMove && pvMove != 0:
			score = pvOffset
		case m.Promote() != dragontoothmg.Nothing:
			score = promotionOffset + uint16(m.Promote())
		case isCapture:
			attacker, _ := GetPieceTypeAtPosition(m.From(), own)
			score = captureOffset + mvvLva[captured][attacker]
		case s.killers.KillerMoves[ply][0] == m:
			score = killerOffset + 200
		case s.killers.KillerMoves[ply][1] == m:
			score = killerOffset
		default:
			score = uint16(s.history.score[side][m.From()][m.To()])
			if prevMove != 0 && s.history.counter[side][prevMove.From()][prevMove.To()] == m {
				score += counterOffset
			}
		}
		list.moves[i] = move{move: m, score: score}
	}
	return list
}

// scoreMovesListCaptures keeps only captures and promotions, ordered by MVV-LVA.
func scoreMovesListCaptures(b *dragontoothmg.Board, moves []dragontoothmg.Move) moveList {
	own, opp := sides(b)
	list := moveList{moves: make([]move, 0, len(moves))}
	for _, m := range moves {
		captured, isCapture := GetPieceTypeAtPosition(m.To(), opp)
		isPromotion := m.Promote() != dragontoothmg.Nothing
		if !isCapture && !isPromotion {
			continue
		}
		var score uint16
		if isPromotion {
			score = captureOffset + 75
		} else {
			attacker, _ := GetPieceTypeAtPosition(m.From(), own)
			score = mvvLva[captured][attacker]
		}
		list.moves = append(list.moves, move{move: m, score: score})
	}
	return list
}
