package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"go.uber.org/zap"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0

	MaxDepth = 64
)

const DefaultMoveTime = 700 * time.Millisecond

// =============================================================================
// MARGINS
// =============================================================================
var RFPMargins = [8]int32{0, 100, 200, 300, 400, 500, 600, 700}

var (
	aspirationWindowSize int32 = 35
	deltaMargin          int32 = 200
	lmrDepthLimit        int8  = 3
	lmrMoveLimit               = 4
)

var ErrNoLegalMoves = errors.New("engine: no legal moves")

// MoveSearcher picks a move for a position given as FEN.
type MoveSearcher interface {
	BestMove(ctx context.Context, fen string, budget time.Duration) (string, error)
}

// Searcher is an in-process alpha-beta searcher. A Searcher runs one search
// at a time; concurrent BestMove calls are serialized.
type Searcher struct {
	mu sync.Mutex

	tt      *TransTable
	killers KillerStruct
	history historyTable
	states  []State

	timeHandler  TimeHandler
	nodesChecked uint64
	maxDepth     int8

	logger *zap.Logger
}

type SearcherOption func(*Searcher)

func WithLogger(l *zap.Logger) SearcherOption {
	return func(s *Searcher) { s.logger = l }
}

// WithMaxDepth caps iterative deepening; mostly useful in tests.
func WithMaxDepth(d int) SearcherOption {
	return func(s *Searcher) { s.maxDepth = int8(Clamp(d, 1, MaxDepth-1)) }
}

func WithHashSize(mb int) SearcherOption {
	return func(s *Searcher) { s.tt = NewTransTable(mb) }
}

func NewSearcher(opts ...SearcherOption) *Searcher {
	s := &Searcher{maxDepth: MaxDepth - 1, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	if s.tt == nil {
		s.tt = NewTransTable(DefaultTTSize)
	}
	return s
}

// PVLine is the principal variation found under a node.
type PVLine struct {
	Moves []dragontoothmg.Move
}

func (pv *PVLine) Update(m dragontoothmg.Move, child PVLine) {
	pv.Moves = append(pv.Moves[:0], m)
	pv.Moves = append(pv.Moves, child.Moves...)
}

func (pv *PVLine) Clear() { pv.Moves = pv.Moves[:0] }

func (pv PVLine) Clone() PVLine {
	return PVLine{Moves: append([]dragontoothmg.Move(nil), pv.Moves...)}
}

func (pv PVLine) GetPVMove() dragontoothmg.Move {
	if len(pv.Moves) == 0 {
		return 0
	}
	return pv.Moves[0]
}

func (pv PVLine) String() string {
	parts := make([]string, len(pv.Moves))
	for i, m := range pv.Moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// BestMove searches the position until the budget or ctx runs out and
// returns the best move found in UCI notation.
func (s *Searcher) BestMove(ctx context.Context, fen string, budget time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board := dragontoothmg.ParseFen(fen)
	legal := board.GenerateLegalMoves()
	if len(legal) == 0 {
		return "", ErrNoLegalMoves
	}
	if len(legal) == 1 {
		return legal[0].String(), nil
	}

	s.timeHandler.init(ctx, budget)
	s.killers = KillerStruct{}
	s.nodesChecked = 0
	s.states = s.states[:0]
	s.pushState(&board)

	score, best := s.rootsearch(&board)
	if best == 0 {
		best = legal[0]
	}
	s.logger.Debug("search finished",
		zap.String("move", best.String()),
		zap.String("score", getMateOrCPScore(score)),
		zap.Uint64("nodes", s.nodesChecked),
		zap.Duration("elapsed", s.timeHandler.Elapsed()))
	return best.String(), nil
}

func (s *Searcher) rootsearch(b *dragontoothmg.Board) (int32, dragontoothmg.Move) {
	var alpha, beta = -MaxScore, MaxScore
	var bestScore int32
	var pvLine, prevPVLine PVLine
	window := aspirationWindowSize

	for depth := int8(1); depth <= s.maxDepth; depth++ {
		if depth > 1 && s.timeHandler.SoftTimeExceeded() {
			break
		}
		pvLine.Clear()
		score := s.alphabeta(b, alpha, beta, depth, 0, &pvLine, 0)

		if s.timeHandler.TimeStatus() {
			if len(prevPVLine.Moves) == 0 && len(pvLine.Moves) > 0 {
				prevPVLine = pvLine.Clone()
				bestScore = score
			}
			break
		}

		// Aspiration window re-search
		if score <= alpha || score >= beta {
			window *= 2
			alpha = Max(score-window, -MaxScore)
			beta = Min(score+window, MaxScore)
			if window > MaxScore {
				alpha, beta = -MaxScore, MaxScore
			}
			depth--
			continue
		}

		window = aspirationWindowSize
		alpha, beta = score-window, score+window
		bestScore = score
		prevPVLine = pvLine.Clone()

		s.logger.Debug("info",
			zap.Int8("depth", depth),
			zap.String("score", getMateOrCPScore(score)),
			zap.Uint64("nodes", s.nodesChecked),
			zap.Stringer("pv", prevPVLine))

		if abs(score) > Checkmate {
			break
		}
	}
	return bestScore, prevPVLine.GetPVMove()
}

func (s *Searcher) alphabeta(b *dragontoothmg.Board, alpha, beta int32, depth int8, ply int8, pvLine *PVLine, prevMove dragontoothmg.Move) int32 {
	s.nodesChecked++
	if s.nodesChecked&2047 == 0 && s.timeHandler.TimeStatus() {
		return 0
	}
	if s.timeHandler.stopSearch {
		return 0
	}
	if ply >= MaxDepth-1 {
		return Evaluation(b)
	}

	isRoot := ply == 0
	isPVNode := beta-alpha > 1
	var childPVLine PVLine

	if !isRoot && s.isDraw() {
		return DrawScore
	}

	inCheck := b.OurKingInCheck()
	// Check extension
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return s.quiescence(b, alpha, beta, ply)
	}

	posHash := b.Hash()
	var ttMove dragontoothmg.Move
	if entry, hit := s.tt.probe(posHash); hit {
		ttMove = entry.Move
		if usable, score := s.tt.useEntry(entry, depth, alpha, beta, ply); usable && !isRoot && !isPVNode {
			return score
		}
	}

	allMoves := b.GenerateLegalMoves()
	if len(allMoves) == 0 {
		if inCheck {
			return -MaxScore + int32(ply)
		}
		return DrawScore
	}

	// Reverse futility: far enough above beta that a quiet reply won't matter
	if !inCheck && !isPVNode && !isRoot && depth < int8(len(RFPMargins)) && abs(beta) < Checkmate && hasMinorOrMajorPiece(b) {
		if static := Evaluation(b); static-RFPMargins[depth] >= beta {
			return static - RFPMargins[depth]
		}
	}

	list := s.scoreMovesList(b, allMoves, ply, ttMove, prevMove)
	bestScore := -MaxScore
	var bestMove dragontoothmg.Move
	ttFlag := AlphaFlag

	for index := 0; index < len(list.moves); index++ {
		orderNextMove(index, &list)
		m := list.moves[index].move
		isCapture := dragontoothmg.IsCapture(m, b)
		quiet := !isCapture && m.Promote() == dragontoothmg.Nothing

		unapply := s.applyMoveWithState(b, m)
		var score int32
		if index == 0 {
			score = -s.alphabeta(b, -beta, -alpha, depth-1, ply+1, &childPVLine, m)
		} else {
			// Late move reductions for quiet moves, then PVS re-searches
			var reduct int8
			if quiet && !inCheck && depth >= lmrDepthLimit && index >= lmrMoveLimit && !s.killers.IsKiller(m, ply) {
				reduct = 1 + depth/6
				if reduct > depth-2 {
					reduct = depth - 2
				}
			}
			score = -s.alphabeta(b, -alpha-1, -alpha, depth-1-reduct, ply+1, &childPVLine, m)
			if score > alpha && reduct > 0 {
				score = -s.alphabeta(b, -alpha-1, -alpha, depth-1, ply+1, &childPVLine, m)
			}
			if score > alpha && score < beta {
				score = -s.alphabeta(b, -beta, -alpha, depth-1, ply+1, &childPVLine, m)
			}
		}
		unapply()

		if s.timeHandler.stopSearch {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score >= beta {
			ttFlag = BetaFlag
			if quiet {
				s.killers.InsertKiller(m, ply)
				s.history.increment(b.Wtomove, m, depth)
				if prevMove != 0 {
					s.history.storeCounter(b.Wtomove, prevMove, m)
				}
			}
			break
		}
		if score > alpha {
			alpha = score
			ttFlag = ExactFlag
			pvLine.Update(m, childPVLine)
		}
		childPVLine.Clear()
	}

	s.tt.store(posHash, depth, ply, bestMove, bestScore, ttFlag)
	return bestScore
}

func (s *Searcher) quiescence(b *dragontoothmg.Board, alpha, beta int32, ply int8) int32 {
	s.nodesChecked++
	if s.nodesChecked&2047 == 0 && s.timeHandler.TimeStatus() {
		return 0
	}
	if s.timeHandler.stopSearch {
		return 0
	}

	standpat := Evaluation(b)
	if ply >= MaxDepth-1 {
		return standpat
	}
	if standpat >= beta {
		return standpat
	}
	alpha = Max(alpha, standpat)
	bestScore := standpat

	_, opp := sides(b)
	list := scoreMovesListCaptures(b, b.GenerateLegalMoves())
	for index := 0; index < len(list.moves); index++ {
		orderNextMove(index, &list)
		m := list.moves[index].move

		// Delta pruning: even winning the piece outright can't lift alpha
		captured, _ := GetPieceTypeAtPosition(m.To(), opp)
		gain := pieceValue[captured]
		if m.Promote() != dragontoothmg.Nothing {
			gain += pieceValue[m.Promote()] - pieceValue[dragontoothmg.Pawn]
		}
		if standpat+gain+deltaMargin < alpha {
			continue
		}

		unapply := s.applyMoveWithState(b, m)
		score := -s.quiescence(b, -beta, -alpha, ply+1)
		unapply()

		if score > bestScore {
			bestScore = score
		}
		if score >= beta {
			return score
		}
		alpha = Max(alpha, score)
	}
	return bestScore
}

func getMateOrCPScore(score int32) string {
	if score > Checkmate {
		return fmt.Sprintf("mate %d", (MaxScore-score+1)/2)
	}
	if score < -Checkmate {
		return fmt.Sprintf("mate -%d", (MaxScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}
