// Package rules answers legality questions for the move driver.
//
// Move generation and application run on dragontoothmg; a parallel goosemg
// board tracks the history needed for game status (mate, stalemate, the
// fifty-move rule and threefold repetition).
package rules

import (
	"fmt"
	"strings"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dylhunn/dragontoothmg"

	"melody/cantus"
)

// PieceKind mirrors dragontoothmg's piece numbering.
type PieceKind int

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k PieceKind) String() string {
	return [...]string{"none", "pawn", "knight", "bishop", "rook", "queen", "king"}[k]
}

type Piece struct {
	Kind  PieceKind
	Color cantus.Side
}

// Position is a game in progress.
type Position struct {
	board dragontoothmg.Board

	status  *gm.Board
	stack   []gm.MoveState
	history []uint64

	moves []string
}

func NewPosition() *Position {
	p, err := FromFEN(dragontoothmg.Startpos)
	if err != nil {
		panic(err)
	}
	return p
}

// FromFEN validates the FEN with goosemg before handing it to dragontoothmg,
// which does not report parse errors.
func FromFEN(fen string) (*Position, error) {
	status, err := gm.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &Position{
		board:   dragontoothmg.ParseFen(fen),
		status:  status,
		history: []uint64{status.ComputeZobrist()},
	}, nil
}

func (p *Position) SideToMove() cantus.Side {
	if p.board.Wtomove {
		return cantus.White
	}
	return cantus.Black
}

func (p *Position) FEN() string { return p.board.ToFen() }

// Moves lists the moves pushed so far in UCI notation.
func (p *Position) Moves() []string { return append([]string(nil), p.moves...) }

// LegalMoves returns every legal move in UCI notation.
func (p *Position) LegalMoves() []string {
	moves := p.board.GenerateLegalMoves()
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = strings.ToLower(m.String())
	}
	return out
}

func (p *Position) find(uci string) (dragontoothmg.Move, bool) {
	uci = strings.ToLower(uci)
	for _, m := range p.board.GenerateLegalMoves() {
		if strings.ToLower(m.String()) == uci {
			return m, true
		}
	}
	return 0, false
}

func (p *Position) IsLegal(uci string) bool {
	_, ok := p.find(uci)
	return ok
}

func squareIndex(sq cantus.Square) uint8 {
	return uint8(sq.Rank-1)*8 + (sq.File - 'a')
}

func pieceOn(idx uint8, bb *dragontoothmg.Bitboards) (PieceKind, bool) {
	mask := uint64(1) << idx
	switch {
	case bb.Pawns&mask != 0:
		return Pawn, true
	case bb.Knights&mask != 0:
		return Knight, true
	case bb.Bishops&mask != 0:
		return Bishop, true
	case bb.Rooks&mask != 0:
		return Rook, true
	case bb.Queens&mask != 0:
		return Queen, true
	case bb.Kings&mask != 0:
		return King, true
	}
	return NoPiece, false
}

func (p *Position) PieceAt(sq cantus.Square) (Piece, bool) {
	idx := squareIndex(sq)
	if k, ok := pieceOn(idx, &p.board.White); ok {
		return Piece{Kind: k, Color: cantus.White}, true
	}
	if k, ok := pieceOn(idx, &p.board.Black); ok {
		return Piece{Kind: k, Color: cantus.Black}, true
	}
	return Piece{}, false
}

// IsCastling reports whether uci is a king move of two files.
func (p *Position) IsCastling(uci string) bool {
	if len(uci) < 4 {
		return false
	}
	from, err := cantus.ParseSquare(uci[:2])
	if err != nil {
		return false
	}
	piece, ok := p.PieceAt(from)
	if !ok || piece.Kind != King {
		return false
	}
	df := int(uci[2]) - int(uci[0])
	return df == 2 || df == -2
}

// Push plays a legal move on both boards.
func (p *Position) Push(uci string) error {
	m, ok := p.find(uci)
	if !ok {
		return fmt.Errorf("illegal move %q in %s", uci, p.FEN())
	}
	sm, ok := p.statusMove(uci)
	if !ok {
		return fmt.Errorf("move %q missing from status board", uci)
	}
	if !p.status.PushMove(sm, &p.stack, &p.history) {
		return fmt.Errorf("status board rejected %q", uci)
	}
	p.board.Apply(m)
	p.moves = append(p.moves, strings.ToLower(m.String()))
	return nil
}

func (p *Position) statusMove(uci string) (gm.Move, bool) {
	uci = strings.ToLower(uci)
	for _, m := range p.status.GenerateMoves() {
		if strings.ToLower(m.String()) == uci {
			return m, true
		}
	}
	return 0, false
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.board.OurKingInCheck() }
