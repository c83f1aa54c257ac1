package rules

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"

	"melody/cantus"
)

type Termination int

const (
	Ongoing Termination = iota
	Checkmate
	Stalemate
	FiftyMoves
	Repetition
	InsufficientMaterial
)

func (t Termination) String() string {
	return [...]string{"ongoing", "checkmate", "stalemate", "fifty-move rule", "threefold repetition", "insufficient material"}[t]
}

// Outcome describes how (and whether) the game has ended.
type Outcome struct {
	Termination Termination
	Winner      cantus.Side // only meaningful for Checkmate
}

func (o Outcome) Over() bool { return o.Termination != Ongoing }

// Result is the PGN result string.
func (o Outcome) Result() string {
	switch {
	case o.Termination == Ongoing:
		return "*"
	case o.Termination != Checkmate:
		return "1/2-1/2"
	case o.Winner == cantus.White:
		return "1-0"
	}
	return "0-1"
}

func (p *Position) Outcome() Outcome {
	switch {
	case p.status.InCheckmate():
		return Outcome{Termination: Checkmate, Winner: p.SideToMove().Opponent()}
	case p.status.InStalemate():
		return Outcome{Termination: Stalemate}
	case p.status.IsDrawBy50():
		return Outcome{Termination: FiftyMoves}
	case p.status.IsDrawByRepetition(p.history):
		return Outcome{Termination: Repetition}
	case insufficientMaterial(&p.board):
		return Outcome{Termination: InsufficientMaterial}
	}
	return Outcome{}
}

// insufficientMaterial covers K v K and K plus one minor piece v K.
func insufficientMaterial(b *dragontoothmg.Board) bool {
	for _, bb := range []*dragontoothmg.Bitboards{&b.White, &b.Black} {
		if bb.Pawns|bb.Rooks|bb.Queens != 0 {
			return false
		}
	}
	minors := bits.OnesCount64(b.White.Knights | b.White.Bishops | b.Black.Knights | b.Black.Bishops)
	return minors <= 1
}
