package cantus

import "fmt"

// Side is the colour a phrase speaks for.
type Side int

const (
	White Side = iota
	Black
)

// Anchor is the degree every phrase of this side opens on.
func (s Side) Anchor() int {
	if s == Black {
		return 8
	}
	return 1
}

func (s Side) Opponent() Side {
	if s == Black {
		return White
	}
	return Black
}

func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "white"
}

// ParseSide accepts "white"/"w" and "black"/"b".
func ParseSide(s string) (Side, error) {
	switch s {
	case "white", "w", "White", "WHITE":
		return White, nil
	case "black", "b", "Black", "BLACK":
		return Black, nil
	}
	return White, fmt.Errorf("unknown side %q", s)
}

// Square is a board coordinate; File is 'a'..'h', Rank is 1..8.
type Square struct {
	File byte
	Rank int
}

func (s Square) String() string {
	return fmt.Sprintf("%c%d", s.File, s.Rank)
}

func (s Square) Valid() bool {
	return s.File >= 'a' && s.File <= 'h' && s.Rank >= 1 && s.Rank <= 8
}

// FileDegree is the degree that names the square's file (a=1 .. h=8).
func (s Square) FileDegree() int { return int(s.File-'a') + 1 }

func ParseSquare(str string) (Square, error) {
	if len(str) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", str)
	}
	sq := Square{File: str[0], Rank: int(str[1] - '0')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square %q", str)
	}
	return sq, nil
}

func fileOfDegree(d int) byte { return byte('a' + d - 1) }

// CastlingSide distinguishes short and long castling.
type CastlingSide int

const (
	Kingside CastlingSide = iota
	Queenside
)

func (c CastlingSide) String() string {
	if c == Queenside {
		return "O-O-O"
	}
	return "O-O"
}
