package cantus

import "fmt"

// PromotionPiece is the piece a pawn promotes to. Its value is the step of
// the rising tetrachord that names it.
type PromotionPiece int

const (
	Rook   PromotionPiece = 1
	Knight PromotionPiece = 2
	Bishop PromotionPiece = 3
	Queen  PromotionPiece = 4
)

var promotionCue = Flat(2)

// promotionSteps[i] is the token for step i+1.
var promotionSteps = [4]Token{T(1), Flat(2), Flat(3), T(3)}

// Letter is the UCI suffix for the piece.
func (p PromotionPiece) Letter() string {
	switch p {
	case Rook:
		return "r"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Queen:
		return "q"
	}
	return ""
}

func (p PromotionPiece) String() string {
	switch p {
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	}
	return fmt.Sprintf("PromotionPiece(%d)", int(p))
}

// ParsePromotionPiece accepts a UCI letter (either case) or a piece name.
func ParsePromotionPiece(s string) (PromotionPiece, error) {
	switch s {
	case "r", "R", "rook":
		return Rook, nil
	case "n", "N", "knight":
		return Knight, nil
	case "b", "B", "bishop":
		return Bishop, nil
	case "q", "Q", "queen":
		return Queen, nil
	}
	return 0, fmt.Errorf("unknown promotion piece %q", s)
}

func stepOf(t Token) int {
	for i, s := range promotionSteps {
		if t == s {
			return i + 1
		}
	}
	return 0
}

// DecodePromotion reads the piece from a phrase opening with anchor, b2.
// The highest step reached after the cue decides, wherever it occurs.
func DecodePromotion(p Phrase) (PromotionPiece, bool) {
	if len(p) < 2 {
		return 0, false
	}
	if d := p[0].Degree; d != 1 && d != 8 {
		return 0, false
	}
	if p[1] != promotionCue {
		return 0, false
	}
	best := 0
	for _, t := range p[2:] {
		if s := stepOf(t); s > best {
			best = s
		}
	}
	if best == 0 {
		return 0, false
	}
	return PromotionPiece(best), true
}

// EncodePromotion emits the cue followed by the tetrachord up to the piece.
func EncodePromotion(piece PromotionPiece, side Side) Phrase {
	p := Phrase{T(side.Anchor()), promotionCue}
	for i := 0; i < int(piece) && i < len(promotionSteps); i++ {
		p = append(p, promotionSteps[i])
	}
	return p
}
