package cantus

var castlingCue = Sharp(4)

// DetectCastling matches the anchor, #4, 5 prelude on a raw phrase. The
// direction of the following run picks the side; without a run the phrase
// means kingside.
func DetectCastling(p Phrase) (CastlingSide, bool) {
	if len(p) < 3 {
		return Kingside, false
	}
	if d := p[0].Degree; d != 1 && d != 8 {
		return Kingside, false
	}
	if p[1] != castlingCue || p[2] != T(5) {
		return Kingside, false
	}
	if len(p) >= 4 && p[3].Degree < 5 {
		return Queenside, true
	}
	return Kingside, true
}
