package cantus

// EncodeSquare is the inverse of DecodeSquare without short forms.
func EncodeSquare(sq Square, side Side) Phrase {
	anchor := side.Anchor()
	switch {
	case side == White && sq.File == 'a':
		return Degrees(1, 7, 1, sq.Rank)
	case side == White && sq.File == 'h':
		return Degrees(1, 8, sq.Rank)
	case side == Black && sq.File == 'h':
		return Degrees(8, 2, 8, sq.Rank)
	case side == Black && sq.File == 'a':
		return Degrees(8, 1, sq.Rank)
	}
	return Degrees(anchor, sq.FileDegree(), sq.Rank)
}

// EncodeCastling is the inverse of DetectCastling.
func EncodeCastling(side Side, cs CastlingSide) Phrase {
	p := Phrase{T(side.Anchor()), castlingCue, T(5)}
	if cs == Queenside {
		return append(p, T(4), T(3))
	}
	return append(p, T(6), T(7))
}
