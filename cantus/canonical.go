package cantus

// mordent returns the three-token opening that marks a side's edge file.
func mordent(side Side) [3]int {
	if side == Black {
		return [3]int{8, 2, 8}
	}
	return [3]int{1, 7, 1}
}

func opensWithMordent(p Phrase, side Side) bool {
	if len(p) < 3 {
		return false
	}
	m := mordent(side)
	return p[0].Degree == m[0] && p[1].Degree == m[1] && p[2].Degree == m[2]
}

// Canonicalize checks the side's anchor and drops an optional closing anchor.
// It returns an empty phrase when the first token is not the anchor.
func Canonicalize(p Phrase, side Side) Phrase {
	anchor := side.Anchor()
	if len(p) == 0 || p[0].Degree != anchor {
		return Phrase{}
	}
	out := append(Phrase(nil), p...)
	if len(out) >= 4 && out[len(out)-1].Degree == anchor && !opensWithMordent(out, side) {
		out = out[:len(out)-1]
	}
	return out
}
