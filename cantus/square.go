package cantus

// squareRule tries one phrase shape. It reports the decoded file degree and
// whether the shape matched; rank resolution is shared by every rule except
// the mordent, which carries its rank explicitly.
type squareRule struct {
	name  string
	match func(p Phrase, side Side) (fileDegree int, explicitRank bool, ok bool)
}

// Evaluated in order; the first matching rule wins. Edge signatures come
// before the generic rule so that 1,7,1,r is never read as a g-file square.
var squareRules = []squareRule{
	{name: "edge-mordent", match: matchEdgeMordent},
	{name: "octave-flip", match: matchOctaveFlip},
	{name: "generic", match: matchGeneric},
}

func matchEdgeMordent(p Phrase, side Side) (int, bool, bool) {
	if len(p) < 4 || !opensWithMordent(p, side) {
		return 0, false, false
	}
	if side == Black {
		return 8, true, true
	}
	return 1, true, true
}

func matchOctaveFlip(p Phrase, side Side) (int, bool, bool) {
	if side == White && p[1].Degree == 8 {
		return 8, false, true
	}
	if side == Black && p[1].Degree == 1 {
		return 1, false, true
	}
	return 0, false, false
}

func matchGeneric(p Phrase, _ Side) (int, bool, bool) {
	return p[1].Degree, false, true
}

// DecodeSquare reads a square from a captured phrase. shortFormOK lets a
// bare anchor+file phrase stand for the square whose rank equals its file.
func DecodeSquare(p Phrase, side Side, shortFormOK bool) (Square, bool) {
	seq := Canonicalize(p, side)
	if len(seq) < 2 {
		return Square{}, false
	}
	for _, rule := range squareRules {
		file, explicit, ok := rule.match(seq, side)
		if !ok {
			continue
		}
		var rank int
		switch {
		case explicit || len(seq) >= 3:
			rank = seq[len(seq)-1].Degree
		case shortFormOK:
			rank = file
		default:
			return Square{}, false
		}
		if file < 1 || file > 8 || rank < 1 || rank > 8 {
			return Square{}, false
		}
		return Square{File: fileOfDegree(file), Rank: rank}, true
	}
	return Square{}, false
}

// SquareRule names the rule DecodeSquare would use, or "" when none applies.
func SquareRule(p Phrase, side Side) string {
	seq := Canonicalize(p, side)
	if len(seq) < 2 {
		return ""
	}
	for _, rule := range squareRules {
		if _, _, ok := rule.match(seq, side); ok {
			return rule.name
		}
	}
	return ""
}
