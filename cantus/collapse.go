package cantus

// Collapse merges runs of tokens that share a degree. When the raw input ends
// on two tokens of the same degree the closing repeat is intentional, so the
// final raw token is kept once more after the merged run.
//
// Collapse is idempotent.
func Collapse(raw []Token) Phrase {
	out := make(Phrase, 0, len(raw)+1)
	for _, t := range raw {
		if len(out) > 0 && out[len(out)-1].Degree == t.Degree {
			continue
		}
		out = append(out, t)
	}
	n := len(raw)
	if n >= 2 && raw[n-1].Degree == raw[n-2].Degree {
		m := len(out)
		if m < 2 || out[m-1].Degree != out[m-2].Degree {
			out = append(out, raw[n-1])
		}
	}
	return out
}
