package cantus

// semitone offset -> degree, for offsets inside one octave
var degreeOfOffset = [12]int{1, 2, 2, 3, 3, 4, 4, 5, 6, 6, 7, 7}

// diatonic major-scale offset of each degree; index 0 unused
var diatonicOffset = [9]int{0, 0, 2, 4, 5, 7, 9, 11, 12}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

// DegreeOf maps a MIDI pitch to its degree relative to the tonic.
// The tonic pitch class lands on 8 only when the pitch is at least
// OctaveAnchorThreshold semitones above the tonic.
func (k KeyContext) DegreeOf(pitch int) Token {
	rel := mod12(pitch - k.Tonic)
	if rel == 0 && pitch-k.Tonic >= k.OctaveAnchorThreshold {
		return Token{Degree: 8}
	}
	d := degreeOfOffset[rel]
	var alt int
	switch mod12(rel - diatonicOffset[d]) {
	case 1:
		alt = 1
	case 11:
		alt = -1
	}
	return Token{Degree: d, Alt: alt}
}

// PitchOf renders a degree as a pitch, shifted by whole octaves.
func (k KeyContext) PitchOf(degree, octaveShift int) int {
	return k.Tonic + diatonicOffset[clampDegree(degree)] + 12*octaveShift
}

// PitchOfToken renders a token including its alteration, so that
// DegreeOf(PitchOfToken(t)) == t for the tokens the encoders emit.
func (k KeyContext) PitchOfToken(t Token) int {
	return k.PitchOf(t.Degree, 0) + t.Alt
}

func clampDegree(d int) int {
	if d < 1 {
		return 1
	}
	if d > 8 {
		return 8
	}
	return d
}
