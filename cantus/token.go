// Package cantus maps chess coordinates to short melodic gestures and back.
//
// A gesture is a Phrase: a sequence of scale-degree Tokens relative to the
// tonic of a KeyContext. White phrases open on the tonic (degree 1), Black
// phrases on the octave above it (degree 8). All classifiers in this package
// are pure and total: they either return a result or report ok=false.
package cantus

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is one scale degree (1..8) with a chromatic alteration of -1, 0 or +1.
type Token struct {
	Degree int
	Alt    int
}

// T is shorthand for an unaltered token.
func T(degree int) Token { return Token{Degree: degree} }

// Sharp returns the token raised by a semitone.
func Sharp(degree int) Token { return Token{Degree: degree, Alt: 1} }

// Flat returns the token lowered by a semitone.
func Flat(degree int) Token { return Token{Degree: degree, Alt: -1} }

func (t Token) String() string {
	switch {
	case t.Alt > 0:
		return "#" + strconv.Itoa(t.Degree)
	case t.Alt < 0:
		return "b" + strconv.Itoa(t.Degree)
	}
	return strconv.Itoa(t.Degree)
}

// ParseToken reads the text form produced by Token.String ("5", "#4", "b2").
func ParseToken(s string) (Token, error) {
	var alt int
	body := s
	switch {
	case strings.HasPrefix(s, "#"):
		alt, body = 1, s[1:]
	case strings.HasPrefix(s, "b"):
		alt, body = -1, s[1:]
	}
	d, err := strconv.Atoi(body)
	if err != nil || d < 1 || d > 8 {
		return Token{}, fmt.Errorf("invalid token %q", s)
	}
	return Token{Degree: d, Alt: alt}, nil
}

// Phrase is an ordered sequence of tokens.
type Phrase []Token

// Degrees returns the degree of every token, dropping alterations.
func (p Phrase) Degrees() []int {
	out := make([]int, len(p))
	for i, t := range p {
		out[i] = t.Degree
	}
	return out
}

func (p Phrase) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// ParsePhrase reads a whitespace or comma separated list of tokens.
func ParsePhrase(s string) (Phrase, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	p := make(Phrase, 0, len(fields))
	for _, f := range fields {
		t, err := ParseToken(f)
		if err != nil {
			return nil, err
		}
		p = append(p, t)
	}
	return p, nil
}

// Degrees builds an unaltered phrase from plain degrees.
func Degrees(ds ...int) Phrase {
	p := make(Phrase, len(ds))
	for i, d := range ds {
		p[i] = T(d)
	}
	return p
}
