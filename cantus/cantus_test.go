package cantus

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func allSquares() []Square {
	var out []Square
	for f := byte('a'); f <= 'h'; f++ {
		for r := 1; r <= 8; r++ {
			out = append(out, Square{File: f, Rank: r})
		}
	}
	return out
}

func TestDegreeOf(t *testing.T) {
	k := DefaultKey()
	tests := []struct {
		pitch int
		want  Token
	}{
		{60, T(1)},
		{61, Flat(2)},
		{62, T(2)},
		{63, Flat(3)},
		{64, T(3)},
		{65, T(4)},
		{66, Sharp(4)},
		{67, T(5)},
		{68, Flat(6)},
		{69, T(6)},
		{70, Flat(7)},
		{71, T(7)},
		{72, T(8)},
		{84, T(8)},
		{48, T(1)},
		{59, T(7)},
		{55, T(5)},
	}
	for _, tt := range tests {
		if got := k.DegreeOf(tt.pitch); got != tt.want {
			t.Fatalf("DegreeOf(%d) = %v, want %v", tt.pitch, got, tt.want)
		}
	}
}

func TestDegreeOfThreshold(t *testing.T) {
	k := DefaultKey()
	k.OctaveAnchorThreshold = 24
	if got := k.DegreeOf(72); got != T(1) {
		t.Fatalf("72 below threshold should be degree 1, got %v", got)
	}
	if got := k.DegreeOf(84); got != T(8) {
		t.Fatalf("84 at threshold should be degree 8, got %v", got)
	}
}

func TestPitchOf(t *testing.T) {
	k := DefaultKey()
	want := map[int]int{1: 60, 2: 62, 3: 64, 4: 65, 5: 67, 6: 69, 7: 71, 8: 72}
	for d, p := range want {
		if got := k.PitchOf(d, 0); got != p {
			t.Fatalf("PitchOf(%d) = %d, want %d", d, got, p)
		}
	}
	if got := k.PitchOf(5, -1); got != 55 {
		t.Fatalf("PitchOf(5,-1) = %d, want 55", got)
	}
}

func TestPitchOfTokenRoundTrip(t *testing.T) {
	k := DefaultKey()
	var phrases []Phrase
	for _, side := range []Side{White, Black} {
		for _, sq := range allSquares() {
			phrases = append(phrases, EncodeSquare(sq, side))
		}
		phrases = append(phrases, EncodeCastling(side, Kingside), EncodeCastling(side, Queenside))
		for p := Rook; p <= Queen; p++ {
			phrases = append(phrases, EncodePromotion(p, side))
		}
	}
	for _, p := range phrases {
		for _, tok := range p {
			if got := k.DegreeOf(k.PitchOfToken(tok)); got != tok {
				t.Fatalf("token %v renders to %d which maps back to %v", tok, k.PitchOfToken(tok), got)
			}
		}
	}
}

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		raw  Phrase
		want Phrase
	}{
		{"trailing repeat kept", Degrees(1, 5, 5), Degrees(1, 5, 5)},
		{"interior repeat merged", Degrees(1, 5, 5, 2), Degrees(1, 5, 2)},
		{"long trailing run", Degrees(1, 1, 3, 3, 3), Degrees(1, 3, 3)},
		{"no repeats", Degrees(1, 4, 6), Degrees(1, 4, 6)},
		{"single", Degrees(8), Degrees(8)},
		{"empty", Phrase{}, Phrase{}},
		{"queen keeps its natural third", Phrase{T(1), Flat(2), T(1), Flat(2), Flat(3), T(3)}, Phrase{T(1), Flat(2), T(1), Flat(2), Flat(3), T(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collapse(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Collapse(%v) mismatch (-want +got):\n%s", tt.raw, diff)
			}
			if diff := cmp.Diff(got, Collapse(got)); diff != "" {
				t.Fatalf("Collapse not idempotent on %v (-once +twice):\n%s", got, diff)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   Phrase
		side Side
		want Phrase
	}{
		{"white mordent protected", Degrees(1, 7, 1, 1), White, Degrees(1, 7, 1, 1)},
		{"closing tonic dropped", Degrees(1, 5, 4, 1), White, Degrees(1, 5, 4)},
		{"short phrase untouched", Degrees(1, 5, 1), White, Degrees(1, 5, 1)},
		{"wrong anchor", Degrees(8, 5, 4), White, Phrase{}},
		{"black mordent protected", Degrees(8, 2, 8, 8), Black, Degrees(8, 2, 8, 8)},
		{"black closing octave dropped", Degrees(8, 3, 5, 8), Black, Degrees(8, 3, 5)},
		{"empty", Phrase{}, Black, Phrase{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Canonicalize(tt.in, tt.side)); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeSquare(t *testing.T) {
	tests := []struct {
		name      string
		in        Phrase
		side      Side
		shortForm bool
		want      string
		ok        bool
	}{
		{"white mordent a1", Degrees(1, 7, 1, 1), White, false, "a1", true},
		{"white mordent needs rank", Degrees(1, 7, 1), White, false, "g1", true},
		{"white generic", Degrees(1, 5, 4), White, false, "e4", true},
		{"white generic with closing tonic", Degrees(1, 5, 4, 1), White, false, "e4", true},
		{"white h file", Degrees(1, 8, 3), White, false, "h3", true},
		{"short form allowed", Degrees(1, 4), White, true, "d4", true},
		{"short form refused", Degrees(1, 4), White, false, "", false},
		{"short form h", Degrees(1, 8), White, true, "h8", true},
		{"black h mordent", Degrees(8, 2, 8, 5), Black, false, "h5", true},
		{"black a flip", Degrees(8, 1, 6), Black, false, "a6", true},
		{"black generic", Degrees(8, 4, 5), Black, false, "d5", true},
		{"black b8 is not a mordent", Degrees(8, 2, 8), Black, false, "b8", true},
		{"wrong anchor", Degrees(8, 4, 5), White, false, "", false},
		{"too short", Degrees(1), White, true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeSquare(tt.in, tt.side, tt.shortForm)
			if ok != tt.ok {
				t.Fatalf("DecodeSquare(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Fatalf("DecodeSquare(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMordentRuleNeedsExplicitRank(t *testing.T) {
	if rule := SquareRule(Degrees(1, 7, 1), White); rule == "edge-mordent" {
		t.Fatalf("three-token mordent must not use the edge-mordent rule")
	}
	if rule := SquareRule(Degrees(1, 7, 1, 4), White); rule != "edge-mordent" {
		t.Fatalf("expected edge-mordent, got %q", rule)
	}
}

func TestSquareRoundTrip(t *testing.T) {
	for _, side := range []Side{White, Black} {
		for _, sq := range allSquares() {
			p := EncodeSquare(sq, side)
			got, ok := DecodeSquare(p, side, false)
			if !ok || got != sq {
				t.Fatalf("%s %s: encoded %v decoded to %v (ok=%v)", side, sq, p, got, ok)
			}
			// a phrase heard through the segmenter is collapsed first
			got, ok = DecodeSquare(Collapse(p), side, false)
			if !ok || got != sq {
				t.Fatalf("%s %s: collapsed %v decoded to %v (ok=%v)", side, sq, Collapse(p), got, ok)
			}
		}
	}
}

func TestEncodeSquareShapes(t *testing.T) {
	tests := []struct {
		sq   string
		side Side
		want Phrase
	}{
		{"e4", White, Degrees(1, 5, 4)},
		{"a3", White, Degrees(1, 7, 1, 3)},
		{"h2", White, Degrees(1, 8, 2)},
		{"h7", Black, Degrees(8, 2, 8, 7)},
		{"a7", Black, Degrees(8, 1, 7)},
		{"c6", Black, Degrees(8, 3, 6)},
	}
	for _, tt := range tests {
		sq, err := ParseSquare(tt.sq)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tt.want, EncodeSquare(sq, tt.side)); diff != "" {
			t.Fatalf("EncodeSquare(%s, %s) mismatch (-want +got):\n%s", tt.sq, tt.side, diff)
		}
	}
}

func TestDetectCastling(t *testing.T) {
	tests := []struct {
		name string
		in   Phrase
		want CastlingSide
		ok   bool
	}{
		{"default kingside", Phrase{T(1), Sharp(4), T(5)}, Kingside, true},
		{"queenside run", Phrase{T(1), Sharp(4), T(5), T(3)}, Queenside, true},
		{"kingside run", Phrase{T(8), Sharp(4), T(5), T(6), T(7)}, Kingside, true},
		{"natural fourth", Degrees(1, 4, 5), Kingside, false},
		{"wrong anchor", Phrase{T(3), Sharp(4), T(5)}, Kingside, false},
		{"too short", Phrase{T(1), Sharp(4)}, Kingside, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectCastling(tt.in)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("DetectCastling(%v) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
	for _, side := range []Side{White, Black} {
		for _, cs := range []CastlingSide{Kingside, Queenside} {
			got, ok := DetectCastling(EncodeCastling(side, cs))
			if !ok || got != cs {
				t.Fatalf("%s %s round trip gave %v,%v", side, cs, got, ok)
			}
		}
	}
}

func TestDecodePromotion(t *testing.T) {
	tests := []struct {
		name string
		in   Phrase
		want PromotionPiece
		ok   bool
	}{
		{"highest step wins", Phrase{T(1), Flat(2), T(1), Flat(2), Flat(3)}, Bishop, true},
		{"rook", Phrase{T(1), Flat(2), T(1)}, Rook, true},
		{"queen jump", Phrase{T(8), Flat(2), T(3)}, Queen, true},
		{"step order irrelevant", Phrase{T(1), Flat(2), T(3), T(1)}, Queen, true},
		{"cue alone", Phrase{T(1), Flat(2)}, 0, false},
		{"no cue", Degrees(1, 2, 3), 0, false},
		{"wrong anchor", Phrase{T(5), Flat(2), T(1)}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodePromotion(tt.in)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("DecodePromotion(%v) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
	for _, side := range []Side{White, Black} {
		for p := Rook; p <= Queen; p++ {
			enc := EncodePromotion(p, side)
			if got, ok := DecodePromotion(enc); !ok || got != p {
				t.Fatalf("%s %s: %v decoded to %v,%v", side, p, enc, got, ok)
			}
			if got, ok := DecodePromotion(Collapse(enc)); !ok || got != p {
				t.Fatalf("%s %s: collapsed %v decoded to %v,%v", side, p, Collapse(enc), got, ok)
			}
		}
	}
}

func TestParsePhrase(t *testing.T) {
	p, err := ParsePhrase("1 #4 5, b2 8")
	if err != nil {
		t.Fatal(err)
	}
	want := Phrase{T(1), Sharp(4), T(5), Flat(2), T(8)}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if p.String() != "1 #4 5 b2 8" {
		t.Fatalf("String() = %q", p.String())
	}
	if _, err := ParsePhrase("1 9"); err == nil {
		t.Fatalf("expected error for degree 9")
	}
}

func TestKeyValidate(t *testing.T) {
	if err := DefaultKey().Validate(); err != nil {
		t.Fatalf("default key invalid: %v", err)
	}
	bad := DefaultKey()
	bad.Tonic = 120
	var cfgErr *ConfigurationError
	if err := bad.Validate(); !errors.As(err, &cfgErr) || cfgErr.Field != "tonic" {
		t.Fatalf("expected tonic ConfigurationError, got %v", err)
	}
	bad = DefaultKey()
	bad.OctaveAnchorThreshold = 0
	if err := bad.Validate(); !errors.As(err, &cfgErr) || cfgErr.Field != "octave_anchor_threshold" {
		t.Fatalf("expected threshold ConfigurationError, got %v", err)
	}
}
