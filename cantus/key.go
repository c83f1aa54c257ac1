package cantus

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultTonic                 = 60
	DefaultPhraseGap             = 500 * time.Millisecond
	DefaultOctaveAnchorThreshold = 12
)

// ErrNoMatch is returned where a classifier failure has to cross an error API.
var ErrNoMatch = errors.New("cantus: phrase does not match")

// ConfigurationError reports an invalid KeyContext field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// KeyContext fixes the tonic and boundary parameters for a session.
type KeyContext struct {
	Tonic                 int
	PhraseGap             time.Duration
	OctaveAnchorThreshold int
}

// DefaultKey is C4 with a 500ms phrase gap.
func DefaultKey() KeyContext {
	return KeyContext{
		Tonic:                 DefaultTonic,
		PhraseGap:             DefaultPhraseGap,
		OctaveAnchorThreshold: DefaultOctaveAnchorThreshold,
	}
}

func (k KeyContext) Validate() error {
	if k.Tonic < 0 || k.Tonic > 127 {
		return &ConfigurationError{Field: "tonic", Reason: fmt.Sprintf("%d is outside 0..127", k.Tonic)}
	}
	if k.Tonic+12 > 127 {
		return &ConfigurationError{Field: "tonic", Reason: "octave anchor would exceed note 127"}
	}
	if k.PhraseGap <= 0 {
		return &ConfigurationError{Field: "phrase_gap", Reason: "must be positive"}
	}
	if k.OctaveAnchorThreshold < 1 || k.OctaveAnchorThreshold > 127 {
		return &ConfigurationError{Field: "octave_anchor_threshold", Reason: fmt.Sprintf("%d is outside 1..127", k.OctaveAnchorThreshold)}
	}
	return nil
}
