package capture

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"melody/cantus"
)

// Boundary selects what ends a phrase.
type Boundary int

const (
	// BoundaryPedal closes a phrase when the sustain pedal is released.
	BoundaryPedal Boundary = iota
	// BoundarySilence closes a phrase once no note arrived for the phrase gap.
	BoundarySilence
)

func (b Boundary) String() string {
	if b == BoundarySilence {
		return "silence"
	}
	return "pedal"
}

func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "pedal", "sustain":
		return BoundaryPedal, nil
	case "silence", "gap":
		return BoundarySilence, nil
	}
	return BoundaryPedal, fmt.Errorf("unknown boundary policy %q", s)
}

const DefaultPollInterval = 100 * time.Millisecond

// Segmenter reads one phrase at a time from a Source.
type Segmenter struct {
	Key          cantus.KeyContext
	Source       Source
	Boundary     Boundary
	PollInterval time.Duration
	Logger       *zap.Logger

	// Now is the clock used to measure the phrase gap; defaults to time.Now.
	Now func() time.Time
	// OnNote, if set, sees every token as it is heard.
	OnNote func(pitch int, tok cantus.Token)
}

func NewSegmenter(key cantus.KeyContext, src Source, boundary Boundary, logger *zap.Logger) *Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Segmenter{
		Key:          key,
		Source:       src,
		Boundary:     boundary,
		PollInterval: DefaultPollInterval,
		Logger:       logger,
		Now:          time.Now,
	}
}

// Capture blocks until a phrase of at least minStructural collapsed tokens is
// closed by the boundary policy, or ctx is done. Shorter phrases are not
// discarded: notes keep accumulating until a later boundary succeeds.
func (s *Segmenter) Capture(ctx context.Context, minStructural int) (cantus.Phrase, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var (
		raw       []cantus.Token
		lastNote  time.Time
		pedalDown bool
	)

	tryClose := func() (cantus.Phrase, bool) {
		if len(raw) == 0 {
			return nil, false
		}
		p := cantus.Collapse(raw)
		if len(p) >= minStructural {
			return p, true
		}
		logger.Debug("phrase too short, still listening",
			zap.Stringer("phrase", p), zap.Int("min", minStructural))
		return nil, false
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, ok := s.Source.Poll(interval)
		if !ok {
			if s.Boundary == BoundarySilence && len(raw) > 0 && now().Sub(lastNote) > s.Key.PhraseGap {
				if p, done := tryClose(); done {
					return p, nil
				}
			}
			continue
		}
		switch ev.Kind {
		case NoteOn:
			if ev.Velocity <= 0 {
				continue
			}
			tok := s.Key.DegreeOf(ev.Pitch)
			raw = append(raw, tok)
			lastNote = now()
			if s.OnNote != nil {
				s.OnNote(ev.Pitch, tok)
			}
		case Sustain:
			// an up message closes even if the matching down was missed
			pedalDown = ev.SustainDown()
			if !pedalDown && s.Boundary == BoundaryPedal {
				if p, done := tryClose(); done {
					return p, nil
				}
			}
		}
	}
}
