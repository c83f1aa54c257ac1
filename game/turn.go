// Package game drives a chess game played as melodic phrases.
package game

import (
	"melody/cantus"
	"melody/rules"
)

// Oracle answers the legality questions a Turn needs.
type Oracle interface {
	IsLegal(uci string) bool
	PieceAt(sq cantus.Square) (rules.Piece, bool)
}

type State int

const (
	AwaitingPhrase1 State = iota
	AwaitingPhrase2
	AwaitingPromotion
	Finalized
)

func (s State) String() string {
	return [...]string{"awaiting-phrase-1", "awaiting-phrase-2", "awaiting-promotion", "finalized"}[s]
}

// Minimum collapsed phrase length awaited in each state. The landing phrase
// may be the two-token short form.
const (
	minStartPhrase     = 3
	minLandingPhrase   = 2
	minPromotionPhrase = 2
)

type StepKind int

const (
	StepContinue StepKind = iota
	StepMove
	StepRetry
)

// Retry reasons, also used as metric labels.
const (
	ReasonIllegalCastling = "illegal-castling"
	ReasonStartSquare     = "start-square"
	ReasonLandingSquare   = "landing-square"
	ReasonSameSquare      = "same-square"
	ReasonIllegalMove     = "illegal-move"
	ReasonPromotionPiece  = "promotion-piece"
)

// Classifier names reported in Step.
const (
	ClassCastling  = "castling"
	ClassSquare    = "square"
	ClassPromotion = "promotion"
)

// Step is the result of feeding one phrase to a Turn.
type Step struct {
	Kind StepKind
	// Move is the finalized move in UCI notation when Kind is StepMove.
	Move string
	// Reason explains a StepRetry.
	Reason string
	// Classifier names the decoder that read the phrase.
	Classifier string
}

// Decoded reports whether the classifier recognised the phrase, even if the
// resulting move was then rejected.
func (s Step) Decoded() bool {
	switch s.Reason {
	case ReasonStartSquare, ReasonLandingSquare, ReasonPromotionPiece:
		return false
	}
	return true
}

// Turn collects the two or three phrases of one move attempt. Any rejected
// phrase resets it to AwaitingPhrase1; the side to move never changes.
type Turn struct {
	side   cantus.Side
	oracle Oracle

	state   State
	start   cantus.Square
	landing cantus.Square
}

func NewTurn(side cantus.Side, oracle Oracle) *Turn {
	return &Turn{side: side, oracle: oracle}
}

func (t *Turn) State() State { return t.state }

func (t *Turn) Side() cantus.Side { return t.side }

// Start is the decoded start square once phrase one was accepted.
func (t *Turn) Start() cantus.Square { return t.start }

// Need is the minimum structural length of the phrase awaited next.
func (t *Turn) Need() int {
	switch t.state {
	case AwaitingPhrase2:
		return minLandingPhrase
	case AwaitingPromotion:
		return minPromotionPhrase
	}
	return minStartPhrase
}

func (t *Turn) Reset() {
	t.state = AwaitingPhrase1
	t.start = cantus.Square{}
	t.landing = cantus.Square{}
}

// Feed advances the state machine by one captured phrase. A Turn fed after
// it finalized starts a new attempt.
func (t *Turn) Feed(p cantus.Phrase) Step {
	switch t.state {
	case AwaitingPhrase2:
		return t.feedLanding(p)
	case AwaitingPromotion:
		return t.feedPromotion(p)
	case Finalized:
		t.Reset()
	}
	return t.feedStart(p)
}

func (t *Turn) retry(class, reason string) Step {
	t.Reset()
	return Step{Kind: StepRetry, Reason: reason, Classifier: class}
}

func (t *Turn) finalize(class, uci string) Step {
	t.state = Finalized
	return Step{Kind: StepMove, Move: uci, Classifier: class}
}

func castlingMove(side cantus.Side, cs cantus.CastlingSide) string {
	rank := "1"
	if side == cantus.Black {
		rank = "8"
	}
	if cs == cantus.Queenside {
		return "e" + rank + "c" + rank
	}
	return "e" + rank + "g" + rank
}

func (t *Turn) feedStart(p cantus.Phrase) Step {
	if cs, ok := cantus.DetectCastling(p); ok {
		uci := castlingMove(t.side, cs)
		if !t.oracle.IsLegal(uci) {
			return t.retry(ClassCastling, ReasonIllegalCastling)
		}
		return t.finalize(ClassCastling, uci)
	}
	sq, ok := cantus.DecodeSquare(p, t.side, false)
	if !ok {
		return t.retry(ClassSquare, ReasonStartSquare)
	}
	t.start = sq
	t.state = AwaitingPhrase2
	return Step{Kind: StepContinue, Classifier: ClassSquare}
}

func (t *Turn) lastRank() int {
	if t.side == cantus.Black {
		return 1
	}
	return 8
}

func (t *Turn) feedLanding(p cantus.Phrase) Step {
	sq, ok := cantus.DecodeSquare(p, t.side, true)
	if !ok {
		return t.retry(ClassSquare, ReasonLandingSquare)
	}
	if sq == t.start {
		return t.retry(ClassSquare, ReasonSameSquare)
	}
	uci := t.start.String() + sq.String()
	if t.oracle.IsLegal(uci) {
		return t.finalize(ClassSquare, uci)
	}
	if piece, ok := t.oracle.PieceAt(t.start); ok && piece.Kind == rules.Pawn &&
		sq.Rank == t.lastRank() && t.oracle.IsLegal(uci+"q") {
		t.landing = sq
		t.state = AwaitingPromotion
		return Step{Kind: StepContinue, Classifier: ClassSquare}
	}
	return t.retry(ClassSquare, ReasonIllegalMove)
}

func (t *Turn) feedPromotion(p cantus.Phrase) Step {
	piece, ok := cantus.DecodePromotion(p)
	if !ok {
		return t.retry(ClassPromotion, ReasonPromotionPiece)
	}
	uci := t.start.String() + t.landing.String() + piece.Letter()
	if !t.oracle.IsLegal(uci) {
		return t.retry(ClassPromotion, ReasonIllegalMove)
	}
	return t.finalize(ClassPromotion, uci)
}
