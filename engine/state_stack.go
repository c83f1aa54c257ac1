package engine

import "github.com/dylhunn/dragontoothmg"

const fiftyMoveLimit = 100

// State captures the information we need to reason about repetitions and draws.
type State struct {
	Hash   uint64
	Rule50 int
}

func (s *Searcher) pushState(b *dragontoothmg.Board) {
	s.states = append(s.states, State{Hash: b.Hash(), Rule50: int(b.Halfmoveclock)})
}

func (s *Searcher) popState() {
	if len(s.states) > 0 {
		s.states = s.states[:len(s.states)-1]
	}
}

// isDraw treats a single repetition inside the search tree as a draw, and
// the fifty-move rule as usual.
func (s *Searcher) isDraw() bool {
	n := len(s.states)
	if n == 0 {
		return false
	}
	curr := s.states[n-1]
	if curr.Rule50 >= fiftyMoveLimit {
		return true
	}
	start := Max(0, n-1-curr.Rule50)
	for i := n - 3; i >= start; i -= 2 {
		if s.states[i].Hash == curr.Hash {
			return true
		}
	}
	return false
}

func (s *Searcher) applyMoveWithState(b *dragontoothmg.Board, m dragontoothmg.Move) func() {
	unapply := b.Apply(m)
	s.pushState(b)
	return func() {
		unapply()
		s.popState()
	}
}
