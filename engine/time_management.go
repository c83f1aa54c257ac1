package engine

import (
	"context"
	"time"
)

// TimeHandler tracks the budget of one search. The soft limit stops new
// iterations from starting; the hard limit aborts the running one.
type TimeHandler struct {
	ctx        context.Context
	start      time.Time
	softLimit  time.Time
	hardLimit  time.Time
	stopSearch bool
}

func (th *TimeHandler) init(ctx context.Context, budget time.Duration) {
	th.ctx = ctx
	th.start = time.Now()
	th.stopSearch = false
	if budget <= 0 {
		budget = DefaultMoveTime
	}
	th.softLimit = th.start.Add(budget / 2)
	th.hardLimit = th.start.Add(budget)
}

// SoftTimeExceeded reports whether another iteration is unlikely to finish.
func (th *TimeHandler) SoftTimeExceeded() bool {
	return time.Now().After(th.softLimit)
}

/*
  - True if we're out of time or the caller gave up on us
  - False if we still got time
*/
func (th *TimeHandler) TimeStatus() bool {
	if th.stopSearch {
		return true
	}
	if time.Now().After(th.hardLimit) || (th.ctx != nil && th.ctx.Err() != nil) {
		th.stopSearch = true
	}
	return th.stopSearch
}

func (th *TimeHandler) Elapsed() time.Duration { return time.Since(th.start) }
