// Package capture turns a stream of keyboard events into phrases.
package capture

import (
	"sync/atomic"
	"time"
)

type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	Sustain
)

// Event is one input message from the instrument.
type Event struct {
	Kind     Kind
	Pitch    int
	Velocity int
	Value    int // controller value for Sustain
}

// SustainDown reports whether a Sustain event presses the pedal.
func (e Event) SustainDown() bool { return e.Value >= 64 }

// Source is polled by the Segmenter. Poll never blocks longer than timeout
// and reports false when no event arrived in that window.
type Source interface {
	Poll(timeout time.Duration) (Event, bool)
}

const DefaultQueueSize = 256

// Queue is a bounded FIFO between the driver callback and the Segmenter.
// Push never blocks: when the queue is full the event is dropped.
type Queue struct {
	ch      chan Event
	dropped atomic.Uint64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Event, size)}
}

// Push reports whether the event was queued.
func (q *Queue) Push(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

func (q *Queue) Poll(timeout time.Duration) (Event, bool) {
	select {
	case e := <-q.ch:
		return e, true
	default:
	}
	if timeout <= 0 {
		return Event{}, false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case e := <-q.ch:
		return e, true
	case <-timer.C:
		return Event{}, false
	}
}

// Drain discards everything queued and returns how many events it dropped.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

func (q *Queue) Len() int { return len(q.ch) }

func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
