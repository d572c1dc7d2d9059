// Package barrier implements the symmetric two-slot rendezvous used by
// the Ticker and Detector to keep tick production and snapshot
// consumption strictly alternating (spec.md §4.7).
package barrier

import (
	"errors"
	"sync"
)

// ErrDisconnected is returned by Wait once either side has called
// Close. The caller treats this as clean shutdown, not a fault.
var ErrDisconnected = errors.New("barrier: counterpart disconnected")

type shared struct {
	done chan struct{}
	once sync.Once
}

func (s *shared) close() {
	s.once.Do(func() { close(s.done) })
}

// Side is one half of a TickBarrier pair. A Side is owned by exactly
// one goroutine; it is not safe to call Wait concurrently on the same
// Side.
type Side struct {
	send chan struct{}
	recv chan struct{}
	sh   *shared
	// sendFirst selects the A-side protocol (send then recv); the
	// B-side does the opposite (recv then send). This ordering is what
	// guarantees neither side can observe itself past the barrier
	// before the other has also arrived.
	sendFirst bool
}

// New constructs a barrier pair. sideA sends then receives; sideB
// receives then sends (spec.md §4.7).
func New() (sideA, sideB *Side) {
	var ab = make(chan struct{})
	var ba = make(chan struct{})
	var sh = &shared{done: make(chan struct{})}

	sideA = &Side{send: ab, recv: ba, sh: sh, sendFirst: true}
	sideB = &Side{send: ba, recv: ab, sh: sh, sendFirst: false}

	return sideA, sideB
}

// Wait blocks until the counterpart has also called Wait, or returns
// ErrDisconnected as soon as either side has called Close.
func (s *Side) Wait() error {
	if s.sendFirst {
		select {
		case s.send <- struct{}{}:
		case <-s.sh.done:
			return ErrDisconnected
		}

		select {
		case <-s.recv:
			return nil
		case <-s.sh.done:
			return ErrDisconnected
		}
	}

	select {
	case <-s.recv:
	case <-s.sh.done:
		return ErrDisconnected
	}

	select {
	case s.send <- struct{}{}:
		return nil
	case <-s.sh.done:
		return ErrDisconnected
	}
}

// Close tears down the pair: this Wait call and every future Wait call
// on either Side returns ErrDisconnected. Safe to call from either
// side, any number of times.
func (s *Side) Close() {
	s.sh.close()
}
