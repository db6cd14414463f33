package session

import (
	"sync"
	"time"

	"github.com/rtlab/ba"
)

// Stream is the per-(peer, TID) traffic stream record. It owns up to
// three BA records: a pending and an admitted agreement on the transmit
// side and an admitted agreement on the receive side. All of them, and
// the retry flags, are guarded by mu; inbound frame handlers and timer
// callbacks both serialize through it.
type Stream struct {
	mu sync.Mutex

	peer ba.Addr
	tid  ba.TID

	txAdmitted record
	txPending  record
	rxAdmitted record

	addBaInProgress bool
	addBaDelayed    bool
	usingBlockAck   bool
	txSeq           uint16
}

// NewStream creates an empty stream record for a peer/TID pair. All BA
// records start invalid.
func NewStream(peer ba.Addr, tid ba.TID) *Stream {
	return &Stream{peer: peer, tid: tid}
}

func (s *Stream) Peer() ba.Addr { return s.peer }
func (s *Stream) TID() ba.TID   { return s.tid }

// AddBaInProgress reports whether an ADDBA-Request is outstanding.
func (s *Stream) AddBaInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBaInProgress
}

// AddBaDelayed reports whether the last negotiation attempt failed and
// the external scheduler should back off before initiating again.
func (s *Stream) AddBaDelayed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBaDelayed
}

// UsingBlockAck reports whether the transmit path is currently
// aggregating under an admitted agreement.
func (s *Stream) UsingBlockAck() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usingBlockAck
}

// SetUsingBlockAck is called by the aggregation layer once it starts or
// stops transmitting under the admitted agreement.
func (s *Stream) SetUsingBlockAck(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usingBlockAck = v
}

// TxSequence returns the current transmit sequence number.
func (s *Stream) TxSequence() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txSeq
}

// SetTxSequence records the transmit sequence number the data path is
// at; InitiateSession starts aggregation a few frames past it.
func (s *Stream) SetTxSequence(seq uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txSeq = seq % 4096
}

// TxAdmitted returns a snapshot of the admitted transmit-side record.
func (s *Stream) TxAdmitted() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txAdmitted.state()
}

// TxPending returns a snapshot of the pending transmit-side record.
func (s *Stream) TxPending() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txPending.state()
}

// RxAdmitted returns a snapshot of the admitted receive-side record.
func (s *Stream) RxAdmitted() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rxAdmitted.state()
}

// Reset discards all agreements and flags, canceling any timers. Used
// when a stream record is recycled.
func (s *Stream) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetRecord(&s.txAdmitted)
	s.resetRecord(&s.txPending)
	s.resetRecord(&s.rxAdmitted)
	s.addBaInProgress = false
	s.addBaDelayed = false
	s.usingBlockAck = false
	s.txSeq = 0
}

// activate marks the record valid and, for a nonzero duration, arms its
// timer. fire runs with the stream mutex held; a record deactivated
// before the callback gets the lock is never observed by it.
func (s *Stream) activate(r *record, d time.Duration, fire func()) {
	r.valid = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if d == 0 || fire == nil {
		return
	}
	gen := r.gen
	r.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r.gen != gen || !r.valid {
			return
		}
		fire()
	})
}

// deactivate invalidates the record and cancels its timer. Idempotent;
// bumping gen guarantees a callback that already left AfterFunc cannot
// act on the record once it acquires the lock.
func (s *Stream) deactivate(r *record) {
	r.valid = false
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (s *Stream) resetRecord(r *record) {
	s.deactivate(r)
	r.dialogToken = 0
	r.params = 0
	r.timeout = 0
	r.startSeq = 0
}

// deleteTxBA deactivates both transmit-side records and reports whether
// either was valid, in which case the caller owes the peer a DELBA.
func (s *Stream) deleteTxBA() bool {
	send := false
	if s.txPending.valid {
		s.deactivate(&s.txPending)
		send = true
	}
	if s.txAdmitted.valid {
		s.deactivate(&s.txAdmitted)
		send = true
	}
	return send
}

// deleteRxBA deactivates the receive-side record and reports whether it
// was valid.
func (s *Stream) deleteRxBA() bool {
	if !s.rxAdmitted.valid {
		return false
	}
	s.deactivate(&s.rxAdmitted)
	return true
}
