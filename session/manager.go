package session

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rtlab/ba"
	"github.com/rtlab/ba/wire"
)

// DefaultSetupTimeout bounds how long an ADDBA-Request may stay pending
// before the attempt is abandoned.
const DefaultSetupTimeout = 200 * time.Millisecond

// Manager runs the BA negotiation state machine for both roles. Inbound
// action frames enter through HandleFrame; the aggregation layer drives
// the originator side through InitiateSession and TerminateSession.
type Manager struct {
	caps    ba.Capabilities
	tr      ba.Transport
	streams StreamTable

	setupTimeout time.Duration
	log          ba.Logger
}

// NewManager returns a session manager. A nil table gets a fresh
// in-memory Table.
func NewManager(caps ba.Capabilities, tr ba.Transport, streams StreamTable, opts ...ba.Option) (*Manager, error) {
	m := &Manager{
		caps:         caps,
		tr:           tr,
		streams:      streams,
		setupTimeout: DefaultSetupTimeout,
		log:          ba.GetLogger().ChildLogger(map[string]interface{}{"module": "ba"}),
	}
	if m.streams == nil {
		m.streams = NewTable()
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, errors.Wrap(err, "can't set options")
		}
	}
	return m, nil
}

func (m *Manager) SetSetupTimeout(d time.Duration) error {
	m.setupTimeout = d
	return nil
}

func (m *Manager) SetLogger(l ba.Logger) error {
	m.log = l
	return nil
}

// Streams returns the stream table the manager operates on.
func (m *Manager) Streams() StreamTable {
	return m.streams
}

// HandleFrame decodes a received management frame and dispatches it.
// Each frame is handled independently; an error here never affects
// other sessions.
func (m *Manager) HandleFrame(frame []byte) error {
	f, err := wire.Parse(frame)
	if err != nil {
		m.log.Debugf("drop frame: %v", err)
		return err
	}

	switch t := f.(type) {
	case *wire.AddbaRequest:
		return m.onAddbaRequest(t)
	case *wire.AddbaResponse:
		return m.onAddbaResponse(t)
	case *wire.Delba:
		return m.onDelba(t)
	}
	return wire.ErrUnknownAction
}

// InitiateSession starts (or restarts, if overwritePending is set) an
// ADDBA negotiation on the transmit side of s. A valid pending attempt
// is left alone unless overwritePending is set.
func (m *Manager) InitiateSession(s *Stream, policy wire.Policy, overwritePending bool) {
	s.mu.Lock()
	p := &s.txPending
	if p.valid && !overwritePending {
		s.mu.Unlock()
		return
	}

	s.deactivate(p)

	// Only the latest dialog token is kept; stale responses are
	// rejected by token mismatch.
	p.dialogToken++
	p.params = 0
	p.params.SetAMSDUSupported(false)
	p.params.SetPolicy(policy)
	p.params.SetTID(s.tid)
	p.params.SetBufferSize(m.bufferSize())
	p.timeout = 0
	// Aggregation starts 3 frames past the current sequence so frames
	// already queued go out unaggregated.
	p.startSeq = wire.NewSeqControl(s.txSeq + 3)
	s.addBaInProgress = true

	req := &wire.AddbaRequest{
		DialogToken: p.dialogToken,
		Params:      p.params,
		Timeout:     p.timeout,
		StartSeq:    p.startSeq,
	}
	s.activate(p, m.setupTimeout, func() { m.setupExpired(s) })
	peer := s.peer
	s.mu.Unlock()

	m.log.Debugf("addba request to %v tid %d token %d", peer, req.Params.TID(), req.DialogToken)
	m.send(peer, req.Body())
}

// TerminateSession ends the given direction of s locally, notifying the
// peer with a single DELBA if any agreement was live.
func (m *Manager) TerminateSession(s *Stream, dir ba.Direction) {
	s.mu.Lock()
	var send bool
	if dir == ba.TxDirection {
		send = s.deleteTxBA()
	} else {
		send = s.deleteRxBA()
	}
	s.mu.Unlock()

	if send {
		m.sendDelba(s.peer, s.tid, dir == ba.TxDirection, wire.ReasonEndBA)
	}
}

func (m *Manager) onAddbaRequest(req *wire.AddbaRequest) error {
	m.log.Debugf("addba request from %v tid %d token %d", req.Src, req.Params.TID(), req.DialogToken)

	if !m.caps.QosActive() || !m.caps.HTSupported() {
		m.rejectAddba(req, wire.StatusRefused)
		return errors.WithMessage(ErrCapabilityUnavailable, "addba request")
	}

	s, ok := m.streams.Lookup(req.Src, req.Params.TID(), ba.RxDirection, true)
	if !ok {
		m.rejectAddba(req, wire.StatusRefused)
		return errors.Wrapf(ErrUnknownSession, "no rx stream for %v tid %d", req.Src, req.Params.TID())
	}

	if req.Params.Policy() == wire.PolicyDelayed {
		m.rejectAddba(req, wire.StatusInvalidParameter)
		return errors.WithMessage(ErrPolicyRejected, "addba request")
	}

	s.mu.Lock()
	r := &s.rxAdmitted
	s.deactivate(r)
	r.dialogToken = req.DialogToken
	r.params = req.Params
	r.timeout = req.Timeout
	r.startSeq = req.StartSeq
	r.params.SetBufferSize(m.bufferSize())

	rsp := &wire.AddbaResponse{
		DialogToken: r.dialogToken,
		Status:      wire.StatusSuccess,
		Params:      r.params,
		Timeout:     r.timeout,
	}
	s.activate(r, tuDuration(r.timeout), func() { m.rxInactivityExpired(s) })
	s.mu.Unlock()

	m.send(req.Src, rsp.Body())
	return nil
}

// rejectAddba answers a request that cannot be admitted. The response
// echoes the received parameters with the policy forced to immediate.
func (m *Manager) rejectAddba(req *wire.AddbaRequest, status wire.Status) {
	params := req.Params
	params.SetPolicy(wire.PolicyImmediate)

	rsp := &wire.AddbaResponse{
		DialogToken: req.DialogToken,
		Status:      status,
		Params:      params,
		Timeout:     req.Timeout,
	}
	m.log.Debugf("reject addba from %v: %v", req.Src, status)
	m.send(req.Src, rsp.Body())
}

func (m *Manager) onAddbaResponse(rsp *wire.AddbaResponse) error {
	m.log.Debugf("addba response from %v tid %d token %d status %v", rsp.Src, rsp.Params.TID(), rsp.DialogToken, rsp.Status)

	// The DELBA on every rejection path below carries the parameter
	// set the peer just returned, not the locally pending one.
	if !m.caps.QosActive() || !m.caps.HTSupported() || !m.caps.AMPDUEnabled() {
		m.sendDelba(rsp.Src, rsp.Params.TID(), true, wire.ReasonUnknownBA)
		return errors.WithMessage(ErrCapabilityUnavailable, "addba response")
	}

	s, ok := m.streams.Lookup(rsp.Src, rsp.Params.TID(), ba.TxDirection, false)
	if !ok {
		m.sendDelba(rsp.Src, rsp.Params.TID(), true, wire.ReasonUnknownBA)
		return errors.Wrapf(ErrUnknownSession, "no tx stream for %v tid %d", rsp.Src, rsp.Params.TID())
	}

	s.mu.Lock()
	s.addBaInProgress = false

	if s.txAdmitted.valid {
		// Agreement already set up; later responses are duplicates.
		s.mu.Unlock()
		return errors.WithMessage(ErrStaleNegotiation, "already admitted")
	}
	if !s.txPending.valid || rsp.DialogToken != s.txPending.dialogToken {
		s.mu.Unlock()
		m.sendDelba(rsp.Src, rsp.Params.TID(), true, wire.ReasonUnknownBA)
		return errors.WithMessage(ErrStaleNegotiation, "dialog token mismatch")
	}

	s.deactivate(&s.txPending)

	if rsp.Status != wire.StatusSuccess {
		// Peer refused; back off before the next attempt.
		s.addBaDelayed = true
		s.mu.Unlock()
		return nil
	}

	if rsp.Params.Policy() == wire.PolicyDelayed {
		s.addBaDelayed = true
		s.deactivate(&s.txAdmitted)
		s.mu.Unlock()
		m.sendDelba(rsp.Src, rsp.Params.TID(), true, wire.ReasonEndBA)
		return errors.WithMessage(ErrPolicyRejected, "addba response")
	}

	r := &s.txAdmitted
	r.dialogToken = rsp.DialogToken
	r.timeout = rsp.Timeout
	r.startSeq = s.txPending.startSeq
	r.params = rsp.Params
	s.deactivate(r)
	s.activate(r, tuDuration(r.timeout), func() { m.txInactivityExpired(s) })
	s.mu.Unlock()

	m.log.Infof("tx agreement admitted with %v tid %d", rsp.Src, rsp.Params.TID())
	return nil
}

func (m *Manager) onDelba(d *wire.Delba) error {
	m.log.Debugf("delba from %v tid %d initiator %v reason %v", d.Src, d.Params.TID(), d.Params.Initiator(), d.Reason)

	if !m.caps.QosActive() || !m.caps.HTSupported() {
		return errors.WithMessage(ErrCapabilityUnavailable, "delba")
	}

	// The DELBA itself is the teardown notice; neither path below
	// answers it with another frame.
	if d.Params.Initiator() {
		s, ok := m.streams.Lookup(d.Src, d.Params.TID(), ba.RxDirection, false)
		if !ok {
			return errors.Wrapf(ErrUnknownSession, "no rx stream for %v tid %d", d.Src, d.Params.TID())
		}
		s.mu.Lock()
		s.deleteRxBA()
		s.mu.Unlock()
		return nil
	}

	s, ok := m.streams.Lookup(d.Src, d.Params.TID(), ba.TxDirection, false)
	if !ok {
		return errors.Wrapf(ErrUnknownSession, "no tx stream for %v tid %d", d.Src, d.Params.TID())
	}
	s.mu.Lock()
	s.usingBlockAck = false
	s.addBaInProgress = false
	s.addBaDelayed = false
	s.deleteTxBA()
	s.mu.Unlock()
	return nil
}

// setupExpired runs with the stream mutex held when no response arrived
// for the pending attempt.
func (m *Manager) setupExpired(s *Stream) {
	m.log.Debugf("addba setup timed out for %v tid %d", s.peer, s.tid)
	s.addBaInProgress = false
	s.addBaDelayed = true
	s.deactivate(&s.txPending)
}

// txInactivityExpired runs with the stream mutex held when the admitted
// transmit agreement idles out.
func (m *Manager) txInactivityExpired(s *Stream) {
	tid := s.txAdmitted.params.TID()
	if s.deleteTxBA() {
		m.sendDelba(s.peer, tid, true, wire.ReasonTimeout)
	}
}

// rxInactivityExpired runs with the stream mutex held when the admitted
// receive agreement idles out.
func (m *Manager) rxInactivityExpired(s *Stream) {
	tid := s.rxAdmitted.params.TID()
	if s.deleteRxBA() {
		m.sendDelba(s.peer, tid, false, wire.ReasonTimeout)
	}
}

func (m *Manager) sendDelba(dst ba.Addr, tid ba.TID, initiator bool, reason wire.Reason) {
	d := &wire.Delba{Reason: reason}
	d.Params.SetInitiator(initiator)
	d.Params.SetTID(tid)
	m.log.Debugf("delba to %v tid %d reason %v", dst, tid, reason)
	m.send(dst, d.Body())
}

func (m *Manager) send(dst ba.Addr, body []byte) {
	if err := m.tr.SendManagementFrame(dst, body); err != nil {
		m.log.Errorf("send to %v: %v", dst, err)
	}
}

func (m *Manager) bufferSize() uint16 {
	// Half-rate links aggregate a single frame.
	if m.caps.HalfRateMode() {
		return 1
	}
	return 32
}

func tuDuration(tu uint16) time.Duration {
	return time.Duration(tu) * ba.TU
}
