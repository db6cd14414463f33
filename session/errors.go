package session

import "github.com/pkg/errors"

var (
	// ErrCapabilityUnavailable means QoS, HT or A-MPDU support is not
	// active on the link; the frame was refused or answered with DELBA.
	ErrCapabilityUnavailable = errors.New("ba: required capability inactive")

	// ErrUnknownSession means no stream record matched the frame.
	ErrUnknownSession = errors.New("ba: no matching session")

	// ErrPolicyRejected means the peer asked for delayed block ack,
	// which is not supported.
	ErrPolicyRejected = errors.New("ba: delayed block ack not supported")

	// ErrStaleNegotiation means a duplicate response or a dialog token
	// that does not match the pending attempt.
	ErrStaleNegotiation = errors.New("ba: stale negotiation")
)
