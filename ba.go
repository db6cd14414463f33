// Package ba implements the control plane of 802.11 Block-Ack sessions:
// ADDBA request/response negotiation, DELBA teardown and timeout driven
// recovery, per peer station and traffic identifier. Frame transmission,
// capability negotiation and traffic-stream ownership stay outside this
// module and are consumed through the interfaces below.
package ba

import "time"

// TU is one 802.11 time unit. Peer-advertised BA timeouts are counted
// in TUs.
const TU = 1024 * time.Microsecond

// TID is a 4-bit traffic identifier distinguishing QoS streams.
type TID uint8

// Direction selects the transmit or receive side of a BA agreement,
// seen from the local station.
type Direction int

const (
	TxDirection Direction = iota
	RxDirection
)

func (d Direction) String() string {
	if d == TxDirection {
		return "tx"
	}
	return "rx"
}

// Capabilities exposes the negotiated link state the session logic
// gates on. Implemented by the association/HT layer.
type Capabilities interface {
	QosActive() bool
	HTSupported() bool
	AMPDUEnabled() bool
	HalfRateMode() bool
}

// Transport sends management action frame bodies to a peer. Addressing
// and header construction are the transport's responsibility; sends are
// fire-and-forget.
type Transport interface {
	SendManagementFrame(dst Addr, body []byte) error
	LocalAddr() Addr
}
