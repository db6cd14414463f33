package session

import (
	"time"

	"github.com/rtlab/ba/wire"
)

// record is one BA agreement, pending or admitted, for a single
// direction of a stream. Records are owned by their Stream and only
// mutated under the stream mutex.
type record struct {
	valid       bool
	dialogToken uint8
	params      wire.ParamSet
	timeout     uint16 // TUs, 0 disables the inactivity timer
	startSeq    wire.SeqControl

	timer *time.Timer
	// gen is bumped on every deactivation; an armed callback that
	// fires afterwards sees the mismatch and returns without touching
	// the record.
	gen uint64
}

// State is a read-only snapshot of a record, exposed to the aggregation
// and scheduling layers.
type State struct {
	Valid       bool
	DialogToken uint8
	Policy      wire.Policy
	BufferSize  uint16
	TimeoutTU   uint16
	StartSeq    uint16
}

func (r *record) state() State {
	return State{
		Valid:       r.valid,
		DialogToken: r.dialogToken,
		Policy:      r.params.Policy(),
		BufferSize:  r.params.BufferSize(),
		TimeoutTU:   r.timeout,
		StartSeq:    r.startSeq.SequenceNumber(),
	}
}
