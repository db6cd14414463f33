package session

import (
	"fmt"
	"sync"

	"github.com/rtlab/ba"
)

// StreamTable looks up, and on the receive path creates, the stream
// record for a peer/TID pair. The table owns the stream records; the
// session manager only borrows them.
type StreamTable interface {
	Lookup(peer ba.Addr, tid ba.TID, dir ba.Direction, create bool) (*Stream, bool)
}

// Table is the default in-memory StreamTable. A single record serves
// both directions of a peer/TID pair.
type Table struct {
	mu      sync.Mutex
	streams map[string]*Stream
}

func NewTable() *Table {
	return &Table{streams: make(map[string]*Stream)}
}

func (t *Table) Lookup(peer ba.Addr, tid ba.TID, dir ba.Direction, create bool) (*Stream, bool) {
	key := fmt.Sprintf("%s/%d", peer.String(), tid)

	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[key]
	if !ok {
		if !create {
			return nil, false
		}
		s = NewStream(peer, tid)
		t.streams[key] = s
	}
	return s, true
}

// Drop removes a stream record, resetting it first so no timers
// outlive the table entry.
func (t *Table) Drop(peer ba.Addr, tid ba.TID) {
	key := fmt.Sprintf("%s/%d", peer.String(), tid)

	t.mu.Lock()
	s, ok := t.streams[key]
	delete(t.streams, key)
	t.mu.Unlock()

	if ok {
		s.Reset()
	}
}

// Info describes one admitted agreement, in a form the cache and
// tooling can serialize.
type Info struct {
	Peer        string `json:"peer"`
	TID         uint8  `json:"tid"`
	Direction   string `json:"direction"`
	DialogToken uint8  `json:"dialog_token"`
	BufferSize  uint16 `json:"buffer_size"`
	TimeoutTU   uint16 `json:"timeout_tu"`
	StartSeq    uint16 `json:"start_seq"`
}

// Snapshot lists every admitted agreement in the table.
func (t *Table) Snapshot() []Info {
	t.mu.Lock()
	streams := make([]*Stream, 0, len(t.streams))
	for _, s := range t.streams {
		streams = append(streams, s)
	}
	t.mu.Unlock()

	var out []Info
	for _, s := range streams {
		if st := s.TxAdmitted(); st.Valid {
			out = append(out, info(s, ba.TxDirection, st))
		}
		if st := s.RxAdmitted(); st.Valid {
			out = append(out, info(s, ba.RxDirection, st))
		}
	}
	return out
}

func info(s *Stream, dir ba.Direction, st State) Info {
	return Info{
		Peer:        s.Peer().String(),
		TID:         uint8(s.TID()),
		Direction:   dir.String(),
		DialogToken: st.DialogToken,
		BufferSize:  st.BufferSize,
		TimeoutTU:   st.TimeoutTU,
		StartSeq:    st.StartSeq,
	}
}
