package session

import (
	"sync"

	"github.com/rtlab/ba"
	"github.com/rtlab/ba/wire"
)

var (
	localAddr = ba.NewAddr("02:00:00:00:00:01")
	peerAddr  = ba.NewAddr("02:00:00:00:00:02")
	bssidAddr = ba.NewAddr("02:00:00:00:00:ff")
)

type fakeCaps struct {
	qos, ht, ampdu, half bool
}

func allCaps() *fakeCaps {
	return &fakeCaps{qos: true, ht: true, ampdu: true}
}

func (c *fakeCaps) QosActive() bool    { return c.qos }
func (c *fakeCaps) HTSupported() bool  { return c.ht }
func (c *fakeCaps) AMPDUEnabled() bool { return c.ampdu }
func (c *fakeCaps) HalfRateMode() bool { return c.half }

type sentFrame struct {
	dst  ba.Addr
	body []byte
}

// fakeTransport records outgoing action bodies.
type fakeTransport struct {
	mu   sync.Mutex
	sent []sentFrame
}

func (t *fakeTransport) LocalAddr() ba.Addr { return localAddr }

func (t *fakeTransport) SendManagementFrame(dst ba.Addr, body []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sentFrame{dst: dst, body: body})
	return nil
}

func (t *fakeTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// frameAt re-parses the i-th sent body as if it had arrived from the
// local station.
func (t *fakeTransport) frameAt(i int) wire.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := wire.NewActionHeader(t.sent[i].dst, localAddr, bssidAddr)
	f, err := wire.Parse(append(h.Marshal(nil), t.sent[i].body...))
	if err != nil {
		panic(err)
	}
	return f
}

// inbound builds a received frame from the peer carrying body.
func inbound(body []byte) []byte {
	h := wire.NewActionHeader(localAddr, peerAddr, bssidAddr)
	return append(h.Marshal(nil), body...)
}
