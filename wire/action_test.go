package wire

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/rtlab/ba"
)

var (
	testDst = ba.NewAddr("02:00:00:00:00:01")
	testSrc = ba.NewAddr("02:00:00:00:00:02")
	testBss = ba.NewAddr("02:00:00:00:00:ff")
)

func frame(body []byte) []byte {
	h := NewActionHeader(testDst, testSrc, testBss)
	return append(h.Marshal(nil), body...)
}

func TestAddbaRequestRoundTrip(t *testing.T) {
	req := &AddbaRequest{
		DialogToken: 7,
		Timeout:     5000,
		StartSeq:    NewSeqControl(103),
	}
	req.Params.SetPolicy(PolicyImmediate)
	req.Params.SetTID(3)
	req.Params.SetBufferSize(32)

	f, err := Parse(frame(req.Body()))
	if err != nil {
		t.Fatal(err)
	}
	got, ok := f.(*AddbaRequest)
	if !ok {
		t.Fatalf("parsed %T, not an addba request", f)
	}

	if got.DialogToken != 7 {
		t.Fatalf("dialog token %d", got.DialogToken)
	}
	if got.Params != req.Params {
		t.Fatalf("params %#04x != %#04x", uint16(got.Params), uint16(req.Params))
	}
	if got.Timeout != 5000 {
		t.Fatalf("timeout %d", got.Timeout)
	}
	if got.StartSeq != req.StartSeq {
		t.Fatalf("start seq %#04x != %#04x", uint16(got.StartSeq), uint16(req.StartSeq))
	}
	if got.Src.String() != testSrc.String() {
		t.Fatalf("src %v", got.Src)
	}
}

func TestAddbaRequestEncoding(t *testing.T) {
	// tid 3, immediate policy, buffer 32: bit1 + 3<<2 + 32<<6 = 0x080e.
	req := &AddbaRequest{DialogToken: 1}
	req.Params.SetPolicy(PolicyImmediate)
	req.Params.SetTID(3)
	req.Params.SetBufferSize(32)

	want := []byte{CategoryBA, ActionAddbaRequest, 1, 0x0e, 0x08, 0, 0, 0, 0}
	if got := req.Body(); !bytes.Equal(got, want) {
		t.Fatalf("body % x, want % x", got, want)
	}
}

func TestAddbaResponseRoundTrip(t *testing.T) {
	rsp := &AddbaResponse{
		DialogToken: 9,
		Status:      StatusRefused,
		Timeout:     100,
	}
	rsp.Params.SetTID(5)
	rsp.Params.SetBufferSize(1)

	f, err := Parse(frame(rsp.Body()))
	if err != nil {
		t.Fatal(err)
	}
	got, ok := f.(*AddbaResponse)
	if !ok {
		t.Fatalf("parsed %T, not an addba response", f)
	}
	if got.DialogToken != 9 || got.Status != StatusRefused || got.Timeout != 100 {
		t.Fatalf("got %+v", got)
	}
	if got.Params.TID() != 5 || got.Params.BufferSize() != 1 {
		t.Fatalf("params tid %d buffer %d", got.Params.TID(), got.Params.BufferSize())
	}
}

func TestDelbaRoundTrip(t *testing.T) {
	d := &Delba{Reason: ReasonTimeout}
	d.Params.SetInitiator(true)
	d.Params.SetTID(6)

	f, err := Parse(frame(d.Body()))
	if err != nil {
		t.Fatal(err)
	}
	got, ok := f.(*Delba)
	if !ok {
		t.Fatalf("parsed %T, not a delba", f)
	}
	if !got.Params.Initiator() || got.Params.TID() != 6 || got.Reason != ReasonTimeout {
		t.Fatalf("got %+v", got)
	}
}

func TestParseTooShort(t *testing.T) {
	tt := [][]byte{
		nil,
		frame(nil)[:HeaderLen-1],
		frame([]byte{CategoryBA}),
		frame([]byte{CategoryBA, ActionAddbaRequest, 1, 2, 3, 4, 5, 6}), // 8 of 9
		frame([]byte{CategoryBA, ActionAddbaResponse, 1, 2, 3, 4, 5, 6}),
		frame([]byte{CategoryBA, ActionDelba, 1, 2, 3}), // 5 of 6
	}
	for i, b := range tt {
		_, err := Parse(b)
		if errors.Cause(err) != ErrMalformedFrame {
			t.Fatalf("case %d: err %v", i, err)
		}
	}
}

func TestParseUnknownAction(t *testing.T) {
	_, err := Parse(frame([]byte{CategoryBA, 9, 0, 0, 0, 0, 0, 0, 0}))
	if errors.Cause(err) != ErrUnknownAction {
		t.Fatalf("err %v", err)
	}
	_, err = Parse(frame([]byte{0x04, ActionAddbaRequest, 0, 0, 0, 0, 0, 0, 0}))
	if errors.Cause(err) != ErrUnknownAction {
		t.Fatalf("err %v", err)
	}
}

func TestDelbaParamBits(t *testing.T) {
	var p DelbaParamSet
	p.SetInitiator(true)
	if uint16(p) != 0x0800 {
		t.Fatalf("initiator bit %#04x", uint16(p))
	}
	p.SetTID(5)
	if uint16(p) != 0x0800|5<<12 {
		t.Fatalf("tid bits %#04x", uint16(p))
	}
	p.SetInitiator(false)
	if p.Initiator() || p.TID() != 5 {
		t.Fatalf("clear initiator: %#04x", uint16(p))
	}
}

func TestSeqControlWraps(t *testing.T) {
	s := NewSeqControl(4097)
	if s.SequenceNumber() != 1 {
		t.Fatalf("seq %d", s.SequenceNumber())
	}
	if s.FragmentNumber() != 0 {
		t.Fatalf("frag %d", s.FragmentNumber())
	}
	s.SetSequenceNumber(4095)
	if s.SequenceNumber() != 4095 {
		t.Fatalf("seq %d", s.SequenceNumber())
	}
}
