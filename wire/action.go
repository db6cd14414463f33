package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rtlab/ba"
)

// ErrMalformedFrame reports a frame too short to carry the fields its
// action code requires. Callers drop the frame without replying.
var ErrMalformedFrame = errors.New("ba: malformed frame")

// ErrUnknownAction reports a frame whose category or action code is not
// one of the three BA actions.
var ErrUnknownAction = errors.New("ba: not a block ack action frame")

// Frame is a decoded BA action frame body: *AddbaRequest,
// *AddbaResponse or *Delba.
type Frame interface {
	// Peer is the station the frame was received from.
	Peer() ba.Addr
}

// AddbaRequest is the body of an ADDBA-Request action frame.
type AddbaRequest struct {
	Src         ba.Addr
	DialogToken uint8
	Params      ParamSet
	Timeout     uint16
	StartSeq    SeqControl
}

func (f *AddbaRequest) Peer() ba.Addr { return f.Src }

// Body encodes the 9-byte action body.
func (f *AddbaRequest) Body() []byte {
	b := make([]byte, AddbaBodyLen)
	b[0] = CategoryBA
	b[1] = ActionAddbaRequest
	b[2] = f.DialogToken
	binary.LittleEndian.PutUint16(b[3:], uint16(f.Params))
	binary.LittleEndian.PutUint16(b[5:], f.Timeout)
	binary.LittleEndian.PutUint16(b[7:], uint16(f.StartSeq))
	return b
}

// AddbaResponse is the body of an ADDBA-Response action frame. Relative
// to the request it inserts a status code after the dialog token and
// carries no start sequence control.
type AddbaResponse struct {
	Src         ba.Addr
	DialogToken uint8
	Status      Status
	Params      ParamSet
	Timeout     uint16
}

func (f *AddbaResponse) Peer() ba.Addr { return f.Src }

// Body encodes the 9-byte action body.
func (f *AddbaResponse) Body() []byte {
	b := make([]byte, AddbaBodyLen)
	b[0] = CategoryBA
	b[1] = ActionAddbaResponse
	b[2] = f.DialogToken
	binary.LittleEndian.PutUint16(b[3:], uint16(f.Status))
	binary.LittleEndian.PutUint16(b[5:], uint16(f.Params))
	binary.LittleEndian.PutUint16(b[7:], f.Timeout)
	return b
}

// Delba is the body of a DELBA action frame.
type Delba struct {
	Src    ba.Addr
	Params DelbaParamSet
	Reason Reason
}

func (f *Delba) Peer() ba.Addr { return f.Src }

// Body encodes the 6-byte action body.
func (f *Delba) Body() []byte {
	b := make([]byte, DelbaBodyLen)
	b[0] = CategoryBA
	b[1] = ActionDelba
	binary.LittleEndian.PutUint16(b[2:], uint16(f.Params))
	binary.LittleEndian.PutUint16(b[4:], uint16(f.Reason))
	return b
}

// Parse decodes a received management frame, header included, into one
// of the three BA action types. The source address is taken from the
// header's transmitter field.
func Parse(frame []byte) (Frame, error) {
	hdr, err := parseHeader(frame)
	if err != nil {
		return nil, err
	}
	body := frame[HeaderLen:]
	if len(body) < 2 {
		return nil, errors.Wrapf(ErrMalformedFrame, "action body %d bytes", len(body))
	}
	if body[0] != CategoryBA {
		return nil, errors.Wrapf(ErrUnknownAction, "category %d", body[0])
	}

	src := hdr.SA()
	switch body[1] {
	case ActionAddbaRequest:
		if len(body) < AddbaBodyLen {
			return nil, errors.Wrapf(ErrMalformedFrame, "addba request %d/%d bytes", len(body), AddbaBodyLen)
		}
		return &AddbaRequest{
			Src:         src,
			DialogToken: body[2],
			Params:      ParamSet(binary.LittleEndian.Uint16(body[3:])),
			Timeout:     binary.LittleEndian.Uint16(body[5:]),
			StartSeq:    SeqControl(binary.LittleEndian.Uint16(body[7:])),
		}, nil
	case ActionAddbaResponse:
		if len(body) < AddbaBodyLen {
			return nil, errors.Wrapf(ErrMalformedFrame, "addba response %d/%d bytes", len(body), AddbaBodyLen)
		}
		return &AddbaResponse{
			Src:         src,
			DialogToken: body[2],
			Status:      Status(binary.LittleEndian.Uint16(body[3:])),
			Params:      ParamSet(binary.LittleEndian.Uint16(body[5:])),
			Timeout:     binary.LittleEndian.Uint16(body[7:]),
		}, nil
	case ActionDelba:
		if len(body) < DelbaBodyLen {
			return nil, errors.Wrapf(ErrMalformedFrame, "delba %d/%d bytes", len(body), DelbaBodyLen)
		}
		return &Delba{
			Src:    src,
			Params: DelbaParamSet(binary.LittleEndian.Uint16(body[2:])),
			Reason: Reason(binary.LittleEndian.Uint16(body[4:])),
		}, nil
	}
	return nil, errors.Wrapf(ErrUnknownAction, "action %d", body[1])
}
