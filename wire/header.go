package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rtlab/ba"
)

// HeaderLen is the size of a 3-address 802.11 management header.
const HeaderLen = 24

// FrameControlAction is the frame control value of a management action
// frame (type management, subtype action).
const FrameControlAction = 0x00d0

// Header is the 3-address management frame header preceding an action
// body. Addr1 is the destination, Addr2 the transmitter, Addr3 the
// BSSID.
type Header struct {
	FrameControl uint16
	Duration     uint16
	Addr1        [6]byte
	Addr2        [6]byte
	Addr3        [6]byte
	SeqControl   uint16
}

// NewActionHeader builds the header of an outgoing action frame.
func NewActionHeader(dst, src, bssid ba.Addr) Header {
	h := Header{FrameControl: FrameControlAction}
	copy(h.Addr1[:], dst.Bytes())
	copy(h.Addr2[:], src.Bytes())
	copy(h.Addr3[:], bssid.Bytes())
	return h
}

// Marshal appends the wire form of the header to b.
func (h Header) Marshal(b []byte) []byte {
	var fixed [4]byte
	binary.LittleEndian.PutUint16(fixed[0:], h.FrameControl)
	binary.LittleEndian.PutUint16(fixed[2:], h.Duration)
	b = append(b, fixed[:]...)
	b = append(b, h.Addr1[:]...)
	b = append(b, h.Addr2[:]...)
	b = append(b, h.Addr3[:]...)
	var seq [2]byte
	binary.LittleEndian.PutUint16(seq[:], h.SeqControl)
	return append(b, seq[:]...)
}

// SA returns the frame's source address.
func (h Header) SA() ba.Addr {
	return ba.NewAddrFromBytes(h.Addr2[:])
}

func parseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, errors.Wrapf(ErrMalformedFrame, "header %d/%d bytes", len(b), HeaderLen)
	}
	h := Header{
		FrameControl: binary.LittleEndian.Uint16(b[0:]),
		Duration:     binary.LittleEndian.Uint16(b[2:]),
		SeqControl:   binary.LittleEndian.Uint16(b[22:]),
	}
	copy(h.Addr1[:], b[4:10])
	copy(h.Addr2[:], b[10:16])
	copy(h.Addr3[:], b[16:22])
	return h, nil
}
