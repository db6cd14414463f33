package wire

import "github.com/rtlab/ba"

// ParamSet is the 16-bit ADDBA BA Parameter Set field.
//
//	bit 0      A-MSDU supported
//	bit 1      BA policy (1 = immediate, 0 = delayed)
//	bits 2-5   TID
//	bits 6-15  buffer size
type ParamSet uint16

func (p ParamSet) AMSDUSupported() bool {
	return p&0x0001 != 0
}

func (p *ParamSet) SetAMSDUSupported(v bool) {
	if v {
		*p |= 0x0001
	} else {
		*p &^= 0x0001
	}
}

func (p ParamSet) Policy() Policy {
	return Policy(p >> 1 & 0x1)
}

func (p *ParamSet) SetPolicy(v Policy) {
	*p = *p&^0x0002 | ParamSet(v&0x1)<<1
}

func (p ParamSet) TID() ba.TID {
	return ba.TID(p >> 2 & 0xf)
}

func (p *ParamSet) SetTID(v ba.TID) {
	*p = *p&^0x003c | ParamSet(v&0xf)<<2
}

func (p ParamSet) BufferSize() uint16 {
	return uint16(p >> 6 & 0x3ff)
}

func (p *ParamSet) SetBufferSize(v uint16) {
	*p = *p&^0xffc0 | ParamSet(v&0x3ff)<<6
}

// DelbaParamSet is the 16-bit DELBA Parameter Set field.
//
//	bits 0-10  reserved
//	bit 11     initiator (1 = sent by the BA originator)
//	bits 12-15 TID
type DelbaParamSet uint16

func (p DelbaParamSet) Initiator() bool {
	return p&0x0800 != 0
}

func (p *DelbaParamSet) SetInitiator(v bool) {
	if v {
		*p |= 0x0800
	} else {
		*p &^= 0x0800
	}
}

func (p DelbaParamSet) TID() ba.TID {
	return ba.TID(p >> 12 & 0xf)
}

func (p *DelbaParamSet) SetTID(v ba.TID) {
	*p = *p&^0xf000 | DelbaParamSet(v&0xf)<<12
}

// SeqControl is the 16-bit sequence control field marking where
// aggregation starts.
//
//	bits 0-3   fragment number (always 0 here)
//	bits 4-15  sequence number
type SeqControl uint16

// NewSeqControl builds a SeqControl with fragment number zero. The
// sequence number wraps at 4096.
func NewSeqControl(seq uint16) SeqControl {
	return SeqControl(seq%4096) << 4
}

func (s SeqControl) FragmentNumber() uint8 {
	return uint8(s & 0xf)
}

func (s SeqControl) SequenceNumber() uint16 {
	return uint16(s >> 4 & 0xfff)
}

func (s *SeqControl) SetSequenceNumber(v uint16) {
	*s = *s&0x000f | SeqControl(v%4096)<<4
}
