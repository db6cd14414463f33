package wire

// Action frame category and Block Ack action codes.
const (
	CategoryBA = 3

	ActionAddbaRequest  = 0
	ActionAddbaResponse = 1
	ActionDelba         = 2
)

// Minimum action body lengths accepted by Parse.
const (
	AddbaBodyLen = 9
	DelbaBodyLen = 6
)

// Status is an ADDBA-Response status code.
type Status uint16

const (
	StatusSuccess          Status = 0
	StatusRefused          Status = 37
	StatusInvalidParameter Status = 38
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRefused:
		return "refused"
	case StatusInvalidParameter:
		return "invalid parameter"
	}
	return "unknown"
}

// Reason is a DELBA reason code.
type Reason uint16

const (
	ReasonEndBA     Reason = 37
	ReasonUnknownBA Reason = 38
	ReasonTimeout   Reason = 39
)

func (r Reason) String() string {
	switch r {
	case ReasonEndBA:
		return "end ba"
	case ReasonUnknownBA:
		return "unknown ba"
	case ReasonTimeout:
		return "timeout"
	}
	return "unknown"
}

// Policy selects immediate or delayed block acknowledgment.
type Policy uint8

const (
	PolicyDelayed   Policy = 0
	PolicyImmediate Policy = 1
)

func (p Policy) String() string {
	if p == PolicyImmediate {
		return "immediate"
	}
	return "delayed"
}
