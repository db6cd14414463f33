package ba

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Addr is the MAC address of a peer station.
type Addr interface {
	String() string
	Bytes() []byte
}

// NewAddr creates an Addr from a colon-separated MAC string.
func NewAddr(s string) Addr {
	return addr(strings.ToLower(s))
}

// NewAddrFromBytes creates an Addr from raw MAC bytes as found in a
// frame's address fields.
func NewAddrFromBytes(b []byte) Addr {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return addr(strings.Join(parts, ":"))
}

type addr string

func (a addr) String() string {
	return string(a)
}

func (a addr) Bytes() []byte {
	hexStr := strings.Replace(a.String(), ":", "", -1)

	out, err := hex.DecodeString(hexStr)
	if err != nil {
		fmt.Println("error decoding address:", err, a.String())
	}

	return out
}
