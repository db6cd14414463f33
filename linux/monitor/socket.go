//go:build linux
// +build linux

// Package monitor sends and receives BA action frames on a Linux
// monitor-mode interface through an AF_PACKET socket, with radiotap
// encapsulation.
package monitor

import (
	"net"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/rtlab/ba"
	"github.com/rtlab/ba/wire"
)

const rxBufLen = 4096

// radiotapHeader is the minimal (empty present-mask) radiotap header
// prepended to injected frames.
var radiotapHeader = []byte{0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00}

// Conn is a ba.Transport over a monitor-mode interface.
type Conn struct {
	fd    int
	local ba.Addr
	bssid ba.Addr
	log   ba.Logger

	wmu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens an AF_PACKET socket bound to iface. local is the station
// address written into the transmitter field of outgoing frames, bssid
// into the BSSID field.
func Dial(iface string, local, bssid ba.Addr) (*Conn, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, errors.Wrapf(err, "can't find interface %s", iface)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, errors.Wrap(err, "can't open packet socket")
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "can't bind to %s", iface)
	}

	return &Conn{
		fd:    fd,
		local: local,
		bssid: bssid,
		log:   ba.GetLogger().ChildLogger(map[string]interface{}{"module": "monitor", "iface": iface}),
		done:  make(chan struct{}),
	}, nil
}

// LocalAddr returns the local station address.
func (c *Conn) LocalAddr() ba.Addr {
	return c.local
}

// SendManagementFrame injects an action frame carrying body to dst.
func (c *Conn) SendManagementFrame(dst ba.Addr, body []byte) error {
	hdr := wire.NewActionHeader(dst, c.local, c.bssid)

	pkt := make([]byte, 0, len(radiotapHeader)+wire.HeaderLen+len(body))
	pkt = append(pkt, radiotapHeader...)
	pkt = hdr.Marshal(pkt)
	pkt = append(pkt, body...)

	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := unix.Write(c.fd, pkt)
	return errors.Wrapf(err, "can't send to %v", dst)
}

// Serve reads frames until Close, stripping radiotap and handing every
// action frame addressed to us to handle (typically the session
// manager's HandleFrame). Handler errors are logged, not fatal.
func (c *Conn) Serve(handle func(frame []byte) error) error {
	buf := make([]byte, rxBufLen)
	for {
		select {
		case <-c.done:
			return nil
		default:
		}

		n, err := unix.Read(c.fd, buf)
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return errors.Wrap(err, "read")
		}

		frame, ok := c.strip(buf[:n])
		if !ok {
			continue
		}
		if err := handle(frame); err != nil {
			c.log.Debugf("frame dropped: %v", err)
		}
	}
}

// strip removes the radiotap header and filters for action frames
// addressed to the local station.
func (c *Conn) strip(pkt []byte) ([]byte, bool) {
	p := gopacket.NewPacket(pkt, layers.LayerTypeRadioTap, gopacket.NoCopy)
	rt, ok := p.Layer(layers.LayerTypeRadioTap).(*layers.RadioTap)
	if !ok {
		return nil, false
	}
	frame := rt.Payload
	if len(frame) < wire.HeaderLen {
		return nil, false
	}
	if frame[0] != wire.FrameControlAction&0xff {
		return nil, false
	}
	dst := ba.NewAddrFromBytes(frame[4:10])
	if dst.String() != c.local.String() {
		return nil, false
	}
	out := make([]byte, len(frame))
	copy(out, frame)
	return out, true
}

// Close shuts the socket down; Serve returns after the blocking read is
// released.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = unix.Close(c.fd)
	})
	return err
}

func htons(v uint16) uint16 {
	return v<<8 | v>>8
}
