// Package mfp adds BIP-CMAC-128 style integrity protection to BA action
// frame bodies: an AES-128-CMAC MIC truncated to 8 bytes, appended to
// the body on send and verified and stripped on receive.
package mfp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"

	"github.com/aead/cmac"
	"github.com/pkg/errors"
	"github.com/rtlab/ba"
)

// MICLen is the length of the appended integrity tag.
const MICLen = 8

// ErrBadMIC reports a frame whose integrity tag does not verify. The
// frame must be dropped.
var ErrBadMIC = errors.New("mfp: integrity check failed")

// Protector seals and opens action frame bodies with a shared IGTK.
type Protector struct {
	block cipher.Block
}

// NewProtector builds a Protector from a 16-byte AES key.
func NewProtector(key []byte) (*Protector, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "mfp: bad key")
	}
	return &Protector{block: block}, nil
}

// Seal appends the MIC to body.
func (p *Protector) Seal(body []byte) ([]byte, error) {
	mic, err := p.mic(body)
	if err != nil {
		return nil, err
	}
	return append(body, mic...), nil
}

// Open verifies and strips the MIC, returning the bare body.
func (p *Protector) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < MICLen {
		return nil, errors.Wrapf(ErrBadMIC, "sealed body %d bytes", len(sealed))
	}
	body := sealed[:len(sealed)-MICLen]
	mic, err := p.mic(body)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(mic, sealed[len(sealed)-MICLen:]) != 1 {
		return nil, ErrBadMIC
	}
	return body, nil
}

func (p *Protector) mic(body []byte) ([]byte, error) {
	mMac, err := cmac.New(p.block)
	if err != nil {
		return nil, err
	}
	mMac.Write(body)
	return mMac.Sum(nil)[:MICLen], nil
}

// Transport wraps another transport, sealing every outgoing body.
type Transport struct {
	inner ba.Transport
	prot  *Protector
}

// Protect returns a transport that seals bodies with prot before
// handing them to inner.
func Protect(inner ba.Transport, prot *Protector) *Transport {
	return &Transport{inner: inner, prot: prot}
}

func (t *Transport) SendManagementFrame(dst ba.Addr, body []byte) error {
	sealed, err := t.prot.Seal(body)
	if err != nil {
		return err
	}
	return t.inner.SendManagementFrame(dst, sealed)
}

func (t *Transport) LocalAddr() ba.Addr {
	return t.inner.LocalAddr()
}
