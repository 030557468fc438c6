package core

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/ipv4"
)

const (
	echoCode              = 0
	icmpProtocol          = 1
	icmpPrivilegedNetwork = "ip4:icmp"
)

// EchoRequest is a mutable view over a buffer holding an ICMP echo request message.
// Header setters rewrite the checksum after writing their field, so the checksum is
// always the last field written. Writes made through Payload need UpdateChecksum.
type EchoRequest struct {
	buf []byte
}

// NewEchoRequest binds a view to buf, failing if it cannot hold an ICMP echo header.
func NewEchoRequest(buf []byte) (*EchoRequest, error) {
	if len(buf) < ICMPHeaderLen {
		return nil, fmt.Errorf("icmp message of %d bytes, need %d: %w", len(buf), ICMPHeaderLen, ErrShortBuffer)
	}
	return &EchoRequest{buf: buf}, nil
}

// BuildEchoRequest initializes an echo request in buf. Whatever follows the header is
// zero padding up to the requested size. The sequence number is left for the caller.
func BuildEchoRequest(buf []byte, settings *Settings) (*EchoRequest, error) {
	m, err := NewEchoRequest(buf)
	if err != nil {
		return nil, err
	}

	for i := range m.Payload() {
		m.buf[ICMPHeaderLen+i] = 0
	}

	m.SetType(ipv4.ICMPTypeEcho)
	m.SetCode(echoCode)
	m.SetID(settings.ID)

	return m, nil
}

func (m *EchoRequest) Type() ipv4.ICMPType {
	return ipv4.ICMPType(m.buf[0])
}

func (m *EchoRequest) SetType(t ipv4.ICMPType) {
	m.buf[0] = byte(t)
	m.UpdateChecksum()
}

func (m *EchoRequest) Code() int {
	return int(m.buf[1])
}

func (m *EchoRequest) SetCode(code int) {
	m.buf[1] = byte(code)
	m.UpdateChecksum()
}

func (m *EchoRequest) Checksum() uint16 {
	return binary.BigEndian.Uint16(m.buf[2:4])
}

func (m *EchoRequest) SetChecksum(sum uint16) {
	binary.BigEndian.PutUint16(m.buf[2:4], sum)
}

func (m *EchoRequest) ID() int {
	return int(binary.BigEndian.Uint16(m.buf[4:6]))
}

func (m *EchoRequest) SetID(id int) {
	binary.BigEndian.PutUint16(m.buf[4:6], uint16(id))
	m.UpdateChecksum()
}

func (m *EchoRequest) Seq() int {
	return int(binary.BigEndian.Uint16(m.buf[6:8]))
}

// SetSequence writes seq, wrapped to 16 bits.
func (m *EchoRequest) SetSequence(seq int) {
	binary.BigEndian.PutUint16(m.buf[6:8], uint16(seq))
	m.UpdateChecksum()
}

// Payload returns the data region following the header.
func (m *EchoRequest) Payload() []byte {
	return m.buf[ICMPHeaderLen:]
}

// UpdateChecksum computes the checksum over the whole message and writes it.
func (m *EchoRequest) UpdateChecksum() {
	// the checksum field is the second 16-bit word
	m.SetChecksum(Checksum(m.buf, 1))
}

// Bytes returns the underlying buffer.
func (m *EchoRequest) Bytes() []byte {
	return m.buf
}
