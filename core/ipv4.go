package core

import (
	"encoding/binary"
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
)

// IPv4Packet is a mutable view over a buffer holding an IPv4 packet without options.
// The view never copies the buffer, every setter writes straight into it.
type IPv4Packet struct {
	buf []byte
}

// NewIPv4Packet binds a view to buf, failing if it cannot hold an IPv4 header.
func NewIPv4Packet(buf []byte) (*IPv4Packet, error) {
	if len(buf) < IPv4HeaderLen {
		return nil, fmt.Errorf("ipv4 packet of %d bytes, need %d: %w", len(buf), IPv4HeaderLen, ErrShortBuffer)
	}
	return &IPv4Packet{buf: buf}, nil
}

// BuildIPv4Packet initializes the IPv4 header in buf for an ICMP packet addressed to the
// target of the settings. The total length is the length of buf. Source address,
// identification and fragmentation stay zero so that the kernel fills them on send.
func BuildIPv4Packet(buf []byte, settings *Settings) (*IPv4Packet, error) {
	p, err := NewIPv4Packet(buf)
	if err != nil {
		return nil, err
	}

	p.SetVersion(ipv4.Version)
	p.SetHeaderLen(IPv4HeaderLen)
	p.SetTotalLen(len(buf))
	p.SetTTL(settings.TTL)
	p.SetProtocol(icmpProtocol)
	p.SetDestination(settings.Target)

	return p, nil
}

func (p *IPv4Packet) Version() int {
	return int(p.buf[0] >> 4)
}

func (p *IPv4Packet) SetVersion(v int) {
	p.buf[0] = byte(v)<<4 | p.buf[0]&0x0f
}

// HeaderLen returns the header length in bytes.
func (p *IPv4Packet) HeaderLen() int {
	return int(p.buf[0]&0x0f) << 2
}

// SetHeaderLen sets the header length in bytes, stored as a count of 32-bit words.
func (p *IPv4Packet) SetHeaderLen(n int) {
	p.buf[0] = p.buf[0]&0xf0 | byte(n>>2)&0x0f
}

func (p *IPv4Packet) TotalLen() int {
	return int(binary.BigEndian.Uint16(p.buf[2:4]))
}

func (p *IPv4Packet) SetTotalLen(n int) {
	binary.BigEndian.PutUint16(p.buf[2:4], uint16(n))
}

func (p *IPv4Packet) TTL() int {
	return int(p.buf[8])
}

func (p *IPv4Packet) SetTTL(ttl int) {
	p.buf[8] = byte(ttl)
}

func (p *IPv4Packet) Protocol() int {
	return int(p.buf[9])
}

func (p *IPv4Packet) SetProtocol(proto int) {
	p.buf[9] = byte(proto)
}

func (p *IPv4Packet) Source() net.IP {
	return net.IPv4(p.buf[12], p.buf[13], p.buf[14], p.buf[15])
}

func (p *IPv4Packet) Destination() net.IP {
	return net.IPv4(p.buf[16], p.buf[17], p.buf[18], p.buf[19])
}

// SetDestination writes ip, which must be an IPv4 address.
func (p *IPv4Packet) SetDestination(ip net.IP) {
	copy(p.buf[16:20], ip.To4())
}

// Payload returns the region of the buffer following the header.
func (p *IPv4Packet) Payload() []byte {
	return p.buf[IPv4HeaderLen:]
}

// SetPayload copies b into the payload region and returns the number of bytes copied.
func (p *IPv4Packet) SetPayload(b []byte) int {
	return copy(p.buf[IPv4HeaderLen:], b)
}

// Bytes returns the underlying buffer.
func (p *IPv4Packet) Bytes() []byte {
	return p.buf
}
