package core

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"
)

// recvBufferLen fits any IPv4 packet on a standard ethernet link.
const recvBufferLen = 1500

// Transport is a channel able to send whole IPv4 packets and yield incoming ICMP messages.
type Transport interface {
	// Send transmits an IPv4 packet, header included, to dst.
	Send(pkt []byte, dst net.IP) error

	// Recv blocks until an ICMP message arrives and returns it without its IP header,
	// along with its source address.
	Recv() ([]byte, net.IP, error)

	// SetReadDeadline bounds pending and future Recv calls. The zero value blocks forever.
	SetReadDeadline(t time.Time) error

	Close() error
}

// RawTransport is a Transport over a raw ICMP socket with the IP header included by the caller.
type RawTransport struct {
	conn *ipv4.RawConn
	buf  []byte
}

// NewRawTransport opens a raw ICMP socket. It requires the privilege to open raw sockets.
func NewRawTransport() (*RawTransport, error) {
	c, err := net.ListenPacket(icmpPrivilegedNetwork, "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("could not listen to ICMP packets: %w", err)
	}

	conn, err := ipv4.NewRawConn(c)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("could not create raw connection: %w", err)
	}

	if err := conn.SetICMPFilter(outgoingEchoFilter()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not filter ICMP packets: %w", err)
	}

	return &RawTransport{
		conn: conn,
		buf:  make([]byte, recvBufferLen),
	}, nil
}

// outgoingEchoFilter blocks echo requests, which a raw socket would otherwise read back
// from this process on loopback. Every other type is delivered.
func outgoingEchoFilter() *ipv4.ICMPFilter {
	var f ipv4.ICMPFilter
	f.Block(ipv4.ICMPTypeEcho)
	return &f
}

func (t *RawTransport) Send(pkt []byte, dst net.IP) error {
	h, err := ipv4.ParseHeader(pkt)
	if err != nil {
		return fmt.Errorf("could not parse outgoing IPv4 header: %w", err)
	}
	h.Dst = dst.To4()

	if err := t.conn.WriteTo(h, pkt[h.Len:], nil); err != nil {
		return fmt.Errorf("could not write packet to %s: %w", dst, err)
	}
	return nil
}

func (t *RawTransport) Recv() ([]byte, net.IP, error) {
	h, p, _, err := t.conn.ReadFrom(t.buf)
	if err != nil {
		return nil, nil, err
	}

	// the read buffer is reused, hand out a copy
	msg := make([]byte, len(p))
	copy(msg, p)

	return msg, h.Src, nil
}

func (t *RawTransport) SetReadDeadline(d time.Time) error {
	return t.conn.SetReadDeadline(d)
}

func (t *RawTransport) Close() error {
	return t.conn.Close()
}
