package core

import (
	"fmt"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// EchoReply is a read-only view of an ICMP echo reply. It only exists for packets that
// parsed successfully.
type EchoReply struct {
	code    int
	id      int
	seq     int
	payload []byte
}

// ParseEchoReply interprets b as an ICMP echo reply message, IP header excluded.
// Anything else, truncated messages included, returns an error wrapping ErrMalformedPacket.
func ParseEchoReply(b []byte) (*EchoReply, error) {
	m, err := icmp.ParseMessage(icmpProtocol, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPacket, err)
	}

	if m.Type != ipv4.ICMPTypeEchoReply {
		return nil, fmt.Errorf("%w: unexpected type %v", ErrMalformedPacket, m.Type)
	}

	echo, ok := m.Body.(*icmp.Echo)
	if !ok {
		return nil, fmt.Errorf("%w: invalid body type '%T'", ErrMalformedPacket, m.Body)
	}

	return &EchoReply{
		code:    m.Code,
		id:      echo.ID,
		seq:     echo.Seq,
		payload: echo.Data,
	}, nil
}

// Type is always ipv4.ICMPTypeEchoReply, anything else fails to parse.
func (r *EchoReply) Type() ipv4.ICMPType {
	return ipv4.ICMPTypeEchoReply
}

func (r *EchoReply) Code() int {
	return r.code
}

func (r *EchoReply) ID() int {
	return r.id
}

func (r *EchoReply) Seq() int {
	return r.seq
}

func (r *EchoReply) Payload() []byte {
	return r.payload
}
