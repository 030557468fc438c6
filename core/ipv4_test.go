package core

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIPv4PacketShortBuffer verifies that a view cannot be bound to a buffer
// smaller than an IPv4 header
func TestNewIPv4PacketShortBuffer(t *testing.T) {
	p, err := NewIPv4Packet(make([]byte, IPv4HeaderLen-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
	assert.Nil(t, p)

	p, err = NewIPv4Packet(make([]byte, IPv4HeaderLen))
	assert.NoError(t, err)
	assert.Empty(t, p.Payload())
}

// TestBuildIPv4Packet verifies all the fields set by the builder
func TestBuildIPv4Packet(t *testing.T) {
	settings := validSettings()
	settings.Target = net.IPv4(10, 1, 2, 3)
	buf := make([]byte, settings.TotalSize())

	p, err := BuildIPv4Packet(buf, settings)
	require.NoError(t, err)

	assert.Equal(t, 4, p.Version())
	assert.Equal(t, IPv4HeaderLen, p.HeaderLen())
	assert.Equal(t, len(buf), p.TotalLen())
	assert.Equal(t, settings.TTL, p.TTL())
	assert.Equal(t, icmpProtocol, p.Protocol())
	assert.True(t, settings.Target.Equal(p.Destination()))
	assert.True(t, net.IPv4zero.Equal(p.Source()))
	assert.Len(t, p.Payload(), len(buf)-IPv4HeaderLen)

	// identification and fragmentation are left to the kernel
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[4:8])
}

// TestBuildIPv4PacketShortBuffer verifies that the builder refuses a short buffer
func TestBuildIPv4PacketShortBuffer(t *testing.T) {
	_, err := BuildIPv4Packet(make([]byte, 8), validSettings())
	assert.ErrorIs(t, err, ErrShortBuffer)
}

// TestIPv4PacketSetters verifies that setters do not clobber neighbour fields
func TestIPv4PacketSetters(t *testing.T) {
	p, err := NewIPv4Packet(make([]byte, 40))
	require.NoError(t, err)

	p.SetVersion(4)
	p.SetHeaderLen(20)
	assert.Equal(t, 4, p.Version())
	assert.Equal(t, 20, p.HeaderLen())

	p.SetVersion(6)
	assert.Equal(t, 20, p.HeaderLen())

	p.SetTotalLen(0x1234)
	assert.Equal(t, 0x1234, p.TotalLen())

	n := p.SetPayload([]byte{1, 2, 3})
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, p.Payload()[:3])

	n = p.SetPayload(make([]byte, 100))
	assert.Equal(t, 20, n)
}

// TestBuildIPv4PacketDecodes decodes the built header with gopacket
func TestBuildIPv4PacketDecodes(t *testing.T) {
	settings := validSettings()
	settings.TTL = 7
	buf := make([]byte, settings.TotalSize())

	_, err := BuildIPv4Packet(buf, settings)
	require.NoError(t, err)

	ip := &layers.IPv4{}
	require.NoError(t, ip.DecodeFromBytes(buf, gopacket.NilDecodeFeedback))

	assert.Equal(t, uint8(4), ip.Version)
	assert.Equal(t, uint8(5), ip.IHL)
	assert.Equal(t, uint16(len(buf)), ip.Length)
	assert.Equal(t, uint8(7), ip.TTL)
	assert.Equal(t, layers.IPProtocolICMPv4, ip.Protocol)
	assert.True(t, settings.Target.Equal(ip.DstIP))
	assert.Len(t, ip.Payload, len(buf)-IPv4HeaderLen)
}
