package core

import (
	"fmt"
	"math"
	"net"
	"os"

	log "github.com/sirupsen/logrus"
)

const (
	// IPv4HeaderLen is the length of an IPv4 header without options.
	IPv4HeaderLen = 20

	// ICMPHeaderLen is the length of an ICMP echo header.
	ICMPHeaderLen = 8

	// MaxPacketLen is the largest IPv4 packet a session will ever build.
	MaxPacketLen = 1472
)

// Settings contains all configurable properties of a ping session.
type Settings struct {
	// Target is the IPv4 address echo requests are sent to.
	Target net.IP

	// PayloadSize is the number of data bytes requested for each echo request.
	// The packet is silently capped to MaxPacketLen.
	PayloadSize int

	// Count bounds the loop counter. Count+1 echo requests are sent.
	Count int

	// TTL is the set IP Time to Live
	TTL int

	// Timeout is the time in seconds to wait for each reply. Zero waits forever.
	Timeout int

	// StrictSequence aborts the session when a reply does not carry the sequence just sent.
	StrictSequence bool

	// ID is the identifier written in every echo request.
	ID int

	// LoggingLevel is the logrus level of the session logger.
	LoggingLevel uint32
}

// DefaultSettings returns the default settings for a ping session, change as you wish.
// Target has no default and must be set.
func DefaultSettings() *Settings {
	return &Settings{
		PayloadSize:    56,
		Count:          4,
		TTL:            54,
		Timeout:        0,
		StrictSequence: false,
		ID:             os.Getpid() & math.MaxUint16,
		LoggingLevel:   uint32(log.WarnLevel),
	}
}

// TotalSize returns the size of the IPv4 packet built for each echo request.
func (s *Settings) TotalSize() int {
	// compared before adding so that huge payloads cannot overflow
	if s.PayloadSize > MaxPacketLen-IPv4HeaderLen-ICMPHeaderLen {
		return MaxPacketLen
	}
	return IPv4HeaderLen + ICMPHeaderLen + s.PayloadSize
}

// Validate returns an error wrapping ErrInvalidSettings when a setting is out of range.
func (s *Settings) Validate() error {
	if !isIPv4(s.Target) {
		return fmt.Errorf("%w: target %v is not an IPv4 address", ErrInvalidSettings, s.Target)
	}

	if s.PayloadSize < 0 {
		return fmt.Errorf("%w: payload size must not be negative, got %d", ErrInvalidSettings, s.PayloadSize)
	}

	if s.Count < 0 {
		return fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidSettings, s.Count)
	}

	if s.TTL <= 0 || s.TTL > math.MaxUint8 {
		return fmt.Errorf("%w: ttl must be between 1 and %d, got %d", ErrInvalidSettings, math.MaxUint8, s.TTL)
	}

	if s.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %d", ErrInvalidSettings, s.Timeout)
	}

	if s.ID < 0 || s.ID > math.MaxUint16 {
		return fmt.Errorf("%w: id must be between 0 and %d, got %d", ErrInvalidSettings, math.MaxUint16, s.ID)
	}

	return nil
}
