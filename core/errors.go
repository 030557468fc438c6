package core

import "errors"

var (
	// ErrShortBuffer is returned when a buffer cannot hold the minimal header of a packet view.
	ErrShortBuffer = errors.New("buffer too short for header")

	// ErrMalformedPacket is returned when an inbound packet is not a well-formed ICMP echo reply.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrSequenceMismatch is returned in strict mode when a reply carries a sequence other than the one sent.
	ErrSequenceMismatch = errors.New("reply sequence does not match request")

	// ErrInvalidSettings is returned when the settings of a session fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
)
