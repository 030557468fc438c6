package core

import (
	"net"
	"time"
)

// RoundTripResult is the end result of a round trip
type RoundTripResult int

const (
	// Replied is the result of when an echo request is successfully replied
	Replied RoundTripResult = iota
	// TimedOut is the result of when an echo request does not receive a reply in the configured time
	TimedOut
	// Malformed is the result of when the packet received after a request is not an echo reply
	Malformed
)

func (r RoundTripResult) String() string {
	switch r {
	case Replied:
		return "replied"
	case TimedOut:
		return "timed out"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// RoundTrip contains the outcome of a single echo request
type RoundTrip struct {
	Seq  int             // seq of reply, or of the request when there is no valid reply
	Len  int             // payload length of reply
	Src  net.IP          // src of reply
	Time time.Duration   // elapsed time between send and receive
	Res  RoundTripResult // result
}
