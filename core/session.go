package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

// Session is a sequential run of echo requests against a single target
type Session struct {
	settings *Settings

	// transport is the channel used to send requests and receive replies. The session owns it
	// and closes it when the run ends.
	transport Transport

	// seq is the sequence number of the next echo request.
	seq int

	// logger is an instance of logrus used to log activities related to this session
	logger *log.Logger

	isStarted  bool
	isFinished bool

	// sendHandlers are the callback functions called after an echo request is sent.
	// The function parameters are the session and the sequence number sent.
	sendHandlers []func(*Session, int)

	// rtHandlers are the callback functions called when a round trip happens.
	rtHandlers []func(*Session, *RoundTrip)

	// endHandlers are the callback functions called when the session ends.
	endHandlers []func(*Session)
}

// NewSession creates a new Session that will run over transport
func NewSession(settings *Settings, transport Transport) (*Session, error) {
	logger := NewLogger(settings.LoggingLevel)

	logger.Debug("Validating settings")
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if transport == nil {
		return nil, errors.New("a transport is required")
	}

	logger.Infof("Created session to %s with id %d, packet size %d and ttl %d",
		settings.Target, settings.ID, settings.TotalSize(), settings.TTL)

	return &Session{
		settings:  settings,
		transport: transport,
		logger:    logger,
	}, nil
}

// Run sends Count+1 echo requests, one at a time, each one waiting for the next incoming
// ICMP packet before the following is sent. It stops early on the first packet that is not
// an echo reply, in which case it returns nil. Cancelling ctx unblocks a pending receive.
func (s *Session) Run(ctx context.Context) error {
	if s.isFinished {
		return errors.New("this session has already finished")
	}
	if s.isStarted {
		return errors.New("this session has already started")
	}
	s.isStarted = true
	defer s.finish()

	stop := context.AfterFunc(ctx, func() {
		// unblocks a pending receive
		if err := s.transport.SetReadDeadline(time.Now()); err != nil {
			s.logger.Errorf("Could not interrupt pending receive: %s", err)
		}
	})
	defer stop()

	for s.seq = 0; s.seq <= s.settings.Count; s.seq++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rt, err := s.echo(ctx, s.seq)
		if err != nil {
			return err
		}

		s.processRoundTrip(rt)

		if rt.Res == Malformed {
			s.logger.Warn("Received a malformed packet, ending session")
			return nil
		}
	}

	return nil
}

// IsStarted returns whether this session is started
func (s *Session) IsStarted() bool {
	return s.isStarted
}

// IsFinished returns whether this session is finished
func (s *Session) IsFinished() bool {
	return s.isFinished
}

// Target is the address echo requests are sent to
func (s *Session) Target() net.IP {
	return s.settings.Target
}

// PacketSize is the size of each IPv4 packet sent
func (s *Session) PacketSize() int {
	return s.settings.TotalSize()
}

// AddOnSend adds a handler function that will be called after an echo request is sent
func (s *Session) AddOnSend(handler func(*Session, int)) {
	s.sendHandlers = append(s.sendHandlers, handler)
}

// AddOnRecv adds a handler function that will be called after an echo request is replied or expires
func (s *Session) AddOnRecv(handler func(*Session, *RoundTrip)) {
	s.rtHandlers = append(s.rtHandlers, handler)
}

// AddOnFinish adds a handler function that will be called when the session ends
func (s *Session) AddOnFinish(handler func(*Session)) {
	s.endHandlers = append(s.endHandlers, handler)
}

// echo performs a single build, send, receive and match cycle.
func (s *Session) echo(ctx context.Context, seq int) (*RoundTrip, error) {
	pkt, err := s.buildPacket(seq)
	if err != nil {
		return nil, fmt.Errorf("could not build echo request %d: %w", seq, err)
	}

	s.logger.Tracef("Writing packet %x to address %s", pkt, s.settings.Target)
	sentAt := time.Now()
	if err := s.transport.Send(pkt, s.settings.Target); err != nil {
		return nil, fmt.Errorf("error while sending echo request %d: %w", seq, err)
	}

	for _, f := range s.sendHandlers {
		f(s, seq)
	}

	raw, src, err := s.receive(ctx)
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			s.logger.Infof("Echo request %d timed out after %s", seq, s.getTimeoutDuration())
			return &RoundTrip{Seq: seq, Time: s.getTimeoutDuration(), Res: TimedOut}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("error while reading from connection: %w", err)
	}

	return s.matchReply(raw, src, seq, time.Since(sentAt))
}

// buildPacket allocates and fills the IPv4 packet carrying the echo request seq.
func (s *Session) buildPacket(seq int) ([]byte, error) {
	total := s.settings.TotalSize()

	ipBuf := make([]byte, total)
	icmpBuf := make([]byte, total-IPv4HeaderLen)

	ipPkt, err := BuildIPv4Packet(ipBuf, s.settings)
	if err != nil {
		return nil, err
	}

	req, err := BuildEchoRequest(icmpBuf, s.settings)
	if err != nil {
		return nil, err
	}
	req.SetSequence(seq)

	ipPkt.SetPayload(req.Bytes())

	return ipPkt.Bytes(), nil
}

// receive waits for the next incoming packet, bounded by the timeout setting when there is one.
func (s *Session) receive(ctx context.Context) ([]byte, net.IP, error) {
	if s.isTimeoutActive() {
		s.logger.Tracef("Setting read deadline to %s", s.getTimeoutDuration())
		if err := s.transport.SetReadDeadline(time.Now().Add(s.getTimeoutDuration())); err != nil {
			return nil, nil, fmt.Errorf("error while setting read deadline: %w", err)
		}
	}

	// checked after the deadline is set so that a cancellation cannot be overwritten
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.logger.Trace("Reading from connection")
	return s.transport.Recv()
}

// matchReply turns the raw packet received after request seq into a round trip.
func (s *Session) matchReply(raw []byte, src net.IP, seq int, elapsed time.Duration) (*RoundTrip, error) {
	s.logger.Tracef("Raw packet received from %s: %x", src, raw)

	reply, err := ParseEchoReply(raw)
	if err != nil {
		s.logger.Errorf("Could not parse raw packet: %s", err)
		return &RoundTrip{Seq: seq, Len: len(raw), Src: src, Time: elapsed, Res: Malformed}, nil
	}

	if s.settings.StrictSequence && reply.Seq() != seq&0xffff {
		return nil, fmt.Errorf("%w: sent %d, received %d", ErrSequenceMismatch, seq&0xffff, reply.Seq())
	}

	return &RoundTrip{
		Seq:  reply.Seq(),
		Len:  len(reply.Payload()),
		Src:  src,
		Time: elapsed,
		Res:  Replied,
	}, nil
}

// processRoundTrip calls all handlers for a round trip.
func (s *Session) processRoundTrip(rt *RoundTrip) {
	s.logger.Infof("Calling all handlers for round trip %d (%s)", rt.Seq, rt.Res)
	for _, f := range s.rtHandlers {
		f(s, rt)
	}
}

// finish releases the transport and calls the ending handlers.
func (s *Session) finish() {
	if err := s.transport.Close(); err != nil {
		s.logger.Errorf("Could not close transport: %s", err)
	}

	s.logger.Info("Calling ending callbacks")
	for _, f := range s.endHandlers {
		f(s)
	}

	s.isFinished = true
	s.logger.Info("Session ended")
}

// Returns the timeout setting parsed as a duration in seconds.
func (s *Session) getTimeoutDuration() time.Duration {
	return time.Second * time.Duration(s.settings.Timeout)
}

// Returns whether receiving is bounded by a timeout.
func (s *Session) isTimeoutActive() bool {
	return s.settings.Timeout > 0
}
