package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikaelmello/spring/core"
)

// Runner is the struct that is responsible for running the program
type Runner struct {
	session *core.Session
	ctx     context.Context
	cancel  context.CancelFunc
	sigch   chan os.Signal
	endch   chan error
}

// newRunner opens a raw ICMP transport and creates a runner over it
func newRunner(settings *core.Settings, out io.Writer) (*Runner, error) {
	transport, err := core.NewRawTransport()
	if err != nil {
		return nil, err
	}

	r, err := newRunnerWithTransport(settings, transport, out)
	if err != nil {
		transport.Close()
		return nil, err
	}

	return r, nil
}

// newRunnerWithTransport creates a runner with the initialized values
func newRunnerWithTransport(settings *core.Settings, transport core.Transport, out io.Writer) (*Runner, error) {
	session, err := core.NewSession(settings, transport)
	if err != nil {
		return nil, err
	}

	registerPrinter(session, out)

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		session: session,
		ctx:     ctx,
		cancel:  cancel,
		sigch:   make(chan os.Signal, 1),
		endch:   make(chan error, 1),
	}, nil
}

// Start starts the runner
func (r *Runner) Start() {
	r.handleSignals()

	go func() {
		err := r.session.Run(r.ctx)
		r.endch <- err
	}()
}

// RequestStop requests the stop of the session
func (r *Runner) RequestStop() {
	r.cancel()
}

// Wait blocks the caller until the runner finishes. A stop request is not an error.
func (r *Runner) Wait() error {
	err := <-r.endch

	signal.Stop(r.sigch)
	r.cancel()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleSignals registers the signals that request the stop of the session
func (r *Runner) handleSignals() {
	signal.Notify(r.sigch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-r.sigch:
			r.RequestStop()
		case <-r.ctx.Done():
		}
	}()
}
