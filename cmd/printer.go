package cmd

import (
	"fmt"
	"io"

	"github.com/mikaelmello/spring/core"
)

// printer writes one line per round trip of a session
type printer struct {
	out io.Writer
}

// registerPrinter registers the printing callbacks to be called by the session
func registerPrinter(s *core.Session, out io.Writer) {
	p := &printer{out: out}
	s.AddOnRecv(p.printOnRoundTrip)
}

func (p *printer) printOnRoundTrip(s *core.Session, rt *core.RoundTrip) {
	switch rt.Res {
	case core.Replied:
		fmt.Fprintf(p.out, "%d bytes from %s: icmp seq=%d\n", rt.Len, rt.Src, rt.Seq)
	case core.TimedOut:
		fmt.Fprintf(p.out, "Request timeout for icmp seq=%d\n", rt.Seq)
	case core.Malformed:
		fmt.Fprintln(p.out, "Malformed packet")
	}
}
