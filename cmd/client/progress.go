package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Wa4h1h/tftpc/pkg/client"
	"golang.org/x/term"
)

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[2K"
)

// progress redraws a single status line. It stays silent when the output
// is not a terminal.
type progress struct {
	out     io.Writer
	enabled bool
	active  bool
}

func newProgress(f *os.File) *progress {
	return &progress{out: f, enabled: term.IsTerminal(int(f.Fd()))}
}

func (p *progress) start() {
	if !p.enabled || p.active {
		return
	}

	p.active = true
	fmt.Fprint(p.out, hideCursor)
}

func (p *progress) stop() {
	if !p.active {
		return
	}

	p.active = false
	fmt.Fprint(p.out, clearLine+showCursor)
}

func (p *progress) update(ev client.ProgressEvent) {
	if !p.enabled {
		return
	}

	p.start()

	switch ev.Kind {
	case client.EventTransfer:
		if ev.Total > 0 {
			fmt.Fprintf(p.out, "%sSending...%d%%", clearLine, ev.Bytes*100/ev.Total)
		} else {
			fmt.Fprintf(p.out, "%sReceiving...%d bytes.", clearLine, ev.Bytes)
		}
	case client.EventRetransmit:
		fmt.Fprintf(p.out, "%sBlock %d lost. Retransmitting...%d", clearLine, ev.Block, ev.Attempt)
	}
}

// shellClient clears the progress line once a shell transfer returns so
// the shell output starts on a clean line.
type shellClient struct {
	*client.Client
	p *progress
}

func (s *shellClient) Get(remote, local string) (client.Result, error) {
	defer s.p.stop()

	return s.Client.Get(remote, local)
}

func (s *shellClient) Put(local, remote string) (client.Result, error) {
	defer s.p.stop()

	return s.Client.Put(local, remote)
}
