package client

import (
	"errors"
	"net"
	"time"

	"github.com/Wa4h1h/tftpc/pkg/types"
	"github.com/Wa4h1h/tftpc/pkg/utils"
	"go.uber.org/zap"
)

// session holds the per-transfer state shared by both engines: the
// transport, the peer TID and the retry counter.
type session struct {
	t           Transport
	l           *zap.SugaredLogger
	server      *net.UDPAddr
	peer        *net.UDPAddr
	retry       *retryPolicy
	progress    ProgressFunc
	now         func() time.Time
	buf         []byte
	waitTimeout time.Duration
	locked      bool
	trace       bool
}

func (c *Client) newSession(t Transport) *session {
	return &session{
		t:           t,
		l:           c.l,
		server:      c.server,
		peer:        c.server,
		retry:       newRetryPolicy(c.cfg.MaxAttempts),
		progress:    c.progress,
		now:         c.now,
		buf:         make([]byte, types.RecvBufferSize),
		waitTimeout: c.cfg.attemptTimeout(),
		trace:       c.cfg.Trace,
	}
}

func (s *session) send(b []byte) error {
	if err := s.t.Send(b, s.peer); err != nil {
		return newError(KindIO, err, "error while sending to %s", s.peer)
	}

	return nil
}

// receive waits for one datagram from the peer. The first datagram locks
// the peer TID; later datagrams from another TID are answered with an
// unknown transfer ID error and dropped. Dropped datagrams do not extend
// the wait: the deadline is fixed when receive is called.
func (s *session) receive() ([]byte, error) {
	deadline := s.now().Add(s.waitTimeout)

	for {
		remaining := deadline.Sub(s.now())
		if remaining <= 0 {
			return nil, utils.ErrTimeout
		}

		n, addr, err := s.t.Receive(s.buf, remaining)
		if err != nil {
			return nil, err
		}

		if !s.locked {
			s.peer = addr
			s.locked = true

			return s.buf[:n], nil
		}

		if sameAddr(addr, s.peer) {
			return s.buf[:n], nil
		}

		s.l.Warnf("dropping packet from unknown tid %s, expected %s", addr, s.peer)

		if b, err := types.NewError(types.ErrUnknownTransferId, "").MarshalBinary(); err == nil {
			if err := s.t.Send(b, addr); err != nil {
				s.l.Errorf("error while answering unknown tid %s: %s", addr, err.Error())
			}
		}
	}
}

// timedOut applies the retry policy. A nil return means the outgoing
// packet should be sent again.
func (s *session) timedOut(block int) error {
	if !s.retry.received {
		return newError(KindTimeout, utils.ErrTimeout, "could not establish connection to %s", s.server)
	}

	if !s.retry.timedOut() {
		return newError(KindTimeout, utils.ErrTimeout, "block %d lost, maximum retry attempts reached", block)
	}

	s.l.Warnf("block %d lost, retransmitting (attempt %d/%d)", block, s.retry.attempt, s.retry.maxAttempts)
	s.progress.emit(ProgressEvent{Kind: EventRetransmit, Block: block, Attempt: s.retry.attempt})

	return nil
}

// waitError turns a failed receive into either a retry (nil) or a fatal
// transfer error.
func (s *session) waitError(err error, block int) error {
	if errors.Is(err, utils.ErrTimeout) {
		return s.timedOut(block)
	}

	return newError(KindIO, err, "error while receiving from %s", s.peer)
}

// abort tells the peer the transfer is over. It is best effort: the
// transfer has already failed locally.
func (s *session) abort(code types.ErrCode, msg string) {
	if !s.locked {
		return
	}

	b, err := types.NewError(code, msg).MarshalBinary()
	if err != nil {
		return
	}

	if err := s.t.Send(b, s.peer); err != nil {
		s.l.Errorf("error while sending error packet: %s", err.Error())
	}
}

func sameAddr(a, b *net.UDPAddr) bool {
	return a != nil && b != nil && a.Port == b.Port && a.IP.Equal(b.IP)
}

// verifySize checks the byte count of a finished transfer against its
// block accounting.
func verifySize(total int64, blocks, lastLen int) error {
	expected := int64(blocks-1)*types.MaxPayloadSize + int64(lastLen)
	if blocks < 1 || total != expected {
		return newError(KindIntegrity, nil,
			"size mismatch: bad transfer, got %d bytes, expected %d", total, expected)
	}

	return nil
}
