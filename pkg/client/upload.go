package client

import (
	"errors"
	"io"
	"os"

	"github.com/Wa4h1h/tftpc/pkg/types"
	"github.com/Wa4h1h/tftpc/pkg/utils"
)

// upload writes local to the server as remote.
func (c *Client) upload(local, remote string) (res Result, err error) {
	stats, errStat := os.Stat(local)
	if errStat != nil {
		return res, newError(KindIO, errStat, "file %s not found", local)
	}

	if stats.IsDir() {
		return res, newError(KindIO, nil, "%s is a directory", local)
	}

	if stats.Size()/types.MaxPayloadSize >= types.MaxBlocks {
		return res, newError(KindEncoding, utils.ErrBlockNumOutOfRange,
			"file too large to be transferred over tftp")
	}

	f, errOpen := os.Open(local)
	if errOpen != nil {
		return res, newError(KindIO, errOpen, "error while opening %s", local)
	}

	defer func() {
		if err := f.Close(); err != nil {
			c.l.Errorf("error while closing file: %s", err.Error())
		}
	}()

	t, errDial := c.dial()
	if errDial != nil {
		return res, newError(KindIO, errDial, "error while opening transport")
	}

	defer c.closeTransport(t)

	wrq, errM := (&types.Request{Opcode: types.OpCodeWRQ, Filename: remote, Mode: c.cfg.Mode}).MarshalBinary()
	if errM != nil {
		return res, newError(KindEncoding, errM, "error while marshalling write request")
	}

	s := c.newSession(t)
	out := wrq
	resend := true
	lastLen := -1
	block := make([]byte, types.MaxPayloadSize)

	var (
		ack       types.Ack
		errPacket types.Error
	)

	for {
		if resend {
			if err := s.send(out); err != nil {
				return res, err
			}
		}

		resend = true

		pkt, errR := s.receive()
		if errR != nil {
			if err := s.waitError(errR, res.Blocks); err != nil {
				return res, err
			}

			continue
		}

		op, errOp := types.PeekOpcode(pkt)
		if errOp != nil {
			s.abort(types.ErrIllegalTftpOp, "")

			return res, newError(KindProtocol, errOp, "bad transfer: malformed packet")
		}

		switch op {
		case types.OpCodeACK:
			if err := ack.UnmarshalBinary(pkt); err != nil {
				s.abort(types.ErrIllegalTftpOp, "")

				return res, newError(KindProtocol, err, "bad transfer: malformed ack packet")
			}

			switch int(ack.BlockNum) {
			case res.Blocks:
			case res.Blocks - 1:
				// echo of the previous ack, the current block is still in flight
				if s.trace {
					s.l.Debugf("duplicate ack block#=%d", ack.BlockNum)
				}

				resend = false

				continue
			default:
				s.abort(types.ErrIllegalTftpOp, "unexpected block")

				return res, newError(KindProtocol, nil,
					"bad transfer: block %d instead of %d", ack.BlockNum, res.Blocks)
			}

			s.retry.matched()

			if res.Blocks > 0 {
				if s.trace {
					s.l.Debugf("received ack block#=%d", ack.BlockNum)
				}

				s.progress.emit(ProgressEvent{Kind: EventTransfer, Block: res.Blocks, Bytes: res.Bytes, Total: stats.Size()})
			}

			if lastLen >= 0 && lastLen < types.MaxPayloadSize {
				return c.finishUpload(res, lastLen)
			}

			n, errRead := io.ReadFull(f, block)
			if errRead != nil && !errors.Is(errRead, io.EOF) && !errors.Is(errRead, io.ErrUnexpectedEOF) {
				s.abort(types.ErrNotDefined, "")

				return res, newError(KindIO, errRead, "error while reading %s", local)
			}

			blockNum, errB := types.BlockNumber(res.Blocks + 1)
			if errB != nil {
				s.abort(types.ErrNotDefined, "file too large to be transferred over tftp")

				return res, newError(KindEncoding, errB, "error while numbering block")
			}

			b, errD := (&types.Data{BlockNum: blockNum, Payload: block[:n]}).MarshalBinary()
			if errD != nil {
				return res, newError(KindEncoding, errD, "error while marshalling data packet")
			}

			out = b
			res.Blocks++
			res.Bytes += int64(n)
			lastLen = n

			if s.trace {
				s.l.Debugf("sent block#=%d, sent #bytes=%d", blockNum, n)
			}

			if n == 0 {
				// The empty block closes a transfer whose size is a multiple of
				// the block size. It is sent once and its ack is not awaited.
				if err := s.send(out); err != nil {
					return res, err
				}

				return c.finishUpload(res, lastLen)
			}
		case types.OpCodeError:
			if err := errPacket.UnmarshalBinary(pkt); err != nil {
				return res, newError(KindProtocol, err, "bad transfer: malformed error packet")
			}

			return res, serverError(&errPacket)
		default:
			s.abort(types.ErrIllegalTftpOp, "")

			return res, newError(KindProtocol, utils.ErrWrongOpCode, "bad transfer: unexpected %s packet", op)
		}
	}
}

func (c *Client) finishUpload(res Result, lastLen int) (Result, error) {
	if err := verifySize(res.Bytes, res.Blocks, lastLen); err != nil {
		return res, err
	}

	c.l.Debugf("sent %d blocks, sent %d bytes", res.Blocks, res.Bytes)

	return res, nil
}
