package client

import (
	"errors"
	"os"

	"github.com/Wa4h1h/tftpc/pkg/types"
	"github.com/Wa4h1h/tftpc/pkg/utils"
	"go.uber.org/multierr"
)

// download reads remote from the server into local. The destination file
// is removed on every failing exit path.
func (c *Client) download(remote, local string) (res Result, err error) {
	f, errOpen := os.OpenFile(local, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if errOpen != nil {
		return res, newError(KindIO, errOpen, "error while opening %s", local)
	}

	defer func() {
		if errC := f.Close(); errC != nil && err == nil {
			err = newError(KindIO, errC, "error while closing %s", local)
		}

		if err != nil {
			if errR := os.Remove(local); errR != nil && !errors.Is(errR, os.ErrNotExist) {
				err = multierr.Append(err, errR)
			}
		}
	}()

	t, errDial := c.dial()
	if errDial != nil {
		return res, newError(KindIO, errDial, "error while opening transport")
	}

	defer c.closeTransport(t)

	rrq, errM := (&types.Request{Opcode: types.OpCodeRRQ, Filename: remote, Mode: c.cfg.Mode}).MarshalBinary()
	if errM != nil {
		return res, newError(KindEncoding, errM, "error while marshalling read request")
	}

	s := c.newSession(t)
	out := rrq
	lastLen := 0

	var (
		data      types.Data
		errPacket types.Error
	)

	for {
		if err := s.send(out); err != nil {
			return res, err
		}

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
		case types.OpCodeDATA:
			if err := data.UnmarshalBinary(pkt); err != nil {
				s.abort(types.ErrIllegalTftpOp, "")

				return res, newError(KindProtocol, err, "bad transfer: malformed data packet")
			}

			if int(data.BlockNum) != res.Blocks+1 {
				s.abort(types.ErrIllegalTftpOp, "unexpected block")

				return res, newError(KindProtocol, nil,
					"bad transfer: block %d instead of %d", data.BlockNum, res.Blocks+1)
			}

			if _, err := f.Write(data.Payload); err != nil {
				s.abort(types.ErrDiskFull, "")

				return res, newError(KindIO, err, "error while writing block %d to %s", data.BlockNum, local)
			}

			res.Blocks++
			res.Bytes += int64(len(data.Payload))
			lastLen = len(data.Payload)
			s.retry.matched()

			if s.trace {
				s.l.Debugf("received block#=%d, received #bytes=%d", data.BlockNum, lastLen)
			}

			s.progress.emit(ProgressEvent{Kind: EventTransfer, Block: res.Blocks, Bytes: res.Bytes})

			ack, errA := (&types.Ack{BlockNum: data.BlockNum}).MarshalBinary()
			if errA != nil {
				return res, newError(KindEncoding, errA, "error while marshalling ack")
			}

			out = ack

			if data.Last() {
				if err := s.send(out); err != nil {
					return res, err
				}

				if err := verifySize(res.Bytes, res.Blocks, lastLen); err != nil {
					return res, err
				}

				c.l.Debugf("received %d blocks, received %d bytes", res.Blocks, res.Bytes)

				return res, nil
			}

			if res.Blocks == types.MaxBlocks {
				s.abort(types.ErrNotDefined, "file too large to be transferred over tftp")

				return res, newError(KindProtocol, utils.ErrBlockNumOutOfRange,
					"bad transfer: file exceeds %d blocks", types.MaxBlocks)
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
