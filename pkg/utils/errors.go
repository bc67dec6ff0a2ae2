package utils

import "errors"

var (
	ErrWrongOpCode           = errors.New("error: invalid operation code")
	ErrUnknownOpCode         = errors.New("error: unknown operation code")
	ErrPacketTooShort        = errors.New("error: packet too short")
	ErrDataPayloadTooBig     = errors.New("error: payload exceeds 512 bytes")
	ErrBlockNumOutOfRange    = errors.New("error: block number exceeds 65535")
	ErrFilenameNotPrintable  = errors.New("error: filename is not printable ascii")
	ErrMissingNullByte       = errors.New("error: missing null byte terminator")
	ErrUndefinedErrCode      = errors.New("error: undefined error code")
	ErrTimeout               = errors.New("error: timed out waiting for packet")
	ErrCanNotSetReadTimeout  = errors.New("error: can not set read timeout")
	ErrCanNotSetWriteTimeout = errors.New("error: can not set write timeout")
	ErrNotConnected          = errors.New("error: no server address set")
)
