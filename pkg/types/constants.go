package types

import (
	"fmt"

	"github.com/Wa4h1h/tftpc/pkg/utils"
)

type OpCode uint16

const (
	OpCodeRRQ OpCode = iota + 1
	OpCodeWRQ
	OpCodeDATA
	OpCodeACK
	OpCodeError
)

func (o OpCode) String() string {
	switch o {
	case OpCodeRRQ:
		return "RRQ"
	case OpCodeWRQ:
		return "WRQ"
	case OpCodeDATA:
		return "DATA"
	case OpCodeACK:
		return "ACK"
	case OpCodeError:
		return "ERROR"
	default:
		return fmt.Sprintf("OPCODE(%d)", uint16(o))
	}
}

func (o OpCode) Valid() bool {
	return o >= OpCodeRRQ && o <= OpCodeError
}

type ErrCode uint16

const (
	ErrNotDefined ErrCode = iota
	ErrFileNotFound
	ErrAccessViolation
	ErrDiskFull
	ErrIllegalTftpOp
	ErrUnknownTransferId
	ErrFileAlreadyExists
	ErrNoSuchUser
)

var errMessages = map[ErrCode]string{
	ErrNotDefined:        "Not defined, see error message (if any).",
	ErrFileNotFound:      "File not found",
	ErrAccessViolation:   "Access violation",
	ErrDiskFull:          "Disk full or allocation exceeded.",
	ErrIllegalTftpOp:     "Illegal TFTP operation",
	ErrUnknownTransferId: "Unknown transfer ID",
	ErrFileAlreadyExists: "File already exists",
	ErrNoSuchUser:        "No such user",
}

// Message returns the canonical text of a defined error code.
func (e ErrCode) Message() string {
	if msg, ok := errMessages[e]; ok {
		return msg
	}

	return fmt.Sprintf("unknown error code %d", uint16(e))
}

func (e ErrCode) Valid() bool {
	_, ok := errMessages[e]

	return ok
}

const (
	MaxBlocks      = 65535
	MaxPayloadSize = 512
	HeaderSize     = 4
	DatagramSize   = HeaderSize + MaxPayloadSize
	// RecvBufferSize leaves headroom above a full datagram so oversized
	// packets are detected instead of silently truncated.
	RecvBufferSize = 8192
)

const (
	ModeOctet    = "octet"
	ModeNetascii = "netascii"
	DefaultMode  = ModeOctet
)

const (
	DefaultPort        = 69
	DefaultTimeout     = 25
	DefaultMaxAttempts = 5
)

// BlockNumber converts a block counter to its wire form. The counter never
// wraps: anything above MaxBlocks is rejected.
func BlockNumber(n int) (uint16, error) {
	if n < 0 || n > MaxBlocks {
		return 0, fmt.Errorf("block# %d: %w", n, utils.ErrBlockNumOutOfRange)
	}

	return uint16(n), nil
}
