package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftpc/pkg/utils"
)

type Error struct {
	ErrMsg    string
	ErrorCode ErrCode
	Opcode    OpCode
}

// NewError builds an error packet, falling back to the canonical text of
// code when msg is empty.
func NewError(code ErrCode, msg string) *Error {
	if msg == "" {
		msg = code.Message()
	}

	return &Error{Opcode: OpCodeError, ErrorCode: code, ErrMsg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("error %d: %s", e.ErrorCode, e.ErrMsg)
}

func (e *Error) MarshalBinary() ([]byte, error) {
	if !e.ErrorCode.Valid() {
		return nil, fmt.Errorf("code %d: %w", e.ErrorCode, utils.ErrUndefinedErrCode)
	}

	msg := e.ErrMsg
	if msg == "" {
		msg = e.ErrorCode.Message()
	}

	b := new(bytes.Buffer)
	errLength := HeaderSize + len(msg) + 1
	b.Grow(errLength)

	opcode := OpCodeError

	if err := binary.Write(b, binary.BigEndian, &opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &e.ErrorCode); err != nil {
		return nil, fmt.Errorf("error while writing error code: %w", err)
	}

	b.WriteString(msg)
	b.WriteByte(0)

	return b.Bytes(), nil
}

func (e *Error) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return utils.ErrPacketTooShort
	}

	e.Opcode = OpCode(binary.BigEndian.Uint16(data))
	if e.Opcode != OpCodeError {
		return utils.ErrWrongOpCode
	}

	e.ErrorCode = ErrCode(binary.BigEndian.Uint16(data[2:]))

	// some servers omit the trailing null byte
	msg := data[HeaderSize:]
	if i := bytes.IndexByte(msg, 0); i >= 0 {
		msg = msg[:i]
	}

	e.ErrMsg = string(msg)

	return nil
}
