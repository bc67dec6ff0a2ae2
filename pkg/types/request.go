package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftpc/pkg/utils"
)

type Request struct {
	Filename string
	Mode     string
	Opcode   OpCode
}

// IsPrintable reports whether s only holds printable ASCII characters,
// whitespace included.
func IsPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 || c > 0x7e) && (c < '\t' || c > '\r') {
			return false
		}
	}

	return true
}

func (r *Request) MarshalBinary() ([]byte, error) {
	if r.Opcode != OpCodeRRQ && r.Opcode != OpCodeWRQ {
		return nil, utils.ErrWrongOpCode
	}

	if !IsPrintable(r.Filename) {
		return nil, fmt.Errorf("filename %q: %w", r.Filename, utils.ErrFilenameNotPrintable)
	}

	mode := r.Mode
	if mode == "" {
		mode = DefaultMode
	}

	b := new(bytes.Buffer)
	rqLen := 2 + len(r.Filename) + 1 + len(mode) + 1

	b.Grow(rqLen)

	if err := binary.Write(b, binary.BigEndian, &r.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing Opcode: %w", err)
	}

	b.WriteString(r.Filename)
	b.WriteByte(0)
	b.WriteString(mode)
	b.WriteByte(0)

	return b.Bytes(), nil
}

func (r *Request) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return utils.ErrPacketTooShort
	}

	r.Opcode = OpCode(binary.BigEndian.Uint16(data))
	if r.Opcode != OpCodeRRQ && r.Opcode != OpCodeWRQ {
		return utils.ErrWrongOpCode
	}

	rest := data[2:]

	fileEnd := bytes.IndexByte(rest, 0)
	if fileEnd < 0 {
		return fmt.Errorf("error while decoding filename: %w", utils.ErrMissingNullByte)
	}

	r.Filename = string(rest[:fileEnd])
	rest = rest[fileEnd+1:]

	modeEnd := bytes.IndexByte(rest, 0)
	if modeEnd < 0 || modeEnd != len(rest)-1 {
		return fmt.Errorf("error while decoding mode: %w", utils.ErrMissingNullByte)
	}

	r.Mode = string(rest[:modeEnd])

	return nil
}

// UnmarshalAs decodes data and fails unless it carries the expected
// request opcode.
func (r *Request) UnmarshalAs(expected OpCode, data []byte) error {
	if err := r.UnmarshalBinary(data); err != nil {
		return err
	}

	if r.Opcode != expected {
		return fmt.Errorf("got %s, expected %s: %w", r.Opcode, expected, utils.ErrWrongOpCode)
	}

	return nil
}
