package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftpc/pkg/utils"
)

type Data struct {
	Payload  []byte
	BlockNum uint16
	Opcode   OpCode
}

// Last reports whether the block terminates the transfer. A short payload
// is the only end-of-file signal the protocol has.
func (d *Data) Last() bool {
	return len(d.Payload) < MaxPayloadSize
}

func (d *Data) MarshalBinary() ([]byte, error) {
	if len(d.Payload) > MaxPayloadSize {
		return nil, utils.ErrDataPayloadTooBig
	}

	b := new(bytes.Buffer)
	dataLen := HeaderSize + len(d.Payload)
	b.Grow(dataLen)

	opcode := OpCodeDATA

	if err := binary.Write(b, binary.BigEndian, &opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &d.BlockNum); err != nil {
		return nil, fmt.Errorf("error while writing block#: %w", err)
	}

	b.Write(d.Payload)

	return b.Bytes(), nil
}

func (d *Data) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return utils.ErrPacketTooShort
	}

	d.Opcode = OpCode(binary.BigEndian.Uint16(data))
	if d.Opcode != OpCodeDATA {
		return utils.ErrWrongOpCode
	}

	if len(data) > DatagramSize {
		return utils.ErrDataPayloadTooBig
	}

	d.BlockNum = binary.BigEndian.Uint16(data[2:])
	d.Payload = make([]byte, len(data)-HeaderSize)
	copy(d.Payload, data[HeaderSize:])

	return nil
}
