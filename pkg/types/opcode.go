package types

import (
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftpc/pkg/utils"
)

// PeekOpcode reads the discriminant of a datagram without decoding the rest.
func PeekOpcode(data []byte) (OpCode, error) {
	if len(data) < 2 {
		return 0, utils.ErrPacketTooShort
	}

	op := OpCode(binary.BigEndian.Uint16(data))
	if !op.Valid() {
		return 0, fmt.Errorf("opcode %d: %w", uint16(op), utils.ErrUnknownOpCode)
	}

	return op, nil
}
