package wire

import "encoding/binary"

// WireSize is sizeof the pulse wire format: one 8-bit signed code, one
// 32-bit sender coid, one 32-bit value (spec.md §6, "Pulse wire format").
const WireSize = 9

// Pulse is the fixed fire-and-forget payload carried by a rcvid==0
// record.
type Pulse struct {
	Code  int8
	Coid  int32
	Value int32
}

// Marshal writes the pulse in wire order into a freshly allocated
// WireSize-byte slice.
func (p Pulse) Marshal() []byte {
	buf := make([]byte, WireSize)
	buf[0] = byte(p.Code)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(p.Coid))
	binary.LittleEndian.PutUint32(buf[5:9], uint32(p.Value))
	return buf
}

// UnmarshalPulse reads a pulse from the front of buf. buf must be at
// least WireSize bytes.
func UnmarshalPulse(buf []byte) Pulse {
	return Pulse{
		Code:  int8(buf[0]),
		Coid:  int32(binary.LittleEndian.Uint32(buf[1:5])),
		Value: int32(binary.LittleEndian.Uint32(buf[5:9])),
	}
}
