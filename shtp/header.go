package shtp

import (
	"encoding/binary"
	"fmt"
)

const (
	HeaderLen       = 4      // bytes in an SHTP header
	ContinuationBit = 0x8000 // set in the length field of continuation reads
	MaxPacketLen    = 0x7FFF // largest length encodable with the continuation bit masked
)

// Header is the decoded 4-byte SHTP packet header
type Header struct {
	Channel     Channel
	Sequence    uint8
	DataLength  uint16 // TotalLength minus the header, never negative
	TotalLength uint16 // continuation bit already masked off
}

// ParseHeader decodes the first four bytes of b.
// Layout: bytes 0-1 length (little-endian, bit 15 = continuation), byte 2 channel, byte 3 sequence.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("short SHTP header: %d bytes", len(b))
	}
	total := binary.LittleEndian.Uint16(b[0:2]) &^ ContinuationBit
	h := Header{
		Channel:     Channel(b[2]),
		Sequence:    b[3],
		TotalLength: total,
	}
	if total > HeaderLen {
		h.DataLength = total - HeaderLen
	}
	return h, nil
}

// Put writes the header into the first four bytes of b.
// The continuation bit is never set.
func (h Header) Put(b []byte) {
	binary.LittleEndian.PutUint16(b[0:2], h.TotalLength&^ContinuationBit)
	b[2] = byte(h.Channel)
	b[3] = h.Sequence
}

// IsError reports whether the header signals an error instead of a packet:
// an out-of-range channel, or the all-ones pattern of an idle bus.
func (h Header) IsError() bool {
	if !h.Channel.Valid() {
		return true
	}
	// A parsed all-ones read already fails the channel check above
	if h.TotalLength == 0xFFFF && h.Sequence == 0xFF {
		return true
	}
	return false
}

func (h Header) String() string {
	return fmt.Sprintf("channel %s, seq %d, length %d", h.Channel, h.Sequence, h.DataLength)
}
