package uart

import "github.com/sergev/bno080/shtp"

// UART-SHTP framing bytes
const (
	FlagByte   = 0x7E // opens and closes every frame
	EscapeByte = 0x7D // precedes a stuffed byte
	EscapeXor  = 0x20 // stuffed byte = b ^ EscapeXor
)

// Protocol identifiers carried after the opening flag
const (
	ProtocolBufferStatus = 0x00
	ProtocolSHTP         = 0x01
)

// AppendFrame appends the UART framing of one SHTP frame to dst.
// Layout: 0x7E, protocol id, byte-stuffed SHTP frame, 0x7E.
func AppendFrame(dst, frame []byte) []byte {
	dst = append(dst, FlagByte, ProtocolSHTP)
	for _, b := range frame {
		if b == FlagByte || b == EscapeByte {
			dst = append(dst, EscapeByte, b^EscapeXor)
		} else {
			dst = append(dst, b)
		}
	}
	return append(dst, FlagByte)
}

// maxFrameLen bounds a decoded frame: protocol id plus the largest SHTP packet
const maxFrameLen = 1 + shtp.MaxPacketLen

// Decoder reassembles SHTP frames from the UART byte stream.
// Frames of other protocols, frames too short to hold a header and frames
// longer than the largest SHTP packet are dropped.
type Decoder struct {
	buf     []byte
	inFrame bool
	escaped bool
	frames  [][]byte
	dropped int
}

// Write feeds received bytes into the decoder. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	for _, b := range p {
		d.feed(b)
	}
	return len(p), nil
}

func (d *Decoder) feed(b byte) {
	switch {
	case b == FlagByte:
		if d.inFrame && len(d.buf) > 0 {
			d.finish()
		}
		d.inFrame = true
		d.escaped = false
		d.buf = d.buf[:0]
	case !d.inFrame:
		// Noise outside a frame
	case b == EscapeByte && !d.escaped:
		d.escaped = true
	default:
		if d.escaped {
			b ^= EscapeXor
			d.escaped = false
		}
		if len(d.buf) == maxFrameLen {
			// Overlong frame, or a lost flag: skip to the next flag
			d.dropped++
			d.inFrame = false
			d.buf = d.buf[:0]
			return
		}
		d.buf = append(d.buf, b)
	}
}

func (d *Decoder) finish() {
	if d.buf[0] != ProtocolSHTP || len(d.buf)-1 < shtp.HeaderLen {
		d.dropped++
		return
	}
	frame := make([]byte, len(d.buf)-1)
	copy(frame, d.buf[1:])
	d.frames = append(d.frames, frame)
}

// Pending returns the number of complete frames queued
func (d *Decoder) Pending() int {
	return len(d.frames)
}

// Next removes and returns the oldest queued frame, or nil
func (d *Decoder) Next() []byte {
	if len(d.frames) == 0 {
		return nil
	}
	frame := d.frames[0]
	d.frames[0] = nil
	d.frames = d.frames[1:]
	return frame
}

// Dropped returns how many frames were discarded
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Reset discards queued frames and any partial frame
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.inFrame = false
	d.escaped = false
	d.frames = nil
}
