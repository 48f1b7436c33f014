package shtp

import (
	"fmt"
	"strings"
)

// Packet is a received SHTP packet. Data is owned by the packet
// and never aliases the receive buffer it was read from.
type Packet struct {
	Header Header
	Data   []byte
}

// Assemble builds a packet from a header and the raw frame it was parsed from.
// The payload raw[4:4+DataLength] is copied.
func Assemble(h Header, raw []byte) (Packet, error) {
	end := HeaderLen + int(h.DataLength)
	if len(raw) < end {
		return Packet{}, fmt.Errorf("short SHTP frame: have %d bytes, header announces %d", len(raw), end)
	}
	data := make([]byte, h.DataLength)
	copy(data, raw[HeaderLen:end])
	return Packet{Header: h, Data: data}, nil
}

// Channel returns the channel the packet arrived on
func (p Packet) Channel() Channel {
	return p.Header.Channel
}

// ReportID returns the first payload byte, if there is one
func (p Packet) ReportID() (uint8, bool) {
	if len(p.Data) == 0 {
		return 0, false
	}
	return p.Data[0], true
}

// SensorReportID returns the ID of the sensor report carried by an input
// report packet, looking through a base timestamp wrapper if present.
func (p Packet) SensorReportID() (uint8, bool) {
	id, ok := p.ReportID()
	if !ok {
		return 0, false
	}
	if id == ReportBaseTimestamp {
		if len(p.Data) < 6 {
			return 0, false
		}
		return p.Data[5], true
	}
	return id, true
}

// Encode builds an outbound frame: header followed by payload
func Encode(ch Channel, seq uint8, payload []byte) ([]byte, error) {
	total := HeaderLen + len(payload)
	if total > MaxPacketLen {
		return nil, fmt.Errorf("SHTP payload too long: %d bytes", len(payload))
	}
	frame := make([]byte, total)
	Header{
		Channel:     ch,
		Sequence:    seq,
		DataLength:  uint16(len(payload)),
		TotalLength: uint16(total),
	}.Put(frame)
	copy(frame[HeaderLen:], payload)
	return frame, nil
}

// String renders the packet for debug output
func (p Packet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Packet: %s", p.Header)
	if id, ok := p.ReportID(); ok {
		fmt.Fprintf(&b, ", report %s", ReportName(id))
		if sid, ok := p.SensorReportID(); ok && sid != id {
			fmt.Fprintf(&b, " (%s)", ReportName(sid))
		}
	}
	for i, v := range p.Data {
		// Offsets count from the start of the frame, header included
		offset := i + HeaderLen
		if offset%4 == 0 {
			fmt.Fprintf(&b, "\n[0x%02X]", offset)
		}
		fmt.Fprintf(&b, " 0x%02X", v)
	}
	return b.String()
}
