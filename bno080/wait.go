package bno080

import (
	"fmt"
	"time"

	"github.com/sergev/bno080/shtp"
)

// anyReport matches every report ID in waitForPacketType
const anyReport = -1

// waitForPacket polls the transport until a packet is ready and reads it.
func (d *Device) waitForPacket(timeout time.Duration) (shtp.Packet, error) {
	deadline := time.Now().Add(timeout)
	for !d.t.DataReady() {
		if !time.Now().Before(deadline) {
			return shtp.Packet{}, fmt.Errorf("%w waiting for a packet", ErrTimeout)
		}
		d.sleep(d.cfg.PollInterval)
	}
	return d.readPacket()
}

// readPacket reads one frame into the receive buffer and copies it out.
func (d *Device) readPacket() (shtp.Packet, error) {
	if err := d.t.ReadExact(d.buf[:shtp.HeaderLen]); err != nil {
		return shtp.Packet{}, fmt.Errorf("failed to read header: %w", err)
	}
	h, err := shtp.ParseHeader(d.buf[:shtp.HeaderLen])
	if err != nil {
		return shtp.Packet{}, err
	}
	if h.IsError() {
		return shtp.Packet{}, d.violation("error frame (% X)", d.buf[:shtp.HeaderLen])
	}

	end := shtp.HeaderLen + int(h.DataLength)
	if end > len(d.buf) {
		return shtp.Packet{}, d.violation("%d byte packet exceeds %d byte buffer", end, len(d.buf))
	}
	if err := d.t.ReadExact(d.buf[shtp.HeaderLen:end]); err != nil {
		return shtp.Packet{}, fmt.Errorf("failed to read %d byte payload: %w", h.DataLength, err)
	}

	p, err := shtp.Assemble(h, d.buf[:end])
	if err != nil {
		return shtp.Packet{}, err
	}
	d.seq.Observe(h)
	d.cfg.Tracer.FrameReceived(p)
	return p, nil
}

// waitForPacketType reads packets until one arrives on ch whose report ID
// matches reportID (or any, with anyReport). Every other packet is
// dispatched before polling continues. The timeout covers the whole wait.
func (d *Device) waitForPacketType(ch shtp.Channel, reportID int, timeout time.Duration) (shtp.Packet, error) {
	return d.waitUntil(ch, reportID, timeout, nil)
}

// waitUntil is waitForPacketType that also gives up with errSatisfied
// when done reports true after a packet was dispatched.
func (d *Device) waitUntil(ch shtp.Channel, reportID int, timeout time.Duration, done func() bool) (shtp.Packet, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			if reportID == anyReport {
				return shtp.Packet{}, fmt.Errorf("%w waiting for a packet on channel %s", ErrTimeout, ch)
			}
			return shtp.Packet{}, fmt.Errorf("%w waiting for %s on channel %s",
				ErrTimeout, shtp.ReportName(uint8(reportID)), ch)
		}
		p, err := d.waitForPacket(min(remaining, d.cfg.PacketTimeout))
		if err != nil {
			return shtp.Packet{}, err
		}

		if p.Channel() == ch {
			if reportID == anyReport {
				return p, nil
			}
			if id, ok := p.ReportID(); ok && int(id) == reportID {
				return p, nil
			}
		}
		if err := d.dispatch(p); err != nil {
			return shtp.Packet{}, err
		}
		if d.resetPending {
			return shtp.Packet{}, errRestart
		}
		if done != nil && done() {
			return shtp.Packet{}, errSatisfied
		}
	}
}

// send frames payload with the next outbound sequence number for ch
func (d *Device) send(ch shtp.Channel, payload []byte) error {
	frame, err := shtp.Encode(ch, d.seq.Next(ch), payload)
	if err != nil {
		return err
	}
	if err := d.t.WriteFrame(frame); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", ch, err)
	}
	return nil
}

// violation records a fatal protocol error; the session is over until Initialize
func (d *Device) violation(format string, args ...any) error {
	err := fmt.Errorf("%w: %s", ErrProtocolViolation, fmt.Sprintf(format, args...))
	d.failed = err
	d.setState(StateUninitialized)
	return err
}
