package bno080

import (
	"encoding/binary"
	"time"

	"github.com/sergev/bno080/report"
	"github.com/sergev/bno080/shtp"
)

const setFeatureLen = 17

// setFeatureCommand builds a set-feature request for report id.
// Layout:
// byte 0: 0xFD set feature command
// byte 1: feature report ID
// byte 2: feature flags
// bytes 3-4: change sensitivity
// bytes 5-8: report interval, µs (little-endian)
// bytes 9-12: batch interval, µs
// bytes 13-16: sensor-specific configuration
func setFeatureCommand(id uint8, interval time.Duration) []byte {
	cmd := make([]byte, setFeatureLen)
	cmd[0] = shtp.ReportSetFeatureCommand
	cmd[1] = id
	binary.LittleEndian.PutUint32(cmd[5:9], uint32(interval/time.Microsecond))
	return cmd
}

// EnableFeature asks the hub to stream report id at the configured
// interval and waits for the matching get-feature response.
func (d *Device) EnableFeature(id uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failed != nil {
		return d.failed
	}
	return d.enableFeature(id)
}

func (d *Device) enableFeature(id uint8) error {
	if err := d.send(shtp.ChannelControl, setFeatureCommand(id, d.cfg.ReportInterval)); err != nil {
		return err
	}

	deadline := time.Now().Add(d.cfg.HandshakeTimeout)
	for {
		p, err := d.waitForPacketType(shtp.ChannelControl, shtp.ReportGetFeatureResponse, time.Until(deadline))
		if err != nil {
			return err
		}
		// Responses for other features do not complete this handshake
		if len(p.Data) < 2 || p.Data[1] != id {
			continue
		}

		if len(p.Data) >= 9 {
			us := binary.LittleEndian.Uint32(p.Data[5:9])
			d.intervals[id] = time.Duration(us) * time.Microsecond
		}
		// A re-enable after a reset keeps the last reading
		if !d.enabled[id] {
			d.readings[id] = report.Sample{ID: id, Values: report.Zero(id)}
			d.order = append(d.order, id)
			d.enabled[id] = true
		}
		d.cfg.Tracer.HandshakeComplete(id)
		return nil
	}
}
