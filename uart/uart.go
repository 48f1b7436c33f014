// Package uart carries SHTP over the hub's UART-SHTP serial mode.
package uart

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sergev/bno080/shtp"
)

// DefaultBaudRate is the only rate the hub supports in UART-SHTP mode
const DefaultBaudRate = 3000000

// ErrNoData is returned by ReadExact when no frame has arrived
var ErrNoData = errors.New("uart: no data available")

// Port is the part of a serial port the transport needs.
// go.bug.st/serial ports satisfy it.
type Port interface {
	io.ReadWriter
	SetReadTimeout(t time.Duration) error
	SetDTR(dtr bool) error
}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// ByteDelay paces outbound bytes; the hub drops bytes sent back to back. Default 100 µs.
	ByteDelay time.Duration
	// PollTimeout bounds a single read while checking for data. Default 1 ms.
	PollTimeout time.Duration
	// ResetDTR pulses DTR, wired to NRST, for a hard reset; otherwise a soft reset is sent.
	ResetDTR bool
	// ResetDelay is how long HardReset waits for the hub to boot. Default 200 ms.
	ResetDelay time.Duration
}

// Transport implements bno080.Transport on a serial port
type Transport struct {
	port Port
	cfg  Config

	dec        Decoder
	rx         [256]byte
	frame      []byte // frame being served by ReadExact
	pos        int
	err        error // read error seen while polling, returned by the next read
	seq        uint8 // executable channel sequence for soft resets
	timeoutSet bool

	sleep func(time.Duration)
}

// New creates a transport on an open serial port
func New(port Port, cfgs ...Config) *Transport {
	var cfg Config
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.ByteDelay <= 0 {
		cfg.ByteDelay = 100 * time.Microsecond
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Millisecond
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = 200 * time.Millisecond
	}
	return &Transport{
		port:  port,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// DataReady polls the port once and reports whether a complete frame is
// queued. A read error is held for the next ReadExact.
func (t *Transport) DataReady() bool {
	if t.pos < len(t.frame) || t.err != nil || t.dec.Pending() > 0 {
		return true
	}
	if err := t.poll(); err != nil {
		t.err = err
		return true
	}
	return t.dec.Pending() > 0
}

// ReadExact fills buf from the current frame, taking the next queued one if needed
func (t *Transport) ReadExact(buf []byte) error {
	if t.err != nil {
		err := t.err
		t.err = nil
		return err
	}
	if len(buf) == 0 {
		return nil
	}
	if t.pos >= len(t.frame) {
		if t.dec.Pending() == 0 {
			if err := t.poll(); err != nil {
				return err
			}
		}
		if t.dec.Pending() == 0 {
			return ErrNoData
		}
		t.frame, t.pos = t.dec.Next(), 0
	}
	if len(buf) > len(t.frame)-t.pos {
		return fmt.Errorf("uart: read of %d bytes past end of %d byte frame: %w",
			len(buf), len(t.frame), io.ErrUnexpectedEOF)
	}
	t.pos += copy(buf, t.frame[t.pos:])
	return nil
}

// poll performs one bounded read and feeds the decoder
func (t *Transport) poll() error {
	if !t.timeoutSet {
		if err := t.port.SetReadTimeout(t.cfg.PollTimeout); err != nil {
			return fmt.Errorf("uart: failed to set read timeout: %w", err)
		}
		t.timeoutSet = true
	}
	n, err := t.port.Read(t.rx[:])
	if n > 0 {
		t.dec.Write(t.rx[:n])
	}
	if err != nil {
		return fmt.Errorf("uart: read failed: %w", err)
	}
	return nil
}

// WriteFrame frames one SHTP frame and writes it a byte at a time
func (t *Transport) WriteFrame(frame []byte) error {
	out := AppendFrame(make([]byte, 0, len(frame)+8), frame)
	for i := range out {
		if _, err := t.port.Write(out[i : i+1]); err != nil {
			return fmt.Errorf("uart: failed to write %d byte frame: %w", len(frame), err)
		}
		t.sleep(t.cfg.ByteDelay)
	}
	return nil
}

// HardReset pulses DTR, or sends a reset command, then waits for the hub to boot.
// Anything received before the reset is discarded.
func (t *Transport) HardReset() error {
	t.frame, t.pos, t.err = nil, 0, nil
	t.dec.Reset()

	if t.cfg.ResetDTR {
		if err := t.port.SetDTR(true); err != nil {
			return fmt.Errorf("uart: failed to assert DTR: %w", err)
		}
		t.sleep(10 * time.Millisecond)
		if err := t.port.SetDTR(false); err != nil {
			return fmt.Errorf("uart: failed to release DTR: %w", err)
		}
	} else {
		frame, _ := shtp.Encode(shtp.ChannelExecutable, t.seq, []byte{shtp.ExecReset})
		t.seq++
		if err := t.WriteFrame(frame); err != nil {
			return err
		}
	}
	t.sleep(t.cfg.ResetDelay)
	return nil
}
