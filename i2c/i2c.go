// Package i2c carries SHTP over an I2C bus.
//
// The hub repeats the packet header at the start of every read, so a frame
// is fetched by peeking its 4-byte header and then reading the whole packet.
// When the bus limits transfer size, each continuation read starts with a
// fresh header that is stripped.
package i2c

import (
	"errors"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"

	"github.com/sergev/bno080/shtp"
)

// I2C addresses
const (
	Address    = 0x4A // SA0 low
	AddressAlt = 0x4B // SA0 high
)

// ErrNoData is returned by ReadExact when the hub has nothing to send
var ErrNoData = errors.New("i2c: no data available")

// InterruptPin is the active-low H_INTN line; periph gpio pins satisfy it.
type InterruptPin interface {
	Read() gpio.Level
}

// ResetPin is the active-low NRST line; periph gpio pins satisfy it.
type ResetPin interface {
	Out(l gpio.Level) error
}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x4A if zero.
	Address uint16
	// Interrupt, when set, replaces header polling for data ready.
	Interrupt InterruptPin
	// Reset, when set, is pulsed by HardReset; otherwise a soft reset is sent.
	Reset ResetPin
	// MaxRead limits the size of a single read; 0 reads whole frames.
	MaxRead int
	// ResetDelay is how long HardReset waits for the hub to boot. Default 200 ms.
	ResetDelay time.Duration
}

// Transport implements bno080.Transport on an I2C bus.
type Transport struct {
	bus drivers.I2C
	cfg Config

	hdr   [shtp.HeaderLen]byte
	chunk []byte
	frame []byte // frame being served by ReadExact
	pos   int
	err   error // bus error seen while polling, returned by the next read
	seq   uint8 // executable channel sequence for soft resets

	sleep func(time.Duration)
}

// New creates a transport on an already configured bus.
func New(bus drivers.I2C, cfgs ...Config) *Transport {
	var cfg Config
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = 200 * time.Millisecond
	}
	if cfg.MaxRead > 0 && cfg.MaxRead <= shtp.HeaderLen {
		cfg.MaxRead = shtp.HeaderLen + 1
	}
	return &Transport{
		bus:   bus,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// DataReady reports whether a frame is pending. The header is read to
// confirm it, only once the interrupt line is low when one is wired.
// A bus error is held for the next ReadExact.
func (t *Transport) DataReady() bool {
	if t.pos < len(t.frame) || t.err != nil {
		return true
	}
	if t.cfg.Interrupt != nil && t.cfg.Interrupt.Read() != gpio.Low {
		return false
	}
	ready, err := t.fetch()
	if err != nil {
		t.err = err
		return true
	}
	return ready
}

// ReadExact fills buf from the pending frame, fetching one if needed.
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
		ready, err := t.fetch()
		if err != nil {
			return err
		}
		if !ready {
			return ErrNoData
		}
	}
	if len(buf) > len(t.frame)-t.pos {
		return fmt.Errorf("i2c: read of %d bytes past end of %d byte frame: %w",
			len(buf), len(t.frame), io.ErrUnexpectedEOF)
	}
	t.pos += copy(buf, t.frame[t.pos:])
	return nil
}

// fetch peeks the next header and, when a packet is announced, reads it whole.
func (t *Transport) fetch() (bool, error) {
	t.frame, t.pos = t.frame[:0], 0
	if err := t.bus.Tx(t.cfg.Address, nil, t.hdr[:]); err != nil {
		return false, fmt.Errorf("i2c: failed to read header: %w", err)
	}
	h, _ := shtp.ParseHeader(t.hdr[:])
	if h.IsError() {
		// Hand the header over so the driver can report the error frame
		t.frame = append(t.frame, t.hdr[:]...)
		return true, nil
	}
	if h.TotalLength < shtp.HeaderLen {
		return false, nil
	}

	total := int(h.TotalLength)
	for first := true; len(t.frame) < total; first = false {
		n := total - len(t.frame)
		if !first {
			n += shtp.HeaderLen
		}
		if t.cfg.MaxRead > 0 && n > t.cfg.MaxRead {
			n = t.cfg.MaxRead
		}
		if cap(t.chunk) < n {
			t.chunk = make([]byte, n)
		}
		chunk := t.chunk[:n]
		if err := t.bus.Tx(t.cfg.Address, nil, chunk); err != nil {
			t.frame = t.frame[:0]
			return false, fmt.Errorf("i2c: failed to read %d byte frame: %w", total, err)
		}
		if first {
			t.frame = append(t.frame, chunk...)
		} else {
			t.frame = append(t.frame, chunk[shtp.HeaderLen:]...)
		}
	}
	// Report the length without the continuation bit
	h.Put(t.frame)
	return true, nil
}

// WriteFrame writes one SHTP frame in a single transfer.
func (t *Transport) WriteFrame(frame []byte) error {
	if err := t.bus.Tx(t.cfg.Address, frame, nil); err != nil {
		return fmt.Errorf("i2c: failed to write %d byte frame: %w", len(frame), err)
	}
	return nil
}

// HardReset pulses NRST, or sends a reset command when no pin is wired,
// then waits for the hub to boot.
func (t *Transport) HardReset() error {
	t.frame, t.pos, t.err = t.frame[:0], 0, nil

	if t.cfg.Reset != nil {
		if err := t.cfg.Reset.Out(gpio.Low); err != nil {
			return fmt.Errorf("i2c: failed to assert reset: %w", err)
		}
		t.sleep(10 * time.Millisecond)
		if err := t.cfg.Reset.Out(gpio.High); err != nil {
			return fmt.Errorf("i2c: failed to release reset: %w", err)
		}
	} else {
		frame, _ := shtp.Encode(shtp.ChannelExecutable, t.seq, []byte{shtp.ExecReset})
		t.seq++
		if err := t.WriteFrame(frame); err != nil {
			return err
		}
	}

	if t.cfg.Interrupt == nil {
		t.sleep(t.cfg.ResetDelay)
		return nil
	}
	// Stop waiting as soon as the hub asserts its interrupt line
	for waited := time.Duration(0); waited < t.cfg.ResetDelay; waited += time.Millisecond {
		if t.cfg.Interrupt.Read() == gpio.Low {
			return nil
		}
		t.sleep(time.Millisecond)
	}
	return nil
}
