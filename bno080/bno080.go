// Package bno080 drives a Hillcrest/CEVA BNO080 sensor hub over SHTP.
//
// The driver is synchronous: every exported call drives the read loop on
// the calling goroutine until the expected packet arrives or a timeout
// elapses. Packets the caller did not ask for are dispatched for their side
// effects (reset recovery, cached readings) before the loop continues.
//
//	d := bno080.New(transport)
//	if err := d.Initialize(); err != nil { ... }
//	q, err := d.Read(bno080.Quaternion)
package bno080

import (
	"slices"
	"sync"
	"time"

	"github.com/sergev/bno080/report"
	"github.com/sergev/bno080/shtp"
)

// DataBufferSize is the capacity of the receive buffer; larger packets are rejected
const DataBufferSize = 512

// Transport is the byte-level link to the hub (I2C, SPI or UART).
type Transport interface {
	// DataReady reports whether a packet can be read without blocking
	DataReady() bool
	// ReadExact fills buf from the current inbound packet
	ReadExact(buf []byte) error
	// WriteFrame sends one complete SHTP frame, header included
	WriteFrame(frame []byte) error
	// HardReset resets the hub and returns once it begins advertising
	HardReset() error
}

// Config controls driver behaviour. All fields are optional.
type Config struct {
	// ReportInterval requested for each sensor report. Default 50 ms (20 Hz).
	ReportInterval time.Duration
	// PacketTimeout bounds a single wait for the transport to become ready. Default 15 s.
	PacketTimeout time.Duration
	// HandshakeTimeout bounds each set-feature and product-id exchange. Default 5 s.
	HandshakeTimeout time.Duration
	// ReadTimeout bounds Read while waiting for a fresh report. Default 5 s.
	ReadTimeout time.Duration
	// ResetSettle is the pause after a reset event before reconfiguring. Default 1 s.
	ResetSettle time.Duration
	// PollInterval is the pause between DataReady polls. Default 1 ms.
	PollInterval time.Duration
	// Reports enabled during initialization, in order. Default: gyroscope,
	// accelerometer, linear acceleration, rotation vector, magnetic field.
	Reports []uint8
	// Tracer receives frame, state and handshake events. Default: none.
	Tracer Tracer
}

// DefaultReports is the order reports are enabled in
var DefaultReports = []uint8{
	shtp.ReportGyroscope,
	shtp.ReportAccelerometer,
	shtp.ReportLinearAcceleration,
	shtp.ReportRotationVector,
	shtp.ReportMagneticField,
}

func (c Config) withDefaults() Config {
	if c.ReportInterval <= 0 {
		c.ReportInterval = 50 * time.Millisecond
	}
	if c.PacketTimeout <= 0 {
		c.PacketTimeout = 15 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.ResetSettle <= 0 {
		c.ResetSettle = time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Millisecond
	}
	if len(c.Reports) == 0 {
		c.Reports = DefaultReports
	}
	if c.Tracer == nil {
		c.Tracer = nopTracer{}
	}
	return c
}

// State is the initialization lifecycle of the hub
type State uint8

const (
	StateUninitialized State = iota
	StateAwaitingAdvertisement
	StateFeatureSetup
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingAdvertisement:
		return "awaiting advertisement"
	case StateFeatureSetup:
		return "feature setup"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Device is a BNO080 reached through a Transport.
// Exported methods may be called from several goroutines; each call holds
// the device for its whole duration.
type Device struct {
	mu  sync.Mutex
	t   Transport
	cfg Config

	buf [DataBufferSize]byte // receive buffer, overwritten by every read
	seq shtp.Sequence

	enabled   map[uint8]bool
	order     []uint8 // reports in the order they were first enabled
	intervals map[uint8]time.Duration
	readings  map[uint8]report.Sample
	updates   map[uint8]uint64 // count of readings stored per report
	product   ProductID

	state        State
	awaitingInit bool
	initComplete bool
	idRead       bool

	configuring  bool
	resetPending bool
	failed       error // sticky protocol violation

	sleep func(time.Duration)
}

// New creates a driver for the hub behind t.
// It does not touch the device; call Initialize.
func New(t Transport, cfgs ...Config) *Device {
	var cfg Config
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	return &Device{
		t:         t,
		cfg:       cfg.withDefaults(),
		enabled:   make(map[uint8]bool),
		intervals: make(map[uint8]time.Duration),
		readings:  make(map[uint8]report.Sample),
		updates:   make(map[uint8]uint64),
		sleep:     time.Sleep,
	}
}

// Initialize hard-resets the hub, reads its product ID and enables the
// configured reports. It also clears a previous protocol violation.
func (d *Device) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialize()
}

// State returns the current lifecycle state
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// InitComplete reports whether the hub has signalled that its own
// initialization finished since the last advertisement.
func (d *Device) InitComplete() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initComplete
}

// ProductID returns the identity read during initialization
func (d *Device) ProductID() (ProductID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.product, d.idRead
}

// Enabled returns the enabled report IDs: the configured reports in order,
// then those enabled later through EnableFeature
func (d *Device) Enabled() []uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []uint8
	for _, id := range d.reports() {
		if d.enabled[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReportInterval returns the interval the hub granted for report id
func (d *Device) ReportInterval(id uint8) (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	iv, ok := d.intervals[id]
	return iv, ok
}

// Sequence returns the last sequence number seen on ch
func (d *Device) Sequence(ch shtp.Channel) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq.Last(ch)
}

// reports returns every report to enable after a reset: the configured
// ones followed by any enabled at runtime
func (d *Device) reports() []uint8 {
	ids := append([]uint8(nil), d.cfg.Reports...)
	for _, id := range d.order {
		if !slices.Contains(d.cfg.Reports, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (d *Device) setState(s State) {
	if s == d.state {
		return
	}
	from := d.state
	d.state = s
	d.cfg.Tracer.StateChanged(from, s)
}
