package i2c

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"tinygo.org/x/drivers"

	"github.com/sergev/bno080/shtp"
)

var _ drivers.I2C = (*i2ctest.Playback)(nil)

type fakeIntPin struct{ level gpio.Level }

func (p *fakeIntPin) Read() gpio.Level { return p.level }

type fakeResetPin struct{ levels []gpio.Level }

func (p *fakeResetPin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return nil
}

func newTestTransport(bus drivers.I2C, cfg Config) (*Transport, *[]time.Duration) {
	tr := New(bus, cfg)
	var slept []time.Duration
	tr.sleep = func(d time.Duration) { slept = append(slept, d) }
	return tr, &slept
}

func readFrame(t *testing.T, tr *Transport) (shtp.Header, []byte) {
	t.Helper()
	var hdr [shtp.HeaderLen]byte
	if err := tr.ReadExact(hdr[:]); err != nil {
		t.Fatalf("ReadExact(header) failed: %v", err)
	}
	h, err := shtp.ParseHeader(hdr[:])
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	data := make([]byte, h.DataLength)
	if err := tr.ReadExact(data); err != nil {
		t.Fatalf("ReadExact(payload) failed: %v", err)
	}
	return h, data
}

func TestReadWholeFrame(t *testing.T) {
	frame := []byte{0x0A, 0x00, 0x02, 0x05, 0xFC, 0x05, 0x00, 0x00, 0x00, 0x00}
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: Address, R: frame[:4]},
			{Addr: Address, R: frame},
		},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{})

	if !tr.DataReady() {
		t.Fatal("DataReady() = false, want true")
	}
	h, data := readFrame(t, tr)
	if h.Channel != shtp.ChannelControl || h.Sequence != 5 || h.DataLength != 6 {
		t.Errorf("header = %v", h)
	}
	if !bytes.Equal(data, frame[4:]) {
		t.Errorf("payload = % x, want % x", data, frame[4:])
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

func TestIdleBus(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: Address, R: []byte{0, 0, 0, 0}}},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{})
	if tr.DataReady() {
		t.Error("DataReady() = true on idle bus")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

func TestErrorFrameHandedOver(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: Address, R: []byte{0xFF, 0xFF, 0xFF, 0xFF}}},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{})
	if !tr.DataReady() {
		t.Fatal("DataReady() = false, want true for error frame")
	}
	var hdr [shtp.HeaderLen]byte
	if err := tr.ReadExact(hdr[:]); err != nil {
		t.Fatalf("ReadExact failed: %v", err)
	}
	h, _ := shtp.ParseHeader(hdr[:])
	if !h.IsError() {
		t.Errorf("header %v is not an error frame", h)
	}
}

func TestChunkedRead(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: Address, R: []byte{0x0C, 0x00, 0x03, 0x09}},
			{Addr: Address, R: []byte{0x0C, 0x00, 0x03, 0x09, 0x01, 0x02, 0x03, 0x04}},
			{Addr: Address, R: []byte{0x08, 0x80, 0x03, 0x09, 0x05, 0x06, 0x07, 0x08}},
		},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{MaxRead: 8})

	if !tr.DataReady() {
		t.Fatal("DataReady() = false, want true")
	}
	h, data := readFrame(t, tr)
	if h.TotalLength != 12 || h.Channel != shtp.ChannelInputReports {
		t.Errorf("header = %v", h)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("payload = % x, want % x", data, payload)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

func TestReadPastFrame(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: Address, R: []byte{0x05, 0x00, 0x01, 0x00}},
			{Addr: Address, R: []byte{0x05, 0x00, 0x01, 0x00, 0x01}},
		},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{})
	buf := make([]byte, 8)
	if err := tr.ReadExact(buf); err == nil {
		t.Error("ReadExact past end of frame succeeded")
	}
}

func TestInterruptPin(t *testing.T) {
	frame := []byte{0x05, 0x00, 0x01, 0x02, shtp.ExecReset}
	pin := &fakeIntPin{level: gpio.High}
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: Address, R: frame[:4]},
			{Addr: Address, R: frame},
		},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{Interrupt: pin})

	if tr.DataReady() {
		t.Error("DataReady() = true with interrupt line high")
	}
	if bus.Count != 0 {
		t.Errorf("bus read %d times while the interrupt line was high", bus.Count)
	}
	pin.level = gpio.Low
	if !tr.DataReady() {
		t.Fatal("DataReady() = false with interrupt line low")
	}
	h, data := readFrame(t, tr)
	if h.Channel != shtp.ChannelExecutable || len(data) != 1 || data[0] != shtp.ExecReset {
		t.Errorf("frame = %v % x", h, data)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

// A low interrupt line with nothing behind it is not data
func TestInterruptPinSpurious(t *testing.T) {
	pin := &fakeIntPin{level: gpio.Low}
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: Address, R: []byte{0, 0, 0, 0}}},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{Interrupt: pin})

	if tr.DataReady() {
		t.Error("DataReady() = true for an empty header")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

func TestBusErrorDeferred(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	tr, _ := newTestTransport(bus, Config{})

	if !tr.DataReady() {
		t.Fatal("DataReady() = false, want true so the error is surfaced")
	}
	var hdr [shtp.HeaderLen]byte
	if err := tr.ReadExact(hdr[:]); err == nil {
		t.Error("ReadExact() = nil, want bus error")
	}
}

func TestWriteFrame(t *testing.T) {
	frame, _ := shtp.Encode(shtp.ChannelControl, 1, []byte{shtp.ReportProductIDRequest, 0})
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: AddressAlt, W: frame}},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{Address: AddressAlt})
	if err := tr.WriteFrame(frame); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

func TestHardResetPin(t *testing.T) {
	rst := &fakeResetPin{}
	bus := &i2ctest.Playback{DontPanic: true}
	tr, slept := newTestTransport(bus, Config{Reset: rst, ResetDelay: 50 * time.Millisecond})

	if err := tr.HardReset(); err != nil {
		t.Fatalf("HardReset failed: %v", err)
	}
	if len(rst.levels) != 2 || rst.levels[0] != gpio.Low || rst.levels[1] != gpio.High {
		t.Errorf("reset line driven %v, want [Low High]", rst.levels)
	}
	want := []time.Duration{10 * time.Millisecond, 50 * time.Millisecond}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("slept %v, want %v", *slept, want)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

func TestHardResetWaitsForInterrupt(t *testing.T) {
	rst := &fakeResetPin{}
	pin := &fakeIntPin{level: gpio.Low}
	tr, slept := newTestTransport(&i2ctest.Playback{DontPanic: true},
		Config{Reset: rst, Interrupt: pin, ResetDelay: 50 * time.Millisecond})

	if err := tr.HardReset(); err != nil {
		t.Fatalf("HardReset failed: %v", err)
	}
	// Only the reset pulse itself, the hub is already signalling
	if len(*slept) != 1 {
		t.Errorf("slept %v, want only the reset pulse", *slept)
	}
}

func TestSoftReset(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: Address, W: []byte{0x05, 0x00, 0x01, 0x00, shtp.ExecReset}},
			{Addr: Address, W: []byte{0x05, 0x00, 0x01, 0x01, shtp.ExecReset}},
		},
		DontPanic: true,
	}
	tr, _ := newTestTransport(bus, Config{})

	for i := 0; i < 2; i++ {
		if err := tr.HardReset(); err != nil {
			t.Fatalf("HardReset #%d failed: %v", i, err)
		}
	}
	if err := bus.Close(); err != nil {
		t.Errorf("bus.Close() = %v", err)
	}
}

func TestSoftResetWriteError(t *testing.T) {
	tr, _ := newTestTransport(&i2ctest.Playback{DontPanic: true}, Config{})
	err := tr.HardReset()
	if err == nil {
		t.Fatal("HardReset() = nil, want write error")
	}
	if errors.Is(err, ErrNoData) {
		t.Errorf("HardReset() = %v, want bus error", err)
	}
}
