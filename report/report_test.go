package report

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sergev/bno080/shtp"
)

// wrapped builds a base-timestamp-wrapped input report payload
func wrapped(id uint8, status byte, delta int32, values ...int16) []byte {
	data := make([]byte, dataOffset+2*len(values))
	data[0] = shtp.ReportBaseTimestamp
	binary.LittleEndian.PutUint32(data[1:], uint32(delta))
	data[5] = id
	data[6] = 0x2A // report sequence
	data[7] = status
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[dataOffset+2*i:], uint16(v))
	}
	return data
}

func TestDecodeScale(t *testing.T) {
	p := shtp.Packet{Data: wrapped(shtp.ReportAccelerometer, 3, 0, 4000, -4000, 0)}
	s, err := Decode(p, DefaultTable)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	expected := []float64{15.625, -15.625, 0}
	if len(s.Values) != len(expected) {
		t.Fatalf("Decode() returned %d values, expected %d", len(s.Values), len(expected))
	}
	for i := range expected {
		if s.Values[i] != expected[i] {
			t.Errorf("value[%d] = %v, expected %v", i, s.Values[i], expected[i])
		}
	}
	if s.ID != shtp.ReportAccelerometer {
		t.Errorf("ID = 0x%02X, expected 0x01", s.ID)
	}
}

func TestDecodeScaleFactors(t *testing.T) {
	testCases := []struct {
		name  string
		id    uint8
		scale float64
		count int
	}{
		{"Accelerometer", shtp.ReportAccelerometer, 0.00390625, 3},
		{"Gyroscope", shtp.ReportGyroscope, 0.001953125, 3},
		{"MagneticField", shtp.ReportMagneticField, 0.0625, 3},
		{"LinearAcceleration", shtp.ReportLinearAcceleration, 0.00390625, 3},
		{"RotationVector", shtp.ReportRotationVector, 1.0 / 16384, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := []int16{1, -2, 3, 16384}[:tc.count]
			s, err := Decode(shtp.Packet{Data: wrapped(tc.id, 0, 0, raw...)}, DefaultTable)
			if err != nil {
				t.Fatalf("Decode() returned error: %v", err)
			}
			if len(s.Values) != tc.count {
				t.Fatalf("Decode() returned %d values, expected %d", len(s.Values), tc.count)
			}
			for i, r := range raw {
				want := float64(r) * tc.scale
				if math.Abs(s.Values[i]-want) > 1e-12 {
					t.Errorf("value[%d] = %v, expected %v", i, s.Values[i], want)
				}
			}
		})
	}
}

// A wrapped accelerometer report decodes with the accelerometer entry,
// not an entry for the wrapper ID.
func TestDecodeUnwrapsBaseTimestamp(t *testing.T) {
	table := Table{
		shtp.ReportAccelerometer: {Scale: Q8, Count: 3},
		shtp.ReportBaseTimestamp: {Scale: 1, Count: 1},
	}
	s, err := Decode(shtp.Packet{Data: wrapped(shtp.ReportAccelerometer, 2, -25, 256, 512, 768)}, table)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	if len(s.Values) != 3 || s.Values[0] != 1 || s.Values[1] != 2 || s.Values[2] != 3 {
		t.Errorf("Values = %v, expected [1 2 3]", s.Values)
	}
	if s.Accuracy != AccuracyMedium {
		t.Errorf("Accuracy = %v, expected %v", s.Accuracy, AccuracyMedium)
	}
	if s.BaseDelta != -2500*time.Microsecond {
		t.Errorf("BaseDelta = %v, expected -2.5ms", s.BaseDelta)
	}
}

// An unwrapped report carries its status in byte 2
func TestDecodeUnwrappedAccuracy(t *testing.T) {
	data := make([]byte, dataOffset+6)
	data[0] = shtp.ReportGyroscope
	data[1] = 0x11 // report sequence
	data[2] = 0xFE // status, only the low two bits are accuracy
	binary.LittleEndian.PutUint16(data[dataOffset:], 512)

	s, err := Decode(shtp.Packet{Data: data}, DefaultTable)
	if err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	if s.Accuracy != AccuracyMedium {
		t.Errorf("Accuracy = %v, expected %v", s.Accuracy, AccuracyMedium)
	}
	if s.Values[0] != 1 {
		t.Errorf("value[0] = %v, expected 1", s.Values[0])
	}
	if s.BaseDelta != 0 {
		t.Errorf("BaseDelta = %v, expected 0 for an unwrapped report", s.BaseDelta)
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(shtp.Packet{Data: wrapped(0x2B, 0, 0, 1, 2, 3)}, DefaultTable)
	if !errors.Is(err, ErrUnknownReport) {
		t.Errorf("Decode() of unknown report returned %v, expected ErrUnknownReport", err)
	}

	short := wrapped(shtp.ReportRotationVector, 0, 0, 1, 2, 3)
	_, err = Decode(shtp.Packet{Data: short}, DefaultTable)
	if !errors.Is(err, ErrShortReport) {
		t.Errorf("Decode() of short report returned %v, expected ErrShortReport", err)
	}

	_, err = Decode(shtp.Packet{}, DefaultTable)
	if !errors.Is(err, ErrShortReport) {
		t.Errorf("Decode() of empty packet returned %v, expected ErrShortReport", err)
	}
}

func TestZero(t *testing.T) {
	if n := len(Zero(shtp.ReportRotationVector)); n != 4 {
		t.Errorf("len(Zero(rotation vector)) = %d, expected 4", n)
	}
	if n := len(Zero(shtp.ReportGyroscope)); n != 3 {
		t.Errorf("len(Zero(gyroscope)) = %d, expected 3", n)
	}
}

func TestAccuracyString(t *testing.T) {
	if got := AccuracyHigh.String(); got != "Accuracy high" {
		t.Errorf("String() = %q, expected %q", got, "Accuracy high")
	}
	if got := Unreliable.String(); got != "Unreliable" {
		t.Errorf("String() = %q, expected %q", got, "Unreliable")
	}
}
