// Package report decodes BNO080 input sensor reports into physical units.
//
// Sensor values are Q-point fixed-point: the reported value is a signed
// 16-bit integer times a power-of-two scale fixed per report.
package report

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sergev/bno080/shtp"
)

// Errors returned by Decode
var (
	ErrUnknownReport = errors.New("report: unknown report")
	ErrShortReport   = errors.New("report: short report")
)

const (
	dataOffset      = 9 // first sensor value, relative to the payload start
	statusOffset    = 7 // status byte of a base-timestamp-wrapped report
	bareStatus      = 2 // status byte of an unwrapped report
	baseDeltaOffset = 1 // base delta, 100 µs ticks, signed
	baseDeltaTick   = 100 * time.Microsecond
)

// Q-point scale factors
var (
	Q4  = math.Ldexp(1, -4)
	Q8  = math.Ldexp(1, -8)
	Q9  = math.Ldexp(1, -9)
	Q14 = math.Ldexp(1, -14)
)

// Spec describes how to decode one report
type Spec struct {
	Scale float64 // multiplier applied to each raw value
	Count int     // number of 16-bit components
}

// Table maps a sensor report ID to its Spec
type Table map[uint8]Spec

// DefaultTable covers the reports this driver enables
var DefaultTable = Table{
	shtp.ReportAccelerometer:      {Scale: Q8, Count: 3},
	shtp.ReportGyroscope:          {Scale: Q9, Count: 3},
	shtp.ReportMagneticField:      {Scale: Q4, Count: 3},
	shtp.ReportLinearAcceleration: {Scale: Q8, Count: 3},
	shtp.ReportRotationVector:     {Scale: Q14, Count: 4},
}

// Accuracy is the two-bit status the hub attaches to each report
type Accuracy uint8

const (
	Unreliable Accuracy = iota
	AccuracyLow
	AccuracyMedium
	AccuracyHigh
)

func (a Accuracy) String() string {
	switch a & 0x03 {
	case Unreliable:
		return "Unreliable"
	case AccuracyLow:
		return "Accuracy low"
	case AccuracyMedium:
		return "Accuracy medium"
	default:
		return "Accuracy high"
	}
}

// Sample is one decoded sensor report
type Sample struct {
	ID        uint8         // sensor report ID after unwrapping
	Values    []float64     // components in physical units
	Accuracy  Accuracy      // low two bits of the report's status byte
	BaseDelta time.Duration // zero unless the report was wrapped
}

// Decode converts the sensor values of p into physical units using t.
// A base timestamp wrapper (report 0xFB) is looked through: the wrapped
// report ID sits at payload byte 5. Values are signed little-endian 16-bit
// integers starting at payload byte 9.
func Decode(p shtp.Packet, t Table) (Sample, error) {
	id, ok := p.SensorReportID()
	if !ok {
		return Sample{}, fmt.Errorf("%w: %d byte payload", ErrShortReport, len(p.Data))
	}
	spec, ok := t[id]
	if !ok {
		return Sample{}, fmt.Errorf("%w: 0x%02X", ErrUnknownReport, id)
	}
	end := dataOffset + 2*spec.Count
	if len(p.Data) < end {
		return Sample{}, fmt.Errorf("%w: %s needs %d bytes, have %d",
			ErrShortReport, shtp.ReportName(id), end, len(p.Data))
	}

	s := Sample{
		ID:     id,
		Values: make([]float64, spec.Count),
	}
	for i := range s.Values {
		raw := int16(binary.LittleEndian.Uint16(p.Data[dataOffset+2*i:]))
		s.Values[i] = float64(raw) * spec.Scale
	}

	if p.Data[0] == shtp.ReportBaseTimestamp {
		s.Accuracy = Accuracy(p.Data[statusOffset] & 0x03)
		ticks := int32(binary.LittleEndian.Uint32(p.Data[baseDeltaOffset:]))
		s.BaseDelta = time.Duration(ticks) * baseDeltaTick
	} else {
		s.Accuracy = Accuracy(p.Data[bareStatus] & 0x03)
	}
	return s, nil
}

// Zero returns a zero reading sized for report id: four components for
// the rotation vector, three otherwise.
func Zero(id uint8) []float64 {
	if id == shtp.ReportRotationVector {
		return make([]float64, 4)
	}
	return make([]float64, 3)
}
