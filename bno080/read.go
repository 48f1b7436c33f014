package bno080

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sergev/bno080/report"
	"github.com/sergev/bno080/shtp"
)

// Kind selects one of the readings exposed to applications
type Kind uint8

const (
	Acceleration       Kind = iota // m/s², report 0x01
	Gyro                           // rad/s, report 0x02
	Magnetic                       // µT, report 0x03
	LinearAcceleration             // m/s², report 0x04
	Quaternion                     // i, j, k, real; report 0x05
)

// Kinds lists every Kind in display order
var Kinds = []Kind{Acceleration, Gyro, Magnetic, LinearAcceleration, Quaternion}

var kindNames = map[Kind]string{
	Acceleration:       "acceleration",
	Gyro:               "gyro",
	Magnetic:           "magnetic",
	LinearAcceleration: "linear_acceleration",
	Quaternion:         "quaternion",
}

// ReportID returns the sensor report that carries k
func (k Kind) ReportID() uint8 {
	switch k {
	case Acceleration:
		return shtp.ReportAccelerometer
	case Gyro:
		return shtp.ReportGyroscope
	case Magnetic:
		return shtp.ReportMagneticField
	case LinearAcceleration:
		return shtp.ReportLinearAcceleration
	case Quaternion:
		return shtp.ReportRotationVector
	}
	return 0
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a name such as "gyro" or "linear_acceleration" to a Kind
func ParseKind(s string) (Kind, error) {
	name := strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown reading %q", s)
}

// Read waits for a fresh report of kind k and returns its values.
// Reports of other kinds that arrive meanwhile update their cached readings.
func (d *Device) Read(k Kind) ([]float64, error) {
	s, err := d.ReadSample(k)
	if err != nil {
		return nil, err
	}
	return s.Values, nil
}

// ReadSample is Read returning the full decoded report
func (d *Device) ReadSample(k Kind) (report.Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failed != nil {
		return report.Sample{}, d.failed
	}
	want := k.ReportID()
	if !d.enabled[want] {
		return report.Sample{}, fmt.Errorf("%w: %s", ErrNotEnabled, k)
	}

	// A reading stored while dispatching another packet, such as during
	// reset recovery, also counts as fresh
	seen := d.updates[want]
	fresh := func() bool { return d.updates[want] != seen }

	deadline := time.Now().Add(d.cfg.ReadTimeout)
	for {
		p, err := d.waitUntil(shtp.ChannelInputReports, anyReport, time.Until(deadline), fresh)
		if errors.Is(err, errSatisfied) {
			return copySample(d.readings[want]), nil
		}
		if err != nil {
			return report.Sample{}, err
		}
		s, err := d.storeReport(p)
		if id, _ := p.SensorReportID(); id != want {
			continue
		}
		if err != nil {
			return report.Sample{}, err
		}
		return copySample(s), nil
	}
}

// Latest returns the cached reading for k without touching the transport.
// Before the first report arrives it is all zeros.
func (d *Device) Latest(k Kind) ([]float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.readings[k.ReportID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotEnabled, k)
	}
	return copySample(s).Values, nil
}

func copySample(s report.Sample) report.Sample {
	s.Values = append([]float64(nil), s.Values...)
	return s
}

// Acceleration returns acceleration on X, Y and Z in m/s²
func (d *Device) Acceleration() ([]float64, error) { return d.Read(Acceleration) }

// Gyro returns angular velocity about X, Y and Z in rad/s
func (d *Device) Gyro() ([]float64, error) { return d.Read(Gyro) }

// Magnetic returns the magnetic field on X, Y and Z in µT
func (d *Device) Magnetic() ([]float64, error) { return d.Read(Magnetic) }

// LinearAcceleration returns acceleration with gravity removed, in m/s²
func (d *Device) LinearAcceleration() ([]float64, error) { return d.Read(LinearAcceleration) }

// Quaternion returns the rotation vector as i, j, k, real
func (d *Device) Quaternion() ([]float64, error) { return d.Read(Quaternion) }

// IsRecoverable reports whether err leaves the session usable
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnknownReport) ||
		errors.Is(err, report.ErrShortReport) || errors.Is(err, ErrNotEnabled)
}
