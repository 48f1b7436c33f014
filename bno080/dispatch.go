package bno080

import (
	"errors"
	"fmt"

	"github.com/sergev/bno080/report"
	"github.com/sergev/bno080/shtp"
)

// maxRestarts bounds how often initialization restarts for hub resets
const maxRestarts = 3

func (d *Device) initialize() error {
	d.failed = nil
	d.resetPending = false
	if err := d.t.HardReset(); err != nil {
		d.setState(StateUninitialized)
		return fmt.Errorf("failed to reset hub: %w", err)
	}
	d.awaitingInit = true
	d.initComplete = false
	d.idRead = false
	d.setState(StateAwaitingAdvertisement)
	return d.configure()
}

// configure identifies the hub and enables the configured reports in
// order. A reset reported by the hub while this runs starts it over.
func (d *Device) configure() error {
	d.configuring = true
	defer func() { d.configuring = false }()

	for restarts := 0; ; restarts++ {
		d.resetPending = false
		err := d.configureOnce()
		if !errors.Is(err, errRestart) && !d.resetPending {
			return err
		}
		if restarts == maxRestarts {
			d.resetPending = false
			return d.violation("hub reset %d times during initialization", restarts+1)
		}
		d.sleep(d.cfg.ResetSettle)
	}
}

func (d *Device) configureOnce() error {
	if err := d.queryProductID(); err != nil {
		return err
	}
	d.setState(StateFeatureSetup)
	for _, id := range d.reports() {
		if err := d.enableFeature(id); err != nil {
			if errors.Is(err, errRestart) {
				return err
			}
			return fmt.Errorf("failed to enable %s: %w", shtp.ReportName(id), err)
		}
	}
	d.setState(StateReady)
	return nil
}

// dispatch applies the side effects of a packet nobody was waiting for.
func (d *Device) dispatch(p shtp.Packet) error {
	switch p.Channel() {
	case shtp.ChannelInputReports:
		// Reports that are not enabled or fail to decode are dropped here.
		// Read surfaces decode errors for the kind it waits for.
		_, _ = d.storeReport(p)

	case shtp.ChannelCommand:
		if p.Header.DataLength == shtp.AdvertisementLen {
			d.awaitingInit = true
			d.initComplete = false
			d.idRead = false
			if d.state == StateReady {
				d.setState(StateAwaitingAdvertisement)
			}
		}

	case shtp.ChannelExecutable:
		if len(p.Data) > 0 && p.Data[0] == shtp.ExecReset {
			return d.handleReset()
		}

	case shtp.ChannelControl:
		id, _ := p.ReportID()
		if id == shtp.ReportCommandResponse && len(p.Data) > 2 && p.Data[2] == shtp.CommandInitialize {
			if !d.awaitingInit {
				return d.violation("unsolicited initialize received before advertisement")
			}
			d.awaitingInit = false
			d.initComplete = true
		}
	}
	return nil
}

// handleReset reacts to the hub announcing a reset on the executable channel
func (d *Device) handleReset() error {
	d.initComplete = false
	d.idRead = false
	if d.configuring {
		d.resetPending = true
		return nil
	}
	d.setState(StateAwaitingAdvertisement)
	d.sleep(d.cfg.ResetSettle)
	return d.configure()
}

// storeReport decodes an input report and caches it when its report is enabled.
func (d *Device) storeReport(p shtp.Packet) (report.Sample, error) {
	id, ok := p.SensorReportID()
	if !ok {
		return report.Sample{}, fmt.Errorf("%w: empty input report", report.ErrShortReport)
	}
	if !d.enabled[id] {
		return report.Sample{}, fmt.Errorf("%w: %s", ErrNotEnabled, shtp.ReportName(id))
	}
	s, err := report.Decode(p, report.DefaultTable)
	if err != nil {
		return report.Sample{}, err
	}
	d.readings[id] = s
	d.updates[id]++
	return s, nil
}
