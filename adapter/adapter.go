package adapter

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sergev/bno080/bno080"
	"github.com/sergev/bno080/config"
)

// Port is an open transport to a sensor hub
type Port interface {
	bno080.Transport
	Close() error
}

// Named is implemented by ports that know their device name
type Named interface {
	Name() string
}

// openSensor opens the configured transport and initializes the hub.
// The caller closes the returned port.
func openSensor(sensor *config.Sensor) (*bno080.Device, Port, error) {
	port, err := OpenTransport(sensor)
	if err != nil {
		return nil, nil, err
	}
	if n, ok := port.(Named); ok {
		log.WithField("port", n.Name()).Debug("transport opened")
	}

	cfg := bno080.Config{
		ReportInterval: sensor.Interval(),
		ReadTimeout:    sensor.Timeout(),
	}
	if debug {
		cfg.Tracer = bno080.LogTracer{}
	}

	dev := bno080.New(port, cfg)
	if err := dev.Initialize(); err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("failed to initialize sensor %q: %w", sensor.Name, err)
	}
	return dev, port, nil
}
