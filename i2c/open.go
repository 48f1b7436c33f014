package i2c

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	periphi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sergev/bno080/adapter"
	"github.com/sergev/bno080/config"
)

func init() {
	adapter.RegisterTransport("i2c", Open)
}

// Port is a transport on a host I2C bus that owns the bus handle
type Port struct {
	*Transport
	bus periphi2c.BusCloser
}

// Open opens the host I2C bus and pins named by the sensor entry.
// An empty bus name selects the first bus found.
func Open(sensor *config.Sensor) (adapter.Port, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host drivers: %w", err)
	}
	bus, err := i2creg.Open(sensor.Bus)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", sensor.Bus, err)
	}

	cfg := Config{
		Address: uint16(sensor.Address),
		MaxRead: sensor.MaxRead,
	}
	if sensor.IntPin != "" {
		pin := gpioreg.ByName(sensor.IntPin)
		if pin == nil {
			bus.Close()
			return nil, fmt.Errorf("interrupt pin %q not found", sensor.IntPin)
		}
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			bus.Close()
			return nil, fmt.Errorf("failed to configure interrupt pin %s: %w", sensor.IntPin, err)
		}
		cfg.Interrupt = pin
	}
	if sensor.ResetPin != "" {
		pin := gpioreg.ByName(sensor.ResetPin)
		if pin == nil {
			bus.Close()
			return nil, fmt.Errorf("reset pin %q not found", sensor.ResetPin)
		}
		if err := pin.Out(gpio.High); err != nil {
			bus.Close()
			return nil, fmt.Errorf("failed to configure reset pin %s: %w", sensor.ResetPin, err)
		}
		cfg.Reset = pin
	}

	return &Port{Transport: New(bus, cfg), bus: bus}, nil
}

// Close releases the bus
func (p *Port) Close() error {
	return p.bus.Close()
}
