package uart

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/sergev/bno080/adapter"
	"github.com/sergev/bno080/config"
)

// USB-UART bridges commonly found on breakout boards
const (
	VendorFTDI    = 0x0403
	VendorSiLabs  = 0x10C4
	VendorWCH     = 0x1A86
	ProductFT232R = 0x6001
	ProductFT230X = 0x6015
	ProductCP210x = 0xEA60
	ProductCH340  = 0x7523
)

func init() {
	adapter.RegisterTransport("uart", Open)
	adapter.RegisterBridge(VendorFTDI, ProductFT232R, "FTDI FT232R")
	adapter.RegisterBridge(VendorFTDI, ProductFT230X, "FTDI FT230X")
	adapter.RegisterBridge(VendorSiLabs, ProductCP210x, "Silicon Labs CP210x")
	adapter.RegisterBridge(VendorWCH, ProductCH340, "WCH CH340")
}

// SerialPort is a transport that owns its serial port
type SerialPort struct {
	*Transport
	port serial.Port
	name string
}

// Open opens the serial port named by the sensor entry.
// An empty port, or "auto", picks the first known USB-UART bridge.
func Open(sensor *config.Sensor) (adapter.Port, error) {
	name := sensor.Port
	if name == "" || name == "auto" {
		var err error
		name, err = adapter.FindBridgePort()
		if err != nil {
			return nil, err
		}
	}
	baud := sensor.Baud
	if baud == 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	return &SerialPort{
		Transport: New(port, Config{ResetDTR: sensor.ResetDTR}),
		port:      port,
		name:      name,
	}, nil
}

// Name returns the serial port name
func (p *SerialPort) Name() string {
	return p.name
}

// Close closes the serial port
func (p *SerialPort) Close() error {
	return p.port.Close()
}
