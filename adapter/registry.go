package adapter

import (
	"fmt"
	"sort"

	"github.com/sergev/bno080/config"
)

// TransportFactory opens a transport for the given sensor configuration
type TransportFactory func(sensor *config.Sensor) (Port, error)

// BridgeInfo describes a USB-UART bridge chip that may carry a hub
type BridgeInfo struct {
	VendorID  uint16
	ProductID uint16
	Name      string
}

var (
	registeredTransports = map[string]TransportFactory{}
	registeredBridges    []BridgeInfo
)

// RegisterTransport registers a transport factory under the name used
// by the `transport` key of a sensor entry
func RegisterTransport(name string, factory TransportFactory) {
	registeredTransports[name] = factory
}

// RegisterBridge registers a USB-UART bridge by its VID/PID
func RegisterBridge(vendorID, productID uint16, name string) {
	registeredBridges = append(registeredBridges, BridgeInfo{
		VendorID:  vendorID,
		ProductID: productID,
		Name:      name,
	})
}

// Transports returns the names of registered transports
func Transports() []string {
	names := make([]string, 0, len(registeredTransports))
	for name := range registeredTransports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenTransport opens the transport named by the sensor entry
func OpenTransport(sensor *config.Sensor) (Port, error) {
	factory, ok := registeredTransports[sensor.Transport]
	if !ok {
		return nil, fmt.Errorf("unsupported transport %q (have %v)", sensor.Transport, Transports())
	}
	return factory(sensor)
}

// lookupBridge returns the registered bridge with the given VID/PID
func lookupBridge(vendorID, productID uint16) (BridgeInfo, bool) {
	for _, info := range registeredBridges {
		if info.VendorID == vendorID && info.ProductID == productID {
			return info, true
		}
	}
	return BridgeInfo{}, false
}
