package bno080

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/sergev/bno080/shtp"
)

// ProductID is the identity reported by the hub
type ProductID struct {
	SWMajor     uint8
	SWMinor     uint8
	SWPatch     uint16
	PartNumber  uint32
	BuildNumber uint32
}

func (id ProductID) String() string {
	return fmt.Sprintf("part %d, version %d.%d.%d build %d",
		id.PartNumber, id.SWMajor, id.SWMinor, id.SWPatch, id.BuildNumber)
}

const productIDResponseLen = 14

// parseProductID decodes a product ID response payload:
// byte 0: 0xF8
// byte 1: reset cause
// byte 2: software major version
// byte 3: software minor version
// bytes 4-7: part number
// bytes 8-11: build number
// bytes 12-13: software patch version
func parseProductID(data []byte) (ProductID, bool) {
	if len(data) < productIDResponseLen || data[0] != shtp.ReportProductIDResponse {
		return ProductID{}, false
	}
	return ProductID{
		SWMajor:     data[2],
		SWMinor:     data[3],
		PartNumber:  binary.LittleEndian.Uint32(data[4:8]),
		BuildNumber: binary.LittleEndian.Uint32(data[8:12]),
		SWPatch:     binary.LittleEndian.Uint16(data[12:14]),
	}, true
}

// queryProductID reads the hub identity once per session.
func (d *Device) queryProductID() error {
	if d.idRead {
		return nil
	}
	if err := d.send(shtp.ChannelControl, []byte{shtp.ReportProductIDRequest, 0}); err != nil {
		return err
	}

	deadline := time.Now().Add(d.cfg.HandshakeTimeout)
	for {
		p, err := d.waitForPacketType(shtp.ChannelControl, shtp.ReportProductIDResponse, time.Until(deadline))
		if errors.Is(err, ErrTimeout) {
			return fmt.Errorf("%w: %w", ErrIdentificationFailed, err)
		}
		if err != nil {
			return err
		}
		id, ok := parseProductID(p.Data)
		if !ok {
			continue
		}
		d.product = id
		d.idRead = true
		return nil
	}
}
