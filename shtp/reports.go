package shtp

import "fmt"

// Control channel report IDs
const (
	ReportGetFeatureRequest  = 0xFE
	ReportSetFeatureCommand  = 0xFD
	ReportGetFeatureResponse = 0xFC
	ReportBaseTimestamp      = 0xFB // wraps input reports with a timestamp base
	ReportTimestampRebase    = 0xFA
	ReportProductIDRequest   = 0xF9
	ReportProductIDResponse  = 0xF8
	ReportFRSWriteRequest    = 0xF7
	ReportFRSWriteData       = 0xF6
	ReportFRSWriteResponse   = 0xF5
	ReportFRSReadRequest     = 0xF4
	ReportFRSReadResponse    = 0xF3
	ReportCommandRequest     = 0xF2
	ReportCommandResponse    = 0xF1
)

// Sensor report (feature) IDs
const (
	ReportAccelerometer      = 0x01 // calibrated acceleration, m/s²
	ReportGyroscope          = 0x02 // calibrated angular velocity, rad/s
	ReportMagneticField      = 0x03 // calibrated magnetic field, µT
	ReportLinearAcceleration = 0x04 // acceleration with gravity removed, m/s²
	ReportRotationVector     = 0x05 // orientation quaternion
)

// Executable channel commands
const (
	ExecReset = 0x01 // host to hub: reset; hub to host: reset complete
)

// Command response codes carried in byte 2 of a command response
const (
	CommandInitialize = 0x84 // unsolicited initialize after reset
)

// AdvertisementLen is the payload length of the product advertisement on the command channel
const AdvertisementLen = 272

var reportNames = map[uint8]string{
	ReportGetFeatureRequest:  "GET_FEATURE_REQUEST",
	ReportSetFeatureCommand:  "SET_FEATURE_COMMAND",
	ReportGetFeatureResponse: "GET_FEATURE_RESPONSE",
	ReportBaseTimestamp:      "BASE_TIMESTAMP",
	ReportTimestampRebase:    "TIMESTAMP_REBASE",
	ReportProductIDRequest:   "PRODUCT_ID_REQUEST",
	ReportProductIDResponse:  "PRODUCT_ID_RESPONSE",
	ReportFRSWriteRequest:    "FRS_WRITE_REQUEST",
	ReportFRSWriteData:       "FRS_WRITE_DATA",
	ReportFRSWriteResponse:   "FRS_WRITE_RESPONSE",
	ReportFRSReadRequest:     "FRS_READ_REQUEST",
	ReportFRSReadResponse:    "FRS_READ_RESPONSE",
	ReportCommandRequest:     "COMMAND_REQUEST",
	ReportCommandResponse:    "COMMAND_RESPONSE",

	ReportAccelerometer:      "ACCELEROMETER",
	ReportGyroscope:          "GYROSCOPE",
	ReportMagneticField:      "MAGNETIC_FIELD",
	ReportLinearAcceleration: "LINEAR_ACCELERATION",
	ReportRotationVector:     "ROTATION_VECTOR",
}

// ReportName returns a printable name for a report ID
func ReportName(id uint8) string {
	if name, ok := reportNames[id]; ok {
		return name
	}
	return fmt.Sprintf("REPORT(0x%02X)", id)
}
