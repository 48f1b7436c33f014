package shtp

import "fmt"

// Channel identifies one of the logical streams multiplexed over the transport
type Channel uint8

// SHTP channels
const (
	ChannelCommand            Channel = 0 // SHTP command channel (advertisement)
	ChannelExecutable         Channel = 1 // reset and sleep commands
	ChannelControl            Channel = 2 // sensor hub control
	ChannelInputReports       Channel = 3 // input sensor reports (non-wake)
	ChannelWakeInputReports   Channel = 4 // input sensor reports (wake)
	ChannelGyroRotationVector Channel = 5 // gyro-integrated rotation vector
)

// NumChannels is the number of valid channels; any larger value is an error signal
const NumChannels = 6

var channelNames = [NumChannels]string{
	"SHTP_COMMAND",
	"EXE",
	"CONTROL",
	"INPUT_SENSOR_REPORTS",
	"WAKE_INPUT_SENSOR_REPORTS",
	"GYRO_ROTATION_VECTOR",
}

// Valid reports whether c names one of the six channels
func (c Channel) Valid() bool {
	return c < NumChannels
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CHANNEL(%d)", uint8(c))
	}
	return channelNames[c]
}
