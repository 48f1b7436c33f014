package bno080

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sergev/bno080/shtp"
)

func TestLogTracer(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	tracer := LogTracer{Logger: logger}

	tracer.FrameReceived(shtp.Packet{
		Header: shtp.Header{Channel: shtp.ChannelInputReports, Sequence: 9, DataLength: 6},
		Data:   []byte{shtp.ReportBaseTimestamp, 0, 0, 0, 0, shtp.ReportGyroscope},
	})
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("FrameReceived() logged nothing")
	}
	if entry.Data["report"] != "GYROSCOPE" || entry.Data["channel"] != "INPUT_SENSOR_REPORTS" {
		t.Errorf("FrameReceived() fields = %v", entry.Data)
	}

	tracer.StateChanged(StateFeatureSetup, StateReady)
	if entry := hook.LastEntry(); entry.Data["to"] != "ready" {
		t.Errorf("StateChanged() fields = %v", entry.Data)
	}

	tracer.HandshakeComplete(shtp.ReportRotationVector)
	if entry := hook.LastEntry(); entry.Data["report"] != "ROTATION_VECTOR" {
		t.Errorf("HandshakeComplete() fields = %v", entry.Data)
	}

	// Frames are not logged below debug level
	hook.Reset()
	logger.SetLevel(log.InfoLevel)
	tracer.FrameReceived(shtp.Packet{Header: shtp.Header{Channel: shtp.ChannelControl}})
	if len(hook.Entries) != 0 {
		t.Errorf("FrameReceived() logged %d entries at info level", len(hook.Entries))
	}
}
