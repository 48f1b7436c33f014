package bno080

import (
	log "github.com/sirupsen/logrus"

	"github.com/sergev/bno080/shtp"
)

// Tracer observes the driver at fixed points. Calls are made on the
// goroutine driving the device and must not call back into it.
type Tracer interface {
	// FrameReceived is called for every packet read, before dispatch
	FrameReceived(p shtp.Packet)
	// StateChanged is called on each lifecycle transition
	StateChanged(from, to State)
	// HandshakeComplete is called when the hub acknowledges a set-feature request
	HandshakeComplete(reportID uint8)
}

type nopTracer struct{}

func (nopTracer) FrameReceived(shtp.Packet) {}
func (nopTracer) StateChanged(State, State) {}
func (nopTracer) HandshakeComplete(uint8) {}

// LogTracer writes trace events to a logrus logger.
// Frame dumps are emitted only at trace level.
type LogTracer struct {
	Logger *log.Logger // defaults to the standard logger
}

func (t LogTracer) logger() *log.Logger {
	if t.Logger == nil {
		return log.StandardLogger()
	}
	return t.Logger
}

// FrameReceived logs the packet's channel, sequence, length and report at debug level
func (t LogTracer) FrameReceived(p shtp.Packet) {
	l := t.logger()
	if !l.IsLevelEnabled(log.DebugLevel) {
		return
	}
	entry := l.WithFields(log.Fields{
		"channel": p.Header.Channel.String(),
		"seq":     p.Header.Sequence,
		"len":     p.Header.DataLength,
	})
	if id, ok := p.SensorReportID(); ok {
		entry = entry.WithField("report", shtp.ReportName(id))
	}
	entry.Debug("frame received")
	if l.IsLevelEnabled(log.TraceLevel) {
		l.Traceln(p)
	}
}

// StateChanged logs a lifecycle transition at debug level
func (t LogTracer) StateChanged(from, to State) {
	t.logger().WithFields(log.Fields{
		"from": from.String(),
		"to":   to.String(),
	}).Debug("state changed")
}

// HandshakeComplete logs an enabled report at debug level
func (t LogTracer) HandshakeComplete(reportID uint8) {
	t.logger().WithField("report", shtp.ReportName(reportID)).Debug("feature enabled")
}
