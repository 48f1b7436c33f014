package bno080

import (
	"errors"

	"github.com/sergev/bno080/report"
)

// Errors returned by the driver. Timeout, UnknownReport, NotEnabled and a
// short report are recoverable; a ProtocolViolation ends the session until Initialize is
// called again. Transport errors are returned wrapped but unchanged.
var (
	ErrTimeout              = errors.New("bno080: timeout")
	ErrProtocolViolation    = errors.New("bno080: protocol violation")
	ErrIdentificationFailed = errors.New("bno080: identification failed")
	ErrNotEnabled           = errors.New("bno080: report not enabled")
	ErrUnknownReport        = report.ErrUnknownReport
)

// errRestart unwinds an initialization step when the hub resets under it
var errRestart = errors.New("bno080: hub reset during initialization")

// errSatisfied ends a wait whose condition was met by a dispatched packet
var errSatisfied = errors.New("bno080: wait satisfied")
