//go:build !windows && !linux

package pcan

import (
	"errors"
	"runtime"
	"time"
)

var errNoEvents = errors.New("receive events are not supported on " + runtime.GOOS)

type Event struct{}

func NewEvent() (*Event, error) {
	return nil, errNoEvents
}

func (e *Event) Value() uint32                    { return 0 }
func (e *Event) Wait(timeout time.Duration) error { return errNoEvents }
func (e *Event) Close() error                     { return nil }

func SignalEvent(value uint32) error {
	return errNoEvents
}
