package pcan

import (
	"sync"
	"time"
)

// EventsSupported reports whether this platform can create receive events.
// The probe runs once per process.
var EventsSupported = sync.OnceValue(func() bool {
	ev, err := NewEvent()
	if err != nil {
		return false
	}
	ev.Close()
	return true
})

// waitMillis converts a timeout to whole milliseconds, rounding up so a short
// timeout does not turn into a busy loop. Negative means wait forever (-1).
func waitMillis(timeout time.Duration) int64 {
	if timeout < 0 {
		return -1
	}
	return int64((timeout + time.Millisecond - 1) / time.Millisecond)
}
