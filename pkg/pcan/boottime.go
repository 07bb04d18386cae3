package pcan

import (
	"sync"
	"time"
)

// BootTime is the wall clock time the driver timestamps count from. It is
// resolved once and falls back to the Unix epoch when uptime is unknown.
var BootTime = sync.OnceValue(func() time.Time {
	up, ok := uptime()
	if !ok {
		return time.Unix(0, 0)
	}
	return time.Now().Add(-up)
})

// Micros is the current driver clock in microseconds.
func Micros() uint64 {
	return uint64(time.Since(BootTime()) / time.Microsecond)
}
