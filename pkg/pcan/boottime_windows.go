//go:build windows

package pcan

import (
	"time"

	"golang.org/x/sys/windows"
)

func uptime() (time.Duration, bool) {
	return windows.DurationSinceBoot(), true
}
