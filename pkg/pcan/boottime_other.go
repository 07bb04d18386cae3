//go:build !windows && !linux

package pcan

import "time"

func uptime() (time.Duration, bool) {
	return 0, false
}
