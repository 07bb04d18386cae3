//go:build !windows

package pcan

import "errors"

// ErrNoDriver is returned by Load on platforms without a PCAN-Basic binding.
var ErrNoDriver = errors.New("PCAN-Basic driver binding is only available on windows")

func Load() (Device, error) {
	return nil, ErrNoDriver
}
