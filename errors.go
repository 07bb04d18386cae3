package pcanbus

import (
	"errors"

	"github.com/roffe/pcanbus/pkg/pcan"
)

// ConfigError reports configuration the bus cannot be opened or changed with.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func newConfigError(msg string) error {
	return &ConfigError{Msg: msg}
}

// DeviceError is a non-success status reported by the driver. Text holds the
// decoded diagnostic, one line per cause.
type DeviceError struct {
	Op     string
	Status pcan.Status
	Text   string
}

func (e *DeviceError) Error() string {
	if e.Op == "" {
		return e.Text
	}
	return e.Op + ": " + e.Text
}

func (e *DeviceError) Unwrap() error {
	return e.Status
}

var (
	ErrNilDevice    = errors.New("device is nil")
	ErrClosed       = errors.New("bus is shut down")
	ErrFrameTooLong = errors.New("frame data too long")
	ErrInvalidID    = errors.New("invalid arbitration id")
)
