//go:build windows

package pcan

import (
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// Event is an auto-reset Win32 event handed to the driver through
// ParamReceiveEvent. The driver sets it whenever a frame is queued.
type Event struct {
	h windows.Handle
}

func NewEvent() (*Event, error) {
	h, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateEvent failed: %w", err)
	}
	return &Event{h: h}, nil
}

// Value is the handle as the DWORD the driver expects. Kernel handle values
// fit in 32 bits even on 64-bit windows.
func (e *Event) Value() uint32 {
	return uint32(uintptr(e.h) & 0xFFFFFFFF)
}

// Wait blocks until the event is signalled or timeout elapses, a negative
// timeout waits forever. It returns syscall.ETIMEDOUT on timeout.
func (e *Event) Wait(timeout time.Duration) error {
	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(waitMillis(timeout))
	}
	res, err := windows.WaitForSingleObject(e.h, ms)
	if err != nil {
		return err
	}
	switch res {
	case windows.WAIT_OBJECT_0:
		return nil
	case uint32(windows.WAIT_TIMEOUT):
		return syscall.ETIMEDOUT
	default:
		return fmt.Errorf("unexpected wait result 0x%X", res)
	}
}

func (e *Event) Close() error {
	if e == nil || e.h == 0 {
		return nil
	}
	err := windows.CloseHandle(e.h)
	e.h = 0
	return err
}

// SignalEvent sets the event registered under value.
func SignalEvent(value uint32) error {
	return windows.SetEvent(windows.Handle(value))
}
