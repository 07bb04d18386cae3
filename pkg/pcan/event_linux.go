//go:build linux

package pcan

import (
	"encoding/binary"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Event is a non-blocking eventfd. Wait drains the counter, which gives the
// same auto-reset behaviour as a Win32 event.
type Event struct {
	fd int
}

func NewEvent() (*Event, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("eventfd failed: %w", err)
	}
	return &Event{fd: fd}, nil
}

func (e *Event) Value() uint32 {
	return uint32(e.fd)
}

// Wait blocks until the event is signalled or timeout elapses, a negative
// timeout waits forever. It returns syscall.ETIMEDOUT on timeout.
func (e *Event) Wait(timeout time.Duration) error {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	fds := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN}}
	for {
		ms := -1
		if timeout >= 0 {
			ms = int(waitMillis(max(time.Until(deadline), 0)))
		}
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return syscall.ETIMEDOUT
		}
		var buf [8]byte
		if _, err := unix.Read(e.fd, buf[:]); err != nil && err != unix.EAGAIN {
			return err
		}
		return nil
	}
}

func (e *Event) Close() error {
	if e == nil || e.fd <= 0 {
		return nil
	}
	err := unix.Close(e.fd)
	e.fd = -1
	return err
}

// SignalEvent increments the eventfd registered under value.
func SignalEvent(value uint32) error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(int(value), buf[:])
	return err
}
