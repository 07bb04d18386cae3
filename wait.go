package pcanbus

import (
	"fmt"
	"time"

	"github.com/roffe/pcanbus/pkg/pcan"
)

// Forever makes Recv block until a frame arrives.
const Forever time.Duration = -1

const pollInterval = time.Millisecond

// waitStrategy paces a receive attempt. begin starts the attempt, the
// returned func is called each time the queue is empty and reports whether
// another read should be made.
type waitStrategy interface {
	begin(timeout time.Duration) func() bool
	close() error
}

type pollWait struct{}

func (pollWait) begin(timeout time.Duration) func() bool {
	if timeout < 0 {
		return func() bool {
			time.Sleep(pollInterval)
			return true
		}
	}
	deadline := time.Now().Add(timeout)
	return func() bool {
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
		return true
	}
}

func (pollWait) close() error { return nil }

// eventWait sleeps on the receive event the driver signals when a frame is
// queued. A failed or timed out wait ends the attempt.
type eventWait struct {
	ev *pcan.Event
}

func newEventWait(dev pcan.Device, ch pcan.Handle) (*eventWait, error) {
	ev, err := pcan.NewEvent()
	if err != nil {
		return nil, err
	}
	if st := dev.SetValue(ch, pcan.ParamReceiveEvent, ev.Value()); st != pcan.StatusOK {
		ev.Close()
		return nil, &DeviceError{Op: "failed to set receive event", Status: st, Text: FormatError(dev, st)}
	}
	return &eventWait{ev: ev}, nil
}

func (w *eventWait) begin(timeout time.Duration) func() bool {
	if timeout < 0 {
		return func() bool {
			return w.ev.Wait(Forever) == nil
		}
	}
	deadline := time.Now().Add(timeout)
	return func() bool {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		return w.ev.Wait(remaining) == nil
	}
}

func (w *eventWait) close() error {
	if err := w.ev.Close(); err != nil {
		return fmt.Errorf("failed to close receive event: %w", err)
	}
	return nil
}
