package pcanbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/roffe/pcanbus/pkg/pcan"
)

// Bus is one initialized PCAN channel. A Bus is not safe for concurrent use.
type Bus struct {
	dev     pcan.Device
	cfg     Config
	channel string
	handle  pcan.Handle
	fd      bool
	state   BusState
	waiter  waitStrategy
	stats   Stats
	closed  bool
}

// Open initializes the channel named in cfg on dev. A nil cfg opens the
// default channel at 500 kbit/s.
func Open(dev pcan.Device, cfg *Config) (*Bus, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	c := cfg.withDefaults()
	if c.State != StateActive && c.State != StatePassive {
		return nil, newConfigError("BusState must be Active or Passive")
	}
	handle, err := pcan.LookupChannel(c.Channel)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	b := &Bus{
		dev:     dev,
		cfg:     c,
		channel: c.Channel,
		handle:  handle,
		fd:      c.FD,
		state:   c.State,
	}

	args, err := buildInit(&b.cfg, b.sendEvent)
	if err != nil {
		return nil, err
	}

	// listen-only only takes effect when set before the channel is initialized
	if st := dev.SetValue(handle, pcan.ParamListenOnly, listenOnly(b.state)); st != pcan.StatusOK {
		b.debug("failed to preset listen-only: " + FormatError(dev, st))
	}

	var st pcan.Status
	if args.fd {
		st = dev.InitializeFD(handle, args.bitrateFD)
	} else {
		st = dev.Initialize(handle, args.baudrate, args.hwType, args.ioPort, args.interrupt)
	}
	if st != pcan.StatusOK {
		return nil, &DeviceError{Status: st, Text: FormatError(dev, st)}
	}

	b.waiter = pollWait{}
	if !b.fd && !c.Polling && pcan.EventsSupported() {
		w, err := newEventWait(dev, handle)
		if err != nil {
			dev.Uninitialize(handle)
			return nil, err
		}
		b.waiter = w
	}

	if d, ok := dev.(pcan.Describer); ok {
		if name, err := d.HardwareName(handle); err == nil {
			b.sendEvent(EventTypeInfo, fmt.Sprintf("Name: %s (%s)", name, c.Channel))
		}
	}
	return b, nil
}

func listenOnly(s BusState) uint32 {
	if s == StatePassive {
		return pcan.ParameterOn
	}
	return pcan.ParameterOff
}

func (b *Bus) Channel() string {
	return b.channel
}

// FD reports whether the channel was opened in CAN FD mode.
func (b *Bus) FD() bool {
	return b.fd
}

func (b *Bus) Stats() Stats {
	return b.stats
}

func (b *Bus) read() (pcan.Status, *Frame) {
	if b.fd {
		st, msg, ts := b.dev.ReadFD(b.handle)
		if st != pcan.StatusOK {
			return st, nil
		}
		return st, decodeFrameFD(&msg, ts)
	}
	st, msg, ts := b.dev.Read(b.handle)
	if st != pcan.StatusOK {
		return st, nil
	}
	return st, decodeFrame(&msg, ts)
}

// Recv returns the next frame, waiting up to timeout for one to arrive.
// A negative timeout such as Forever waits indefinitely. A nil frame with a
// nil error means nothing was received in time, or that the controller
// reported a bus-light or bus-heavy condition, which is sent as a warning
// event instead of an error.
func (b *Bus) Recv(timeout time.Duration) (*Frame, error) {
	if b.closed {
		return nil, ErrClosed
	}
	more := b.waiter.begin(timeout)
	for {
		st, frame := b.read()
		switch {
		case st == pcan.StatusOK:
			b.stats.Received++
			return frame, nil
		case st == pcan.StatusQRcvEmpty:
			if !more() {
				return nil, nil
			}
		case st&(pcan.StatusBusLight|pcan.StatusBusHeavy) != 0:
			b.stats.BusWarnings++
			b.warn(FormatError(b.dev, st))
			return nil, nil
		default:
			b.stats.Errors++
			return nil, &DeviceError{Status: st, Text: FormatError(b.dev, st)}
		}
	}
}

// Send writes one frame. On an FD bus the payload is zero padded up to the
// next valid CAN FD length.
func (b *Bus) Send(f *Frame) error {
	if b.closed {
		return ErrClosed
	}
	if f == nil {
		return errors.New("frame is nil")
	}
	var st pcan.Status
	if b.fd {
		msg, err := encodeFrameFD(f)
		if err != nil {
			return err
		}
		st = b.dev.WriteFD(b.handle, msg)
	} else {
		msg, err := encodeFrame(f)
		if err != nil {
			return err
		}
		st = b.dev.Write(b.handle, msg)
	}
	if st != pcan.StatusOK {
		b.stats.Errors++
		return &DeviceError{Op: "failed to send", Status: st, Text: FormatError(b.dev, st)}
	}
	b.stats.Sent++
	return nil
}

// Status returns the raw controller status. Decode it with FormatError.
func (b *Bus) Status() pcan.Status {
	if b.closed {
		return pcan.StatusInitialize
	}
	return b.dev.GetStatus(b.handle)
}

// StatusText decodes the current controller status, one line per condition.
func (b *Bus) StatusText() string {
	return FormatError(b.dev, b.Status())
}

func (b *Bus) StatusIsOK() bool {
	return b.Status() == pcan.StatusOK
}

// Reset clears the channel queues after a bus error. It reports whether the
// driver accepted the reset.
func (b *Bus) Reset() bool {
	if b.closed {
		return false
	}
	return b.dev.Reset(b.handle) == pcan.StatusOK
}

// Flash toggles the channel LED so the adapter can be found physically.
func (b *Bus) Flash(on bool) {
	if b.closed {
		return
	}
	v := pcan.ParameterOff
	if on {
		v = pcan.ParameterOn
	}
	if st := b.dev.SetValue(b.handle, pcan.ParamChannelIdentifying, v); st != pcan.StatusOK {
		b.debug("flash: " + FormatError(b.dev, st))
	}
}

func (b *Bus) State() BusState {
	return b.state
}

// SetState switches between active and passive (listen-only) operation. The
// logical state follows the request even when the driver rejects the
// listen-only parameter, the driver error is returned.
func (b *Bus) SetState(s BusState) error {
	if b.closed {
		return ErrClosed
	}
	if s != StateActive && s != StatePassive {
		return newConfigError("BusState must be Active or Passive")
	}
	b.state = s
	if st := b.dev.SetValue(b.handle, pcan.ParamListenOnly, listenOnly(s)); st != pcan.StatusOK {
		return &DeviceError{Op: "failed to set listen-only", Status: st, Text: FormatError(b.dev, st)}
	}
	return nil
}

// Shutdown releases the channel. Calling it again is a no-op, every other
// method returns ErrClosed afterwards.
func (b *Bus) Shutdown() error {
	if b.closed {
		return nil
	}
	b.closed = true
	var errs []error
	if st := b.dev.Uninitialize(b.handle); st != pcan.StatusOK {
		errs = append(errs, &DeviceError{Op: "failed to uninitialize", Status: st, Text: FormatError(b.dev, st)})
	}
	if err := b.waiter.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
