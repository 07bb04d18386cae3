//go:build linux

package pcanbus

import (
	"fmt"

	"github.com/brutella/can"
)

// SocketCAN encodes flags in the top bits of the identifier.
const (
	socketCANEff = 0x80000000
	socketCANRtr = 0x40000000
	socketCANErr = 0x20000000
)

// ToSocketCAN converts a classic frame for use with a SocketCAN interface.
func ToSocketCAN(f *Frame) (can.Frame, error) {
	if f.FD {
		return can.Frame{}, fmt.Errorf("%w: FD frames are not supported on SocketCAN", ErrFrameTooLong)
	}
	if err := validateID(f); err != nil {
		return can.Frame{}, err
	}
	if len(f.Data) > maxClassicLen {
		return can.Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLong, len(f.Data))
	}
	out := can.Frame{
		ID:     f.ID,
		Length: uint8(len(f.Data)),
	}
	if f.Extended {
		out.ID |= socketCANEff
	}
	if f.Remote {
		out.ID |= socketCANRtr
	}
	if f.Error {
		out.ID |= socketCANErr
	}
	copy(out.Data[:], f.Data)
	return out, nil
}

// FromSocketCAN converts a frame read from a SocketCAN interface.
func FromSocketCAN(cf can.Frame) *Frame {
	n := min(int(cf.Length), maxClassicLen)
	f := NewFrame(cf.ID&maxExtendedID, cf.Data[:n])
	f.Extended = cf.ID&socketCANEff != 0
	f.Remote = cf.ID&socketCANRtr != 0
	f.Error = cf.ID&socketCANErr != 0
	if !f.Extended {
		f.ID &= maxStandardID
	}
	return f
}
