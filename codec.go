package pcanbus

import (
	"fmt"
	"time"

	"github.com/roffe/pcanbus/pkg/pcan"
)

const (
	maxStandardID = 0x7FF
	maxExtendedID = 0x1FFFFFFF
	maxClassicLen = 8
	maxFDLen      = 64
)

func messageType(f *Frame) pcan.MessageType {
	t := pcan.MessageStandard
	if f.Extended {
		t = pcan.MessageExtended
	}
	if f.Remote {
		t |= pcan.MessageRTR
	}
	if f.Error {
		t |= pcan.MessageErrFrame
	}
	if f.FD {
		t |= pcan.MessageFD
	}
	if f.BRS {
		t |= pcan.MessageBRS
	}
	if f.ESI {
		t |= pcan.MessageESI
	}
	return t
}

func validateID(f *Frame) error {
	limit := uint32(maxStandardID)
	if f.Extended {
		limit = maxExtendedID
	}
	if f.ID > limit {
		return fmt.Errorf("%w: 0x%X", ErrInvalidID, f.ID)
	}
	return nil
}

func encodeFrame(f *Frame) (*pcan.Msg, error) {
	if err := validateID(f); err != nil {
		return nil, err
	}
	if len(f.Data) > maxClassicLen {
		return nil, fmt.Errorf("%w: %d bytes, classic frames hold %d", ErrFrameTooLong, len(f.Data), maxClassicLen)
	}
	msg := &pcan.Msg{
		ID:      f.ID,
		MsgType: messageType(f),
		Len:     uint8(len(f.Data)),
	}
	if !f.Remote {
		copy(msg.Data[:], f.Data)
	}
	return msg, nil
}

// encodeFrameFD pads payloads that fall between two data length codes with
// zeros up to the next code.
func encodeFrameFD(f *Frame) (*pcan.MsgFD, error) {
	if err := validateID(f); err != nil {
		return nil, err
	}
	if len(f.Data) > maxFDLen {
		return nil, fmt.Errorf("%w: %d bytes, FD frames hold %d", ErrFrameTooLong, len(f.Data), maxFDLen)
	}
	msg := &pcan.MsgFD{
		ID:      f.ID,
		MsgType: messageType(f),
		DLC:     pcan.LenToDLC(len(f.Data)),
	}
	copy(msg.Data[:], f.Data)
	return msg, nil
}

func frameFlags(f *Frame, t pcan.MessageType) {
	f.Extended = t&pcan.MessageExtended != 0
	f.Remote = t&pcan.MessageRTR != 0
	f.Error = t&pcan.MessageErrFrame != 0
	f.FD = t&pcan.MessageFD != 0
	f.BRS = t&pcan.MessageBRS != 0
	f.ESI = t&pcan.MessageESI != 0
}

func deviceTime(us uint64) time.Time {
	return pcan.BootTime().Add(time.Duration(us) * time.Microsecond)
}

func decodeFrame(msg *pcan.Msg, ts pcan.Timestamp) *Frame {
	n := min(int(msg.Len), maxClassicLen)
	f := &Frame{
		ID:        msg.ID,
		Data:      make([]byte, n),
		Timestamp: deviceTime(ts.Microseconds()),
	}
	copy(f.Data, msg.Data[:n])
	frameFlags(f, msg.MsgType)
	return f
}

func decodeFrameFD(msg *pcan.MsgFD, ts pcan.TimestampFD) *Frame {
	n := pcan.DLCToLen(msg.DLC)
	f := &Frame{
		ID:        msg.ID,
		Data:      make([]byte, n),
		Timestamp: deviceTime(uint64(ts)),
	}
	copy(f.Data, msg.Data[:n])
	frameFlags(f, msg.MsgType)
	return f
}
