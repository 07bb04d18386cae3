package pcanbus

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Frame is a classic CAN or CAN FD frame. The data length is len(Data).
type Frame struct {
	ID        uint32
	Extended  bool // 29-bit identifier
	Remote    bool // remote transmission request
	Error     bool // error frame
	FD        bool
	BRS       bool // bitrate switch, FD only
	ESI       bool // error state indicator, FD only
	Data      []byte
	Timestamp time.Time // set on received frames
}

// NewFrame creates a standard frame and copies the data slice.
func NewFrame(identifier uint32, data []byte) *Frame {
	d := make([]byte, len(data))
	copy(d, data)
	return &Frame{
		ID:   identifier,
		Data: d,
	}
}

// NewExtendedFrame creates a frame with a 29-bit identifier and copies the data slice.
func NewExtendedFrame(identifier uint32, data []byte) *Frame {
	frame := NewFrame(identifier, data)
	frame.Extended = true
	return frame
}

// Length returns the number of data bytes.
func (f *Frame) Length() int {
	return len(f.Data)
}

var (
	blue  = color.New(color.FgHiBlue).SprintfFunc()
	red   = color.New(color.FgRed).SprintfFunc()
	green = color.New(color.FgGreen).SprintfFunc()
)

func (f *Frame) id() string {
	if f.Extended {
		return fmt.Sprintf("0x%08X", f.ID)
	}
	return fmt.Sprintf("0x%03X", f.ID)
}

func (f *Frame) flags() string {
	var out strings.Builder
	for _, fl := range []struct {
		set  bool
		name string
	}{
		{f.Extended, "X"},
		{f.Remote, "R"},
		{f.Error, "E"},
		{f.FD, "F"},
		{f.BRS, "B"},
		{f.ESI, "S"},
	} {
		if fl.set {
			out.WriteString(fl.name)
		} else {
			out.WriteByte('-')
		}
	}
	return out.String()
}

func (f *Frame) hex() string {
	var hexView strings.Builder
	for i, b := range f.Data {
		hexView.WriteString(fmt.Sprintf("%02X", b))
		if i != len(f.Data)-1 {
			hexView.WriteString(" ")
		}
	}
	return hexView.String()
}

func (f *Frame) stamp() string {
	if f.Timestamp.IsZero() {
		return "-"
	}
	return f.Timestamp.Format("15:04:05.000000")
}

func (f *Frame) String() string {
	var out strings.Builder
	out.WriteString(f.stamp() + " || ")
	out.WriteString(fmt.Sprintf("%-10s", f.id()) + " || ")
	out.WriteString(f.flags() + " || ")
	out.WriteString(fmt.Sprintf("%2s", strconv.Itoa(len(f.Data))) + " || ")
	out.WriteString(fmt.Sprintf("%-23s", f.hex()))
	out.WriteString(" || ")
	out.WriteString(onlyPrintable(f.Data))
	return out.String()
}

func (f *Frame) ColorString() string {
	var out strings.Builder
	out.WriteString(f.stamp() + " || ")
	out.WriteString(green("%-10s", f.id()) + " || ")
	out.WriteString(f.flags() + " || ")
	out.WriteString(fmt.Sprintf("%2s", strconv.Itoa(len(f.Data))) + " || ")
	if f.Error {
		out.WriteString(red("%-23s", f.hex()))
	} else {
		out.WriteString(fmt.Sprintf("%-23s", f.hex()))
	}
	out.WriteString(" || ")
	out.WriteString(blue("%s", onlyPrintable(f.Data)))
	return out.String()
}

func onlyPrintable(data []byte) string {
	var out strings.Builder
	for _, b := range data {
		if b < 32 || b > 126 {
			out.WriteString("·")
		} else {
			out.WriteByte(b)
		}
	}
	return out.String()
}
