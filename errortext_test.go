package pcanbus

import (
	"slices"
	"strings"
	"testing"

	"github.com/roffe/pcanbus/pkg/pcan"
)

func TestBits(t *testing.T) {
	tests := []struct {
		in   pcan.Status
		want []pcan.Status
	}{
		{0, nil},
		{0x1, []pcan.Status{0x1}},
		{0x28, []pcan.Status{0x8, 0x20}},
		{0x80000001, []pcan.Status{0x1, 0x80000000}},
	}
	for _, tt := range tests {
		if got := slices.Collect(bits(tt.in)); !slices.Equal(got, tt.want) {
			t.Errorf("bits(0x%X) = %v, want %v", uint32(tt.in), got, tt.want)
		}
	}
}

func TestFormatError(t *testing.T) {
	dev := pcan.NewLoopback()
	tests := []struct {
		name string
		code pcan.Status
		want string
	}{
		{
			name: "single",
			code: pcan.StatusBusOff,
			want: "Bus error: the CAN controller is in bus-off state",
		},
		{
			name: "composite",
			code: pcan.StatusBusLight | pcan.StatusQRcvEmpty,
			want: "Bus error: an error counter reached the 'light' limit\nReceive queue is empty",
		},
		{
			name: "unknown bit",
			code: 0x40000000,
			want: "An error occurred. Error-code's text (40000000h) couldn't be retrieved",
		},
		{
			name: "known and unknown",
			code: pcan.StatusXmtFull | 0x80000000,
			want: "The transmit buffer in CAN controller is full\nAn error occurred. Error-code's text (80000000h) couldn't be retrieved",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatError(dev, tt.code); got != tt.want {
				t.Errorf("FormatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatErrorOrder(t *testing.T) {
	got := strings.Split(FormatError(pcan.NewLoopback(), pcan.StatusBusHeavy|pcan.StatusBusLight), "\n")
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if !strings.Contains(got[0], "'light'") || !strings.Contains(got[1], "'heavy'") {
		t.Errorf("lines out of order: %q", got)
	}
}

func TestFormatErrorNilDevice(t *testing.T) {
	want := "An error occurred. Error-code's text (4h) couldn't be retrieved"
	if got := FormatError(nil, pcan.StatusBusLight); got != want {
		t.Errorf("FormatError(nil) = %q, want %q", got, want)
	}
}
