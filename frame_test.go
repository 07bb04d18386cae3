package pcanbus

import (
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func TestNewFrameCopiesData(t *testing.T) {
	data := []byte{1, 2, 3}
	f := NewFrame(0x123, data)
	data[0] = 0xFF
	if f.Data[0] != 1 {
		t.Error("NewFrame kept a reference to the caller's slice")
	}
	if f.Length() != 3 || f.Extended {
		t.Errorf("frame = %+v", f)
	}
	if ext := NewExtendedFrame(0x18DAF110, nil); !ext.Extended || ext.Length() != 0 {
		t.Errorf("extended frame = %+v", ext)
	}
}

func TestFrameString(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
		want  []string
	}{
		{
			name:  "standard",
			frame: NewFrame(0x7E8, []byte{0x41, 0x00, 0x42}),
			want:  []string{"- || 0x7E8", "------", " 3 || 41 00 42", "A·B"},
		},
		{
			name:  "extended fd",
			frame: &Frame{ID: 0x18DAF110, Extended: true, FD: true, BRS: true, Data: []byte{1}},
			want:  []string{"0x18DAF110", "X--FB-"},
		},
		{
			name:  "timestamp",
			frame: &Frame{ID: 1, Timestamp: time.Date(2024, 1, 2, 13, 4, 5, 6000, time.UTC)},
			want:  []string{"13:04:05.000006 || "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.frame.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("String() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestFrameColorString(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()
	f := NewFrame(0x100, []byte{0xDE, 0xAD})
	if got, want := f.ColorString(), f.String(); got != want {
		t.Errorf("ColorString() without colour = %q, want %q", got, want)
	}
}
