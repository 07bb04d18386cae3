package cmd

import (
	"bytes"
	"testing"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		in       string
		id       uint32
		extended bool
		remote   bool
		fd       bool
		brs      bool
		esi      bool
		data     []byte
		wantErr  bool
	}{
		{in: "123#DEADBEEF", id: 0x123, data: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
		{in: "7E8#", id: 0x7E8, data: []byte{}},
		{in: "18DAF110#01.02", id: 0x18DAF110, extended: true, data: []byte{1, 2}},
		{in: "7DF#R", id: 0x7DF, remote: true},
		{in: "100##1AABB", id: 0x100, fd: true, brs: true, data: []byte{0xAA, 0xBB}},
		{in: "100##3", id: 0x100, fd: true, brs: true, esi: true, data: []byte{}},
		{in: "123", wantErr: true},
		{in: "XYZ#00", wantErr: true},
		{in: "123#0", wantErr: true},
		{in: "123##", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := parseFrame(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if f.ID != tt.id || f.Extended != tt.extended || f.Remote != tt.remote ||
				f.FD != tt.fd || f.BRS != tt.brs || f.ESI != tt.esi {
				t.Errorf("parseFrame() = %+v", f)
			}
			if !bytes.Equal(f.Data, tt.data) {
				t.Errorf("data = % X, want % X", f.Data, tt.data)
			}
		})
	}
}
