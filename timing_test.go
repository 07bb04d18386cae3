package pcanbus

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/roffe/pcanbus/pkg/pcan"
)

type eventLog []Event

func (l *eventLog) add(t EventType, details string) {
	*l = append(*l, Event{Type: t, Details: details})
}

func (l eventLog) count(t EventType) int {
	var n int
	for _, e := range l {
		if e.Type == t {
			n++
		}
	}
	return n
}

func TestBuildInitBitrate(t *testing.T) {
	tests := []struct {
		bitrate  int
		want     pcan.Baudrate
		warnings int
	}{
		{1_000_000, pcan.Baud1M, 0},
		{500_000, pcan.Baud500K, 0},
		{250_000, pcan.Baud250K, 0},
		{83_000, pcan.Baud83K, 0},
		{5_000, pcan.Baud5K, 0},
		{1, pcan.Baud500K, 1},
		{615_384, pcan.Baud500K, 1},
	}
	for _, tt := range tests {
		var events eventLog
		args, err := buildInit(&Config{Bitrate: tt.bitrate}, events.add)
		if err != nil {
			t.Fatalf("%d: buildInit() error = %v", tt.bitrate, err)
		}
		if args.fd || args.baudrate != tt.want {
			t.Errorf("%d: baudrate = 0x%04X, want 0x%04X", tt.bitrate, args.baudrate, tt.want)
		}
		if got := events.count(EventTypeWarning); got != tt.warnings {
			t.Errorf("%d: %d warnings, want %d", tt.bitrate, got, tt.warnings)
		}
		if args.hwType != pcan.TypeISA || args.ioPort != 0x02A0 || args.interrupt != 11 {
			t.Errorf("%d: non plug-and-play args = %+v", tt.bitrate, args)
		}
	}
}

func TestBuildInitFallbackMessage(t *testing.T) {
	var events eventLog
	if _, err := buildInit(&Config{Bitrate: 1}, events.add); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Details != "Unknown bitrate. Falling back to 500 kbit/s." {
		t.Errorf("events = %v", events)
	}
}

func TestBuildInitStrictBitrate(t *testing.T) {
	var events eventLog
	_, err := buildInit(&Config{Bitrate: 1, StrictBitrate: true}, events.add)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	if len(events) != 0 {
		t.Errorf("unexpected events %v", events)
	}
}

func TestBitTimingRegisters(t *testing.T) {
	tests := []struct {
		name   string
		timing BitTiming
		want   pcan.Baudrate
	}{
		// the table values are the SJA1000 register pairs for these timings
		{"500k", BitTiming{BRP: 1, TSeg1: 13, TSeg2: 2, SJW: 1}, pcan.Baud500K},
		{"1M", BitTiming{BRP: 1, TSeg1: 5, TSeg2: 2, SJW: 1}, pcan.Baud1M},
		{"250k", BitTiming{BRP: 2, TSeg1: 13, TSeg2: 2, SJW: 1}, pcan.Baud250K},
		{"100k", BitTiming{FClock: 8_000_000, BRP: 4, TSeg1: 16, TSeg2: 3, SJW: 2}, pcan.Baud100K},
		{"3 samples", BitTiming{BRP: 1, TSeg1: 13, TSeg2: 2, SJW: 1, NofSamples: 3}, pcan.Baudrate(0x009C)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := buildInit(&Config{Timing: &tt.timing}, func(EventType, string) {})
			if err != nil {
				t.Fatalf("buildInit() error = %v", err)
			}
			if args.baudrate != tt.want {
				t.Errorf("baudrate = 0x%04X, want 0x%04X", args.baudrate, tt.want)
			}
		})
	}
}

func TestBitTimingInvalid(t *testing.T) {
	tests := []struct {
		name   string
		timing BitTiming
	}{
		{"zero brp", BitTiming{TSeg1: 13, TSeg2: 2, SJW: 1}},
		{"tseg1", BitTiming{BRP: 1, TSeg1: 17, TSeg2: 2, SJW: 1}},
		{"tseg2", BitTiming{BRP: 1, TSeg1: 13, TSeg2: 9, SJW: 1}},
		{"sjw", BitTiming{BRP: 1, TSeg1: 13, TSeg2: 2, SJW: 5}},
		{"clock", BitTiming{FClock: 80_000_000, BRP: 1, TSeg1: 13, TSeg2: 2, SJW: 1}},
		{"samples", BitTiming{BRP: 1, TSeg1: 13, TSeg2: 2, SJW: 1, NofSamples: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildInit(&Config{Timing: &tt.timing}, func(EventType, string) {})
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Errorf("error = %v, want ConfigError", err)
			}
		})
	}
}

func TestBitTimingHelpers(t *testing.T) {
	bt := BitTiming{FClock: 8_000_000, BRP: 1, TSeg1: 13, TSeg2: 2, SJW: 1}
	if got := bt.Bitrate(); got != 500_000 {
		t.Errorf("Bitrate() = %d, want 500000", got)
	}
	if got := bt.SamplePoint(); math.Abs(got-87.5) > 1e-9 {
		t.Errorf("SamplePoint() = %f, want 87.5", got)
	}
	if got := (&BitTiming{BRP: 1, TSeg1: 1, TSeg2: 1}).Bitrate(); got != 0 {
		t.Errorf("Bitrate() without clock = %d, want 0", got)
	}
}

func TestBuildInitFD(t *testing.T) {
	cfg := &Config{
		FD:         true,
		Timing:     &BitTiming{FClock: 80_000_000, BRP: 2, TSeg1: 63, TSeg2: 16, SJW: 16},
		DataTiming: &BitTiming{FClock: 80_000_000, BRP: 2, TSeg1: 15, TSeg2: 4, SJW: 4},
	}
	var events eventLog
	args, err := buildInit(cfg, events.add)
	if err != nil {
		t.Fatalf("buildInit() error = %v", err)
	}
	want := "f_clock=80000000,nom_brp=2,nom_tseg1=63,nom_tseg2=16,nom_sjw=16,data_brp=2,data_tseg1=15,data_tseg2=4,data_sjw=4"
	if !args.fd || args.bitrateFD != want {
		t.Errorf("bitrateFD = %q, want %q", args.bitrateFD, want)
	}
	if events.count(EventTypeWarning) != 0 {
		t.Errorf("unexpected warnings %v", events)
	}
}

func TestBuildInitFDParams(t *testing.T) {
	cfg := &Config{
		FD: true,
		FDParams: map[string]uint32{
			"f_clock_mhz": 80,
			"nom_brp":     2,
			"nom_tseg1":   63,
			"nom_tseg2":   16,
			"nom_sjw":     16,
			"data_brp":    2,
			"data_tseg1":  15,
			"data_tseg2":  4,
			"data_sjw":    4,
		},
	}
	var events eventLog
	args, err := buildInit(cfg, events.add)
	if err != nil {
		t.Fatalf("buildInit() error = %v", err)
	}
	if !strings.HasPrefix(args.bitrateFD, "f_clock_mhz=80,nom_brp=2,") {
		t.Errorf("bitrateFD = %q", args.bitrateFD)
	}
	if events.count(EventTypeWarning) != 1 {
		t.Errorf("want one deprecation warning, got %v", events)
	}

	delete(cfg.FDParams, "data_sjw")
	if _, err := buildInit(cfg, events.add); err == nil || !strings.Contains(err.Error(), "data_sjw") {
		t.Errorf("missing data_sjw: error = %v", err)
	}
}

func TestBuildInitFDMissingTiming(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"nothing", Config{FD: true}},
		{"nominal only", Config{FD: true, Timing: &BitTiming{FClock: 80_000_000, BRP: 1, TSeg1: 1, TSeg2: 1, SJW: 1}}},
		{"bitrate only", Config{FD: true, Bitrate: 500_000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildInit(&tt.cfg, func(EventType, string) {})
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("error = %v, want ConfigError", err)
			}
			if cerr.Msg != "timing and data_timing arguments missing" {
				t.Errorf("message = %q", cerr.Msg)
			}
		})
	}
}

func TestBuildInitFDInvalid(t *testing.T) {
	tests := []struct {
		name      string
		nom, data BitTiming
	}{
		{"no clock", BitTiming{BRP: 2, TSeg1: 63, TSeg2: 16, SJW: 16}, BitTiming{BRP: 2, TSeg1: 15, TSeg2: 4, SJW: 4}},
		{"clock mismatch", BitTiming{FClock: 80_000_000, BRP: 2, TSeg1: 63, TSeg2: 16, SJW: 16}, BitTiming{FClock: 40_000_000, BRP: 2, TSeg1: 15, TSeg2: 4, SJW: 4}},
		{"data tseg1", BitTiming{FClock: 80_000_000, BRP: 2, TSeg1: 63, TSeg2: 16, SJW: 16}, BitTiming{BRP: 2, TSeg1: 33, TSeg2: 4, SJW: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildInit(&Config{FD: true, Timing: &tt.nom, DataTiming: &tt.data}, func(EventType, string) {})
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Errorf("error = %v, want ConfigError", err)
			}
		})
	}
}
