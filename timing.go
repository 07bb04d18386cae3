package pcanbus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roffe/pcanbus/pkg/pcan"
)

// classicClock is the SJA1000 clock the BTR0/BTR1 registers are computed for.
const classicClock = 8_000_000

// BitTiming describes one bit: a sync segment, TSeg1 and TSeg2, all in time
// quanta of BRP clock periods.
type BitTiming struct {
	FClock     uint32 // controller clock in Hz
	BRP        uint32 // bitrate prescaler
	TSeg1      uint32
	TSeg2      uint32
	SJW        uint32 // synchronization jump width
	NofSamples uint32 // 1 or 3, classic mode only
}

// Bitrate returns the resulting bitrate in bit/s, or 0 without a clock.
func (t *BitTiming) Bitrate() uint32 {
	if t.FClock == 0 || t.BRP == 0 {
		return 0
	}
	return t.FClock / (t.BRP * t.quanta())
}

// SamplePoint returns the sample point in percent of the bit time.
func (t *BitTiming) SamplePoint() float64 {
	return 100 * float64(1+t.TSeg1) / float64(t.quanta())
}

func (t *BitTiming) quanta() uint32 {
	return 1 + t.TSeg1 + t.TSeg2
}

// BTR0 packs the jump width and prescaler.
func (t *BitTiming) BTR0() uint8 {
	return uint8((t.SJW-1)<<6 | (t.BRP - 1))
}

// BTR1 packs the sampling mode and both time segments.
func (t *BitTiming) BTR1() uint8 {
	var sam uint32
	if t.NofSamples == 3 {
		sam = 1
	}
	return uint8(sam<<7 | (t.TSeg2-1)<<4 | (t.TSeg1 - 1))
}

type timingLimits struct {
	brp, tseg1, tseg2, sjw uint32
}

var (
	classicLimits = timingLimits{brp: 64, tseg1: 16, tseg2: 8, sjw: 4}
	nominalLimits = timingLimits{brp: 1024, tseg1: 256, tseg2: 128, sjw: 128}
	dataLimits    = timingLimits{brp: 1024, tseg1: 32, tseg2: 16, sjw: 16}
)

func (t *BitTiming) validate(name string, lim timingLimits) error {
	for _, f := range []struct {
		field string
		v     uint32
		max   uint32
	}{
		{"brp", t.BRP, lim.brp},
		{"tseg1", t.TSeg1, lim.tseg1},
		{"tseg2", t.TSeg2, lim.tseg2},
		{"sjw", t.SJW, lim.sjw},
	} {
		if f.v < 1 || f.v > f.max {
			return newConfigError(fmt.Sprintf("%s %s %d out of range 1-%d", name, f.field, f.v, f.max))
		}
	}
	return nil
}

var bitrates = map[int]pcan.Baudrate{
	1_000_000: pcan.Baud1M,
	800_000:   pcan.Baud800K,
	500_000:   pcan.Baud500K,
	250_000:   pcan.Baud250K,
	125_000:   pcan.Baud125K,
	100_000:   pcan.Baud100K,
	95_000:    pcan.Baud95K,
	83_000:    pcan.Baud83K,
	50_000:    pcan.Baud50K,
	47_000:    pcan.Baud47K,
	33_000:    pcan.Baud33K,
	20_000:    pcan.Baud20K,
	10_000:    pcan.Baud10K,
	5_000:     pcan.Baud5K,
}

// initArgs are the native arguments for Initialize or InitializeFD.
type initArgs struct {
	fd        bool
	baudrate  pcan.Baudrate
	bitrateFD string
	hwType    pcan.HWType
	ioPort    uint32
	interrupt uint16
}

// Only non plug-and-play hardware reads these.
const (
	defaultHWType    = pcan.TypeISA
	defaultIOPort    = 0x02A0
	defaultInterrupt = 11
)

func buildInit(cfg *Config, notify func(EventType, string)) (initArgs, error) {
	if cfg.FD {
		s, err := fdBitrate(cfg, notify)
		if err != nil {
			return initArgs{}, err
		}
		notify(EventTypeDebug, "FD bit rate string: "+s)
		return initArgs{fd: true, bitrateFD: s}, nil
	}
	args := initArgs{
		hwType:    defaultHWType,
		ioPort:    defaultIOPort,
		interrupt: defaultInterrupt,
	}
	switch rate, ok := bitrates[cfg.Bitrate]; {
	case cfg.Timing != nil:
		t := cfg.Timing
		if t.FClock != 0 && t.FClock != classicClock {
			return initArgs{}, newConfigError(fmt.Sprintf("classic timing needs an %d Hz clock, got %d", classicClock, t.FClock))
		}
		if t.NofSamples != 0 && t.NofSamples != 1 && t.NofSamples != 3 {
			return initArgs{}, newConfigError(fmt.Sprintf("nof_samples must be 1 or 3, got %d", t.NofSamples))
		}
		if err := t.validate("timing", classicLimits); err != nil {
			return initArgs{}, err
		}
		args.baudrate = pcan.Baudrate(uint16(t.BTR0())<<8 | uint16(t.BTR1()))
	case ok:
		args.baudrate = rate
	case cfg.StrictBitrate:
		return initArgs{}, newConfigError(fmt.Sprintf("unsupported bitrate %d", cfg.Bitrate))
	default:
		notify(EventTypeWarning, "Unknown bitrate. Falling back to 500 kbit/s.")
		args.baudrate = pcan.Baud500K
	}
	return args, nil
}

func fdBitrate(cfg *Config, notify func(EventType, string)) (string, error) {
	if cfg.Timing != nil && cfg.DataTiming != nil {
		nom, data := cfg.Timing, cfg.DataTiming
		if nom.FClock == 0 {
			return "", newConfigError("timing f_clock missing")
		}
		if data.FClock != 0 && data.FClock != nom.FClock {
			return "", newConfigError("timing and data_timing use different clocks")
		}
		if err := nom.validate("timing", nominalLimits); err != nil {
			return "", err
		}
		if err := data.validate("data_timing", dataLimits); err != nil {
			return "", err
		}
		return joinParams([]param{
			{pcan.BRClock, nom.FClock},
			{pcan.BRNomBRP, nom.BRP},
			{pcan.BRNomTSeg1, nom.TSeg1},
			{pcan.BRNomTSeg2, nom.TSeg2},
			{pcan.BRNomSJW, nom.SJW},
			{pcan.BRDataBRP, data.BRP},
			{pcan.BRDataTSeg1, data.TSeg1},
			{pcan.BRDataTSeg2, data.TSeg2},
			{pcan.BRDataSJW, data.SJW},
		}), nil
	}
	if _, ok := cfg.FDParams[pcan.BRNomTSeg1]; ok {
		notify(EventTypeWarning, "Specifying bit timing as raw FD parameters is deprecated. Use Timing and DataTiming instead.")
		var params []param
		for _, key := range []string{pcan.BRClock, pcan.BRClockMHz} {
			if v, ok := cfg.FDParams[key]; ok {
				params = append(params, param{key, v})
			}
		}
		for _, key := range []string{
			pcan.BRNomBRP, pcan.BRNomTSeg1, pcan.BRNomTSeg2, pcan.BRNomSJW,
			pcan.BRDataBRP, pcan.BRDataTSeg1, pcan.BRDataTSeg2, pcan.BRDataSJW,
		} {
			v, ok := cfg.FDParams[key]
			if !ok {
				return "", newConfigError("FD parameter " + key + " missing")
			}
			params = append(params, param{key, v})
		}
		return joinParams(params), nil
	}
	return "", newConfigError("timing and data_timing arguments missing")
}

type param struct {
	key   string
	value uint32
}

func joinParams(params []param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.key + "=" + strconv.FormatUint(uint64(p.value), 10)
	}
	return strings.Join(parts, ",")
}
