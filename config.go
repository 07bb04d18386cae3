package pcanbus

const (
	DefaultChannel = "PCAN_USBBUS1"
	DefaultBitrate = 500_000
)

// BusState is the operating state of a channel.
type BusState int

const (
	StateActive BusState = iota
	// StatePassive is listen-only: the controller never transmits, not even
	// acknowledge or error flags.
	StatePassive
	StateError
)

func (s BusState) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StatePassive:
		return "PASSIVE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type Config struct {
	Channel string   // channel name, e.g. PCAN_USBBUS1
	State   BusState // StateActive or StatePassive
	Bitrate int      // classic bitrate in bit/s, ignored when Timing is set or FD is enabled

	// Timing is the classic bit timing, or the nominal (arbitration) phase
	// timing in FD mode. DataTiming is the FD data phase timing.
	Timing     *BitTiming
	DataTiming *BitTiming
	FD         bool

	// Deprecated: raw FD bitrate string parameters keyed by name (nom_brp,
	// data_tseg1 ...). Use Timing and DataTiming.
	FDParams map[string]uint32

	StrictBitrate bool // reject bitrates missing from the rate table instead of falling back to 500 kbit/s
	Polling       bool // poll the receive queue even when receive events are available
	Debug         bool
	OnEvent       func(Event)
}

func (c *Config) withDefaults() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.Channel == "" {
		out.Channel = DefaultChannel
	}
	if out.Bitrate == 0 {
		out.Bitrate = DefaultBitrate
	}
	if out.OnEvent == nil {
		out.OnEvent = logEvent
	}
	return out
}
