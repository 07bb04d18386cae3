package pcan

// Device is the subset of the PCAN-Basic API the bus adapter needs.
// Every call reports the raw driver status, callers decide what is fatal.
type Device interface {
	Initialize(ch Handle, rate Baudrate, hwType HWType, ioPort uint32, interrupt uint16) Status
	InitializeFD(ch Handle, bitrate string) Status
	Read(ch Handle) (Status, Msg, Timestamp)
	ReadFD(ch Handle) (Status, MsgFD, TimestampFD)
	Write(ch Handle, msg *Msg) Status
	WriteFD(ch Handle, msg *MsgFD) Status
	GetStatus(ch Handle) Status
	Reset(ch Handle) Status
	SetValue(ch Handle, param Parameter, value uint32) Status
	// GetErrorText translates a status code. language 0 is the system language.
	GetErrorText(code Status, language uint16) (Status, string)
	Uninitialize(ch Handle) Status
}

func cString(b []byte) string {
	for i, v := range b {
		if v == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Describer is implemented by devices that can identify themselves.
type Describer interface {
	HardwareName(ch Handle) (string, error)
	APIVersion() (string, error)
}
