package pcan

import (
	"fmt"
	"sort"
	"strings"
)

// Type mappings of the PCAN-Basic header (PCANBasic.h).
type (
	Handle      uint16 // channel handle (WORD)
	Status      uint32 // status/error bitmask (DWORD)
	Parameter   uint8  // CAN_GetValue / CAN_SetValue parameter (BYTE)
	MessageType uint8  // message type flags (BYTE)
	HWType      uint8  // non-PnP hardware type (BYTE)
	Baudrate    uint16 // BTR0/BTR1 register value (WORD)
	TimestampFD uint64 // microseconds since driver start
)

// Channels.
const (
	NoneBus Handle = 0x00

	ISABus1 Handle = 0x21
	ISABus2 Handle = 0x22
	ISABus3 Handle = 0x23
	ISABus4 Handle = 0x24
	ISABus5 Handle = 0x25
	ISABus6 Handle = 0x26
	ISABus7 Handle = 0x27
	ISABus8 Handle = 0x28

	DNGBus1 Handle = 0x31

	PCIBus1  Handle = 0x41
	PCIBus2  Handle = 0x42
	PCIBus3  Handle = 0x43
	PCIBus4  Handle = 0x44
	PCIBus5  Handle = 0x45
	PCIBus6  Handle = 0x46
	PCIBus7  Handle = 0x47
	PCIBus8  Handle = 0x48
	PCIBus9  Handle = 0x409
	PCIBus10 Handle = 0x40A
	PCIBus11 Handle = 0x40B
	PCIBus12 Handle = 0x40C
	PCIBus13 Handle = 0x40D
	PCIBus14 Handle = 0x40E
	PCIBus15 Handle = 0x40F
	PCIBus16 Handle = 0x410

	USBBus1  Handle = 0x51
	USBBus2  Handle = 0x52
	USBBus3  Handle = 0x53
	USBBus4  Handle = 0x54
	USBBus5  Handle = 0x55
	USBBus6  Handle = 0x56
	USBBus7  Handle = 0x57
	USBBus8  Handle = 0x58
	USBBus9  Handle = 0x509
	USBBus10 Handle = 0x50A
	USBBus11 Handle = 0x50B
	USBBus12 Handle = 0x50C
	USBBus13 Handle = 0x50D
	USBBus14 Handle = 0x50E
	USBBus15 Handle = 0x50F
	USBBus16 Handle = 0x510

	PCCBus1 Handle = 0x61
	PCCBus2 Handle = 0x62

	LANBus1  Handle = 0x801
	LANBus2  Handle = 0x802
	LANBus3  Handle = 0x803
	LANBus4  Handle = 0x804
	LANBus5  Handle = 0x805
	LANBus6  Handle = 0x806
	LANBus7  Handle = 0x807
	LANBus8  Handle = 0x808
	LANBus9  Handle = 0x809
	LANBus10 Handle = 0x80A
	LANBus11 Handle = 0x80B
	LANBus12 Handle = 0x80C
	LANBus13 Handle = 0x80D
	LANBus14 Handle = 0x80E
	LANBus15 Handle = 0x80F
	LANBus16 Handle = 0x810
)

// Status codes. Every value except StatusOK is a single bit or a fixed
// combination of bits, the driver may OR several of them together.
const (
	StatusOK           Status = 0x00000
	StatusXmtFull      Status = 0x00001 // transmit buffer in CAN controller is full
	StatusOverrun      Status = 0x00002 // CAN controller was read too late
	StatusBusLight     Status = 0x00004 // an error counter reached the 'light' limit
	StatusBusHeavy     Status = 0x00008 // an error counter reached the 'heavy' limit
	StatusBusWarning   Status = StatusBusHeavy
	StatusBusPassive   Status = 0x40000 // controller is error passive
	StatusBusOff       Status = 0x00010 // controller is bus-off
	StatusAnyBusErr    Status = StatusBusWarning | StatusBusLight | StatusBusHeavy | StatusBusOff | StatusBusPassive
	StatusQRcvEmpty    Status = 0x00020 // receive queue is empty
	StatusQOverrun     Status = 0x00040 // receive queue was read too late
	StatusQXmtFull     Status = 0x00080 // transmit queue is full
	StatusRegTest      Status = 0x00100 // controller register test failed
	StatusNoDriver     Status = 0x00200 // driver not loaded
	StatusHWInUse      Status = 0x00400 // hardware already in use by a net
	StatusNetInUse     Status = 0x00800 // a client is already connected to the net
	StatusIllHW        Status = 0x01400 // invalid hardware handle
	StatusIllNet       Status = 0x01800 // invalid net handle
	StatusIllClient    Status = 0x01C00 // invalid client handle
	StatusIllHandle    Status = StatusIllHW | StatusIllNet | StatusIllClient
	StatusResource     Status = 0x02000 // resource (FIFO, client, timeout) cannot be created
	StatusIllParamType Status = 0x04000 // invalid parameter
	StatusIllParamVal  Status = 0x08000 // invalid parameter value
	StatusUnknown      Status = 0x10000 // unknown error
	StatusIllData      Status = 0x20000 // invalid data, function or action
	StatusIllMode      Status = 0x80000 // driver object state is wrong for the operation
	StatusCaution      Status = 0x2000000
	StatusInitialize   Status = 0x4000000 // channel is not initialized
	StatusIllOperation Status = 0x8000000
)

// Parameters used by the adapter.
const (
	ParamDeviceID           Parameter = 0x01
	ParamReceiveEvent       Parameter = 0x03
	ParamMessageFilter      Parameter = 0x04
	ParamAPIVersion         Parameter = 0x05
	ParamBusOffAutoReset    Parameter = 0x07
	ParamListenOnly         Parameter = 0x08
	ParamChannelCondition   Parameter = 0x0D
	ParamHardwareName       Parameter = 0x0E
	ParamChannelIdentifying Parameter = 0x15
	ParamChannelFeatures    Parameter = 0x16
	ParamAllowErrorFrames   Parameter = 0x20
)

const (
	ParameterOff uint32 = 0x00
	ParameterOn  uint32 = 0x01
)

// Message types.
const (
	MessageStandard MessageType = 0x00
	MessageRTR      MessageType = 0x01
	MessageExtended MessageType = 0x02
	MessageFD       MessageType = 0x04
	MessageBRS      MessageType = 0x08
	MessageESI      MessageType = 0x10
	MessageEcho     MessageType = 0x20
	MessageErrFrame MessageType = 0x40
	MessageStatus   MessageType = 0x80
)

// Classic bitrates as BTR0/BTR1.
const (
	Baud1M   Baudrate = 0x0014
	Baud800K Baudrate = 0x0016
	Baud500K Baudrate = 0x001C
	Baud250K Baudrate = 0x011C
	Baud125K Baudrate = 0x031C
	Baud100K Baudrate = 0x432F
	Baud95K  Baudrate = 0xC34E
	Baud83K  Baudrate = 0x852B
	Baud50K  Baudrate = 0x472F
	Baud47K  Baudrate = 0x1414
	Baud33K  Baudrate = 0x8B2F
	Baud20K  Baudrate = 0x532F
	Baud10K  Baudrate = 0x672F
	Baud5K   Baudrate = 0x7F7F
)

// FD bitrate string keys.
const (
	BRClock     = "f_clock"
	BRClockMHz  = "f_clock_mhz"
	BRNomBRP    = "nom_brp"
	BRNomTSeg1  = "nom_tseg1"
	BRNomTSeg2  = "nom_tseg2"
	BRNomSJW    = "nom_sjw"
	BRDataBRP   = "data_brp"
	BRDataTSeg1 = "data_tseg1"
	BRDataTSeg2 = "data_tseg2"
	BRDataSJW   = "data_sjw"
)

// Non-PnP hardware types.
const (
	TypeISA    HWType = 0x01
	TypeISASJA HWType = 0x09
	TypeDNG    HWType = 0x02
	TypeDNGSJA HWType = 0x05
)

const maxLengthVersionString = 256

// Msg is a classic CAN message (TPCANMsg).
type Msg struct {
	ID      uint32
	MsgType MessageType
	Len     uint8
	Data    [8]byte
}

// MsgFD is a CAN FD message (TPCANMsgFD).
type MsgFD struct {
	ID      uint32
	MsgType MessageType
	DLC     uint8
	Data    [64]byte
}

// Timestamp of a classic message (TPCANTimestamp).
// Total µs = Micros + 1000*Millis + 0x100000000*1000*MillisOverflow
type Timestamp struct {
	Millis         uint32
	MillisOverflow uint16
	Micros         uint16
}

// Microseconds returns the total timestamp in microseconds.
func (t Timestamp) Microseconds() uint64 {
	return uint64(t.Micros) + 1000*uint64(t.Millis) + 0x100000000*1000*uint64(t.MillisOverflow)
}

// TimestampFromMicros splits a microsecond count into the classic timestamp layout.
func TimestampFromMicros(us uint64) Timestamp {
	ms := us / 1000
	return Timestamp{
		Millis:         uint32(ms & 0xFFFFFFFF),
		MillisOverflow: uint16(ms >> 32),
		Micros:         uint16(us % 1000),
	}
}

// Error makes a Status usable as an error value.
func (s Status) Error() string {
	return fmt.Sprintf("pcan status 0x%X", uint32(s))
}

// Has reports whether any of the bits in mask are set.
func (s Status) Has(mask Status) bool {
	return s&mask != 0
}

var channelNames = map[string]Handle{
	"PCAN_NONEBUS": NoneBus,
	"PCAN_DNGBUS1": DNGBus1,
	"PCAN_PCCBUS1": PCCBus1,
	"PCAN_PCCBUS2": PCCBus2,
}

func init() {
	isa := []Handle{ISABus1, ISABus2, ISABus3, ISABus4, ISABus5, ISABus6, ISABus7, ISABus8}
	for i, h := range isa {
		channelNames[fmt.Sprintf("PCAN_ISABUS%d", i+1)] = h
	}
	pci := []Handle{PCIBus1, PCIBus2, PCIBus3, PCIBus4, PCIBus5, PCIBus6, PCIBus7, PCIBus8,
		PCIBus9, PCIBus10, PCIBus11, PCIBus12, PCIBus13, PCIBus14, PCIBus15, PCIBus16}
	for i, h := range pci {
		channelNames[fmt.Sprintf("PCAN_PCIBUS%d", i+1)] = h
	}
	usb := []Handle{USBBus1, USBBus2, USBBus3, USBBus4, USBBus5, USBBus6, USBBus7, USBBus8,
		USBBus9, USBBus10, USBBus11, USBBus12, USBBus13, USBBus14, USBBus15, USBBus16}
	for i, h := range usb {
		channelNames[fmt.Sprintf("PCAN_USBBUS%d", i+1)] = h
	}
	lan := []Handle{LANBus1, LANBus2, LANBus3, LANBus4, LANBus5, LANBus6, LANBus7, LANBus8,
		LANBus9, LANBus10, LANBus11, LANBus12, LANBus13, LANBus14, LANBus15, LANBus16}
	for i, h := range lan {
		channelNames[fmt.Sprintf("PCAN_LANBUS%d", i+1)] = h
	}
}

// LookupChannel resolves a channel name like "PCAN_USBBUS1" to its handle.
// Matching is case insensitive.
func LookupChannel(name string) (Handle, error) {
	if h, ok := channelNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return h, nil
	}
	return NoneBus, fmt.Errorf("unknown channel %q", name)
}

// ChannelNames returns every known channel name, sorted.
func ChannelNames() []string {
	out := make([]string, 0, len(channelNames))
	for name, h := range channelNames {
		if h == NoneBus {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
