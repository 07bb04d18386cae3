package pcan

import (
	"sync"
)

// Op names a Loopback entry point for fault injection.
type Op int

const (
	OpInitialize Op = iota
	OpWrite
	OpSetValue
	OpReset
	OpUninitialize
)

// ValueWrite records one SetValue call.
type ValueWrite struct {
	Param Parameter
	Value uint32
}

// ChannelInfo is a snapshot of a loopback channel.
type ChannelInfo struct {
	Initialized bool
	FD          bool
	Baudrate    Baudrate
	BitrateFD   string
	HWType      HWType
	IOPort      uint32
	Interrupt   uint16
	Queued      int
}

type loopFrame struct {
	id      uint32
	msgType MessageType
	data    []byte
	us      uint64
}

type loopChannel struct {
	ChannelInfo
	params  map[Parameter]uint32
	history []ValueWrite
	queue   []loopFrame
	reads   []Status
	status  Status
}

// Loopback is an in-memory Device. Frames written to a channel are queued
// back for reading on the same channel, and a registered receive event is
// signalled on every write.
type Loopback struct {
	mu       sync.Mutex
	channels map[Handle]*loopChannel
	faults   map[Op]Status
}

func NewLoopback() *Loopback {
	return &Loopback{
		channels: make(map[Handle]*loopChannel),
		faults:   make(map[Op]Status),
	}
}

func (l *Loopback) channel(ch Handle) *loopChannel {
	c, ok := l.channels[ch]
	if !ok {
		c = &loopChannel{params: make(map[Parameter]uint32)}
		l.channels[ch] = c
	}
	return c
}

// SetFault makes every following call of op return st. StatusOK clears it.
func (l *Loopback) SetFault(op Op, st Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st == StatusOK {
		delete(l.faults, op)
		return
	}
	l.faults[op] = st
}

// InjectRead queues a status that the next Read or ReadFD returns instead of a frame.
func (l *Loopback) InjectRead(ch Handle, st Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.channel(ch)
	c.reads = append(c.reads, st)
}

// SetBusStatus sets what GetStatus reports for an initialized channel.
func (l *Loopback) SetBusStatus(ch Handle, st Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.channel(ch).status = st
}

// Deliver queues a frame as if it was received from the bus.
func (l *Loopback) Deliver(ch Handle, msg MsgFD) {
	l.mu.Lock()
	c := l.channel(ch)
	l.enqueue(c, msg.ID, msg.MsgType, msg.Data[:DLCToLen(msg.DLC)])
	ev := c.params[ParamReceiveEvent]
	l.mu.Unlock()
	if ev != 0 {
		SignalEvent(ev)
	}
}

// Info returns a snapshot of the channel state.
func (l *Loopback) Info(ch Handle) ChannelInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.channel(ch)
	info := c.ChannelInfo
	info.Queued = len(c.queue)
	return info
}

// Value returns the last value set for param, parameters reset on Uninitialize.
func (l *Loopback) Value(ch Handle, param Parameter) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.channel(ch).params[param]
}

// History returns every SetValue call made on the channel, oldest first.
func (l *Loopback) History(ch Handle) []ValueWrite {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.channel(ch)
	out := make([]ValueWrite, len(c.history))
	copy(out, c.history)
	return out
}

func (l *Loopback) enqueue(c *loopChannel, id uint32, msgType MessageType, data []byte) {
	d := make([]byte, len(data))
	copy(d, data)
	c.queue = append(c.queue, loopFrame{id: id, msgType: msgType, data: d, us: Micros()})
}

func (l *Loopback) Initialize(ch Handle, rate Baudrate, hwType HWType, ioPort uint32, interrupt uint16) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.faults[OpInitialize]; ok {
		return st
	}
	c := l.channel(ch)
	if c.Initialized {
		return StatusInitialize
	}
	c.ChannelInfo = ChannelInfo{
		Initialized: true,
		Baudrate:    rate,
		HWType:      hwType,
		IOPort:      ioPort,
		Interrupt:   interrupt,
	}
	return StatusOK
}

func (l *Loopback) InitializeFD(ch Handle, bitrate string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.faults[OpInitialize]; ok {
		return st
	}
	c := l.channel(ch)
	if c.Initialized {
		return StatusInitialize
	}
	c.ChannelInfo = ChannelInfo{Initialized: true, FD: true, BitrateFD: bitrate}
	return StatusOK
}

func (l *Loopback) Uninitialize(ch Handle) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.faults[OpUninitialize]; ok {
		return st
	}
	c := l.channel(ch)
	if !c.Initialized {
		return StatusInitialize
	}
	c.ChannelInfo = ChannelInfo{}
	c.params = make(map[Parameter]uint32)
	c.queue = nil
	c.reads = nil
	return StatusOK
}

func (l *Loopback) Reset(ch Handle) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.faults[OpReset]; ok {
		return st
	}
	c := l.channel(ch)
	if !c.Initialized {
		return StatusInitialize
	}
	c.queue = nil
	return StatusOK
}

func (l *Loopback) GetStatus(ch Handle) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.channel(ch)
	if !c.Initialized {
		return StatusInitialize
	}
	return c.status
}

func (l *Loopback) next(ch Handle) (Status, loopFrame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.channel(ch)
	if !c.Initialized {
		return StatusInitialize, loopFrame{}
	}
	if len(c.reads) > 0 {
		st := c.reads[0]
		c.reads = c.reads[1:]
		return st, loopFrame{}
	}
	if len(c.queue) == 0 {
		return StatusQRcvEmpty, loopFrame{}
	}
	f := c.queue[0]
	c.queue = c.queue[1:]
	return StatusOK, f
}

func (l *Loopback) Read(ch Handle) (Status, Msg, Timestamp) {
	st, f := l.next(ch)
	if st != StatusOK {
		return st, Msg{}, Timestamp{}
	}
	msg := Msg{ID: f.id, MsgType: f.msgType}
	msg.Len = uint8(copy(msg.Data[:], f.data))
	return st, msg, TimestampFromMicros(f.us)
}

func (l *Loopback) ReadFD(ch Handle) (Status, MsgFD, TimestampFD) {
	st, f := l.next(ch)
	if st != StatusOK {
		return st, MsgFD{}, 0
	}
	msg := MsgFD{ID: f.id, MsgType: f.msgType, DLC: LenToDLC(len(f.data))}
	copy(msg.Data[:], f.data)
	return st, msg, TimestampFD(f.us)
}

func (l *Loopback) write(ch Handle, id uint32, msgType MessageType, data []byte) Status {
	l.mu.Lock()
	if st, ok := l.faults[OpWrite]; ok {
		l.mu.Unlock()
		return st
	}
	c := l.channel(ch)
	switch {
	case !c.Initialized:
		l.mu.Unlock()
		return StatusInitialize
	case c.params[ParamListenOnly] == ParameterOn:
		l.mu.Unlock()
		return StatusIllOperation
	}
	l.enqueue(c, id, msgType, data)
	ev := c.params[ParamReceiveEvent]
	l.mu.Unlock()
	if ev != 0 {
		SignalEvent(ev)
	}
	return StatusOK
}

func (l *Loopback) Write(ch Handle, msg *Msg) Status {
	n := min(int(msg.Len), len(msg.Data))
	return l.write(ch, msg.ID, msg.MsgType, msg.Data[:n])
}

func (l *Loopback) WriteFD(ch Handle, msg *MsgFD) Status {
	return l.write(ch, msg.ID, msg.MsgType, msg.Data[:DLCToLen(msg.DLC)])
}

func (l *Loopback) SetValue(ch Handle, param Parameter, value uint32) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.faults[OpSetValue]; ok {
		return st
	}
	c := l.channel(ch)
	c.params[param] = value
	c.history = append(c.history, ValueWrite{Param: param, Value: value})
	return StatusOK
}

// GetErrorText knows the text of every single status code. Combined codes
// fail with StatusIllParamVal, as the driver does for values it cannot map.
func (l *Loopback) GetErrorText(code Status, language uint16) (Status, string) {
	if text, ok := errorTexts[code]; ok {
		return StatusOK, text
	}
	return StatusIllParamVal, ""
}

func (l *Loopback) HardwareName(ch Handle) (string, error) {
	return "PCAN-Loopback", nil
}

func (l *Loopback) APIVersion() (string, error) {
	return "loopback", nil
}

var errorTexts = map[Status]string{
	StatusOK:           "No error. Success",
	StatusXmtFull:      "The transmit buffer in CAN controller is full",
	StatusOverrun:      "The CAN controller was read too late",
	StatusBusLight:     "Bus error: an error counter reached the 'light' limit",
	StatusBusHeavy:     "Bus error: an error counter reached the 'heavy' limit",
	StatusBusPassive:   "Bus error: the CAN controller is error passive",
	StatusBusOff:       "Bus error: the CAN controller is in bus-off state",
	StatusQRcvEmpty:    "Receive queue is empty",
	StatusQOverrun:     "Receive queue was read too late",
	StatusQXmtFull:     "Transmit queue is full",
	StatusRegTest:      "Test of the CAN controller hardware registers failed (no hardware found)",
	StatusNoDriver:     "Driver not loaded",
	StatusHWInUse:      "Hardware already in use by a Net",
	StatusNetInUse:     "A Client is already connected to the Net",
	StatusIllHW:        "Hardware handle is invalid",
	StatusIllNet:       "Net handle is invalid",
	StatusIllClient:    "Client handle is invalid",
	StatusResource:     "Resource (FIFO, Client, timeout) cannot be created",
	StatusIllParamType: "Invalid parameter",
	StatusIllParamVal:  "Invalid parameter value",
	StatusUnknown:      "Unknown error",
	StatusIllData:      "Invalid data, function, or action",
	StatusIllMode:      "Driver object state is wrong for the attempted operation",
	StatusCaution:      "An operation was successfully carried out, however, irregularities were registered",
	StatusInitialize:   "Channel is not initialized or it is already being used",
	StatusIllOperation: "Invalid operation",
}
