package pcan

import (
	"testing"
	"time"
)

func TestLoopbackLifecycle(t *testing.T) {
	l := NewLoopback()
	if st := l.GetStatus(USBBus1); st != StatusInitialize {
		t.Errorf("GetStatus() before init = %v", st)
	}
	if st := l.Initialize(USBBus1, Baud250K, TypeISA, 0x2A0, 11); st != StatusOK {
		t.Fatalf("Initialize() = %v", st)
	}
	if st := l.Initialize(USBBus1, Baud250K, 0, 0, 0); st != StatusInitialize {
		t.Errorf("second Initialize() = %v", st)
	}
	info := l.Info(USBBus1)
	if !info.Initialized || info.Baudrate != Baud250K || info.IOPort != 0x2A0 {
		t.Errorf("Info() = %+v", info)
	}
	if st := l.Uninitialize(USBBus1); st != StatusOK {
		t.Errorf("Uninitialize() = %v", st)
	}
	if st := l.Uninitialize(USBBus1); st != StatusInitialize {
		t.Errorf("second Uninitialize() = %v", st)
	}
	if st := l.InitializeFD(USBBus1, "f_clock=80000000"); st != StatusOK {
		t.Errorf("InitializeFD() after Uninitialize = %v", st)
	}
}

func TestLoopbackEcho(t *testing.T) {
	l := NewLoopback()
	l.Initialize(PCIBus1, Baud500K, 0, 0, 0)
	if st, _, _ := l.Read(PCIBus1); st != StatusQRcvEmpty {
		t.Errorf("Read() on empty queue = %v", st)
	}
	msg := &Msg{ID: 0x123, MsgType: MessageExtended, Len: 3, Data: [8]byte{1, 2, 3, 4}}
	before := Micros()
	if st := l.Write(PCIBus1, msg); st != StatusOK {
		t.Fatalf("Write() = %v", st)
	}
	if l.Info(PCIBus1).Queued != 1 {
		t.Error("frame not queued")
	}
	st, got, ts := l.Read(PCIBus1)
	if st != StatusOK {
		t.Fatalf("Read() = %v", st)
	}
	if got.ID != 0x123 || got.MsgType != MessageExtended || got.Len != 3 || got.Data != [8]byte{1, 2, 3} {
		t.Errorf("Read() = %+v", got)
	}
	if ts.Microseconds() < before {
		t.Errorf("timestamp %d before write at %d", ts.Microseconds(), before)
	}
}

func TestLoopbackFD(t *testing.T) {
	l := NewLoopback()
	l.InitializeFD(USBBus3, "f_clock=80000000")
	msg := &MsgFD{ID: 0x7FF, MsgType: MessageFD | MessageBRS, DLC: 10}
	for i := range 16 {
		msg.Data[i] = byte(i)
	}
	l.WriteFD(USBBus3, msg)
	st, got, _ := l.ReadFD(USBBus3)
	if st != StatusOK || got.DLC != 10 || got.Data != msg.Data || got.MsgType != msg.MsgType {
		t.Errorf("ReadFD() = %v %+v", st, got)
	}
}

func TestLoopbackFaults(t *testing.T) {
	l := NewLoopback()
	l.SetFault(OpInitialize, StatusNoDriver)
	if st := l.Initialize(USBBus1, Baud500K, 0, 0, 0); st != StatusNoDriver {
		t.Errorf("Initialize() = %v", st)
	}
	l.SetFault(OpInitialize, StatusOK)
	l.Initialize(USBBus1, Baud500K, 0, 0, 0)

	l.InjectRead(USBBus1, StatusBusHeavy)
	if st, _, _ := l.Read(USBBus1); st != StatusBusHeavy {
		t.Errorf("Read() = %v, want injected status", st)
	}
	if st, _, _ := l.Read(USBBus1); st != StatusQRcvEmpty {
		t.Errorf("Read() after injected status = %v", st)
	}

	l.SetValue(USBBus1, ParamListenOnly, ParameterOn)
	if st := l.Write(USBBus1, &Msg{ID: 1}); st != StatusIllOperation {
		t.Errorf("Write() in listen-only = %v", st)
	}
	hist := l.History(USBBus1)
	if len(hist) != 1 || hist[0] != (ValueWrite{ParamListenOnly, ParameterOn}) {
		t.Errorf("History() = %+v", hist)
	}
}

func TestLoopbackErrorText(t *testing.T) {
	l := NewLoopback()
	if st, text := l.GetErrorText(StatusQXmtFull, 0); st != StatusOK || text != "Transmit queue is full" {
		t.Errorf("GetErrorText() = %v %q", st, text)
	}
	if st, _ := l.GetErrorText(StatusQXmtFull|StatusBusOff, 0); st != StatusIllParamVal {
		t.Errorf("GetErrorText(composite) = %v", st)
	}
}

func TestLoopbackSignalsEvent(t *testing.T) {
	if !EventsSupported() {
		t.Skip("receive events not supported")
	}
	ev, err := NewEvent()
	if err != nil {
		t.Fatal(err)
	}
	defer ev.Close()
	l := NewLoopback()
	l.Initialize(USBBus1, Baud500K, 0, 0, 0)
	l.SetValue(USBBus1, ParamReceiveEvent, ev.Value())
	if err := ev.Wait(10 * time.Millisecond); err == nil {
		t.Fatal("event signalled before any write")
	}
	l.Write(USBBus1, &Msg{ID: 1})
	if err := ev.Wait(time.Second); err != nil {
		t.Errorf("Wait() after write = %v", err)
	}
}
