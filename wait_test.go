package pcanbus

import (
	"testing"
	"time"

	"github.com/roffe/pcanbus/pkg/pcan"
)

func TestPollTimeout(t *testing.T) {
	bus, _, _ := openLoopback(t, &Config{Polling: true})
	if _, ok := bus.waiter.(pollWait); !ok {
		t.Fatalf("waiter = %T, want pollWait", bus.waiter)
	}
	start := time.Now()
	f, err := bus.Recv(50 * time.Millisecond)
	elapsed := time.Since(start)
	if f != nil || err != nil {
		t.Fatalf("Recv() = %v, %v", f, err)
	}
	if elapsed < 50*time.Millisecond || elapsed >= 100*time.Millisecond {
		t.Errorf("Recv() returned after %v, want 50ms to 100ms", elapsed)
	}
}

func TestPollZeroTimeout(t *testing.T) {
	more := pollWait{}.begin(0)
	if more() {
		t.Error("zero timeout asked for another read")
	}
}

func TestPollSeesLateFrame(t *testing.T) {
	bus, dev, _ := openLoopback(t, &Config{Polling: true})
	go func() {
		time.Sleep(10 * time.Millisecond)
		dev.Deliver(pcan.USBBus1, pcan.MsgFD{ID: 0x55, DLC: 1, Data: [64]byte{9}})
	}()
	f, err := bus.Recv(Forever)
	if err != nil || f == nil {
		t.Fatalf("Recv(Forever) = %v, %v", f, err)
	}
	if f.ID != 0x55 {
		t.Errorf("ID = 0x%X", f.ID)
	}
}

func TestEventWaitSignalled(t *testing.T) {
	if !pcan.EventsSupported() {
		t.Skip("receive events not supported")
	}
	dev := pcan.NewLoopback()
	w, err := newEventWait(dev, pcan.USBBus2)
	if err != nil {
		t.Fatal(err)
	}
	defer w.close()
	if got := dev.Value(pcan.USBBus2, pcan.ParamReceiveEvent); got != w.ev.Value() {
		t.Errorf("registered event = %d, want %d", got, w.ev.Value())
	}
	if err := pcan.SignalEvent(w.ev.Value()); err != nil {
		t.Fatal(err)
	}
	if !w.begin(time.Second)() {
		t.Error("signalled event reported a timeout")
	}
	if w.begin(10 * time.Millisecond)() {
		t.Error("event was not reset by the previous wait")
	}
}
