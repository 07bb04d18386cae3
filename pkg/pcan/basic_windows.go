//go:build windows

package pcan

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

const dllName = "PCANBasic.dll"

// Basic talks to the PEAK driver through PCANBasic.dll.
type Basic struct {
	dll *windows.LazyDLL

	procInitialize   *windows.LazyProc
	procInitializeFD *windows.LazyProc
	procUninitialize *windows.LazyProc
	procReset        *windows.LazyProc
	procGetStatus    *windows.LazyProc
	procRead         *windows.LazyProc
	procReadFD       *windows.LazyProc
	procWrite        *windows.LazyProc
	procWriteFD      *windows.LazyProc
	procGetValue     *windows.LazyProc
	procSetValue     *windows.LazyProc
	procGetErrorText *windows.LazyProc
}

// Load locates PCANBasic.dll and resolves the API entry points.
// PCAN_DLL_PATH may point at the dll or the directory holding it.
func Load() (Device, error) {
	var errs []string
	for _, path := range dllCandidates() {
		dll := windows.NewLazyDLL(path)
		if err := dll.Load(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		b := &Basic{dll: dll}
		for name, proc := range b.procs() {
			*proc = dll.NewProc(name)
			if err := (*proc).Find(); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
		return b, nil
	}
	return nil, fmt.Errorf("failed to load %s (%s)", dllName, strings.Join(errs, "; "))
}

func (b *Basic) procs() map[string]**windows.LazyProc {
	return map[string]**windows.LazyProc{
		"CAN_Initialize":   &b.procInitialize,
		"CAN_InitializeFD": &b.procInitializeFD,
		"CAN_Uninitialize": &b.procUninitialize,
		"CAN_Reset":        &b.procReset,
		"CAN_GetStatus":    &b.procGetStatus,
		"CAN_Read":         &b.procRead,
		"CAN_ReadFD":       &b.procReadFD,
		"CAN_Write":        &b.procWrite,
		"CAN_WriteFD":      &b.procWriteFD,
		"CAN_GetValue":     &b.procGetValue,
		"CAN_SetValue":     &b.procSetValue,
		"CAN_GetErrorText": &b.procGetErrorText,
	}
}

func dllCandidates() []string {
	var out []string
	if env := os.Getenv("PCAN_DLL_PATH"); env != "" {
		if info, err := os.Stat(env); err == nil && info.IsDir() {
			out = append(out, filepath.Join(env, dllName))
		} else {
			out = append(out, env)
		}
	}
	out = append(out, dllName)
	arch := "x64"
	if runtime.GOARCH == "386" {
		arch = "Win32"
	}
	for _, root := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)")} {
		if root == "" {
			continue
		}
		out = append(out, filepath.Join(root, "PEAK-System", "PCAN-Basic", arch, dllName))
	}
	return out
}

func call(proc *windows.LazyProc, args ...uintptr) Status {
	r1, _, _ := proc.Call(args...)
	return Status(uint32(r1))
}

// Initialize connects a channel at a BTR0/BTR1 bitrate. The hardware type,
// port and interrupt are only used by non plug-and-play hardware.
func (b *Basic) Initialize(ch Handle, rate Baudrate, hwType HWType, ioPort uint32, interrupt uint16) Status {
	return call(b.procInitialize, uintptr(ch), uintptr(rate), uintptr(hwType), uintptr(ioPort), uintptr(interrupt))
}

// InitializeFD connects a channel using a "key=value,..." FD bitrate string.
func (b *Basic) InitializeFD(ch Handle, bitrate string) Status {
	p, err := windows.BytePtrFromString(bitrate)
	if err != nil {
		return StatusIllParamVal
	}
	return call(b.procInitializeFD, uintptr(ch), uintptr(unsafe.Pointer(p)))
}

func (b *Basic) Uninitialize(ch Handle) Status {
	return call(b.procUninitialize, uintptr(ch))
}

// Reset clears the receive and transmit queues of the channel.
func (b *Basic) Reset(ch Handle) Status {
	return call(b.procReset, uintptr(ch))
}

func (b *Basic) GetStatus(ch Handle) Status {
	return call(b.procGetStatus, uintptr(ch))
}

// Read dequeues one classic message. StatusQRcvEmpty means nothing was queued.
func (b *Basic) Read(ch Handle) (Status, Msg, Timestamp) {
	var msg Msg
	var ts Timestamp
	st := call(b.procRead, uintptr(ch), uintptr(unsafe.Pointer(&msg)), uintptr(unsafe.Pointer(&ts)))
	return st, msg, ts
}

func (b *Basic) ReadFD(ch Handle) (Status, MsgFD, TimestampFD) {
	var msg MsgFD
	var ts TimestampFD
	st := call(b.procReadFD, uintptr(ch), uintptr(unsafe.Pointer(&msg)), uintptr(unsafe.Pointer(&ts)))
	return st, msg, ts
}

func (b *Basic) Write(ch Handle, msg *Msg) Status {
	return call(b.procWrite, uintptr(ch), uintptr(unsafe.Pointer(msg)))
}

func (b *Basic) WriteFD(ch Handle, msg *MsgFD) Status {
	return call(b.procWriteFD, uintptr(ch), uintptr(unsafe.Pointer(msg)))
}

// SetValue writes a DWORD sized parameter.
func (b *Basic) SetValue(ch Handle, param Parameter, value uint32) Status {
	return call(b.procSetValue, uintptr(ch), uintptr(param), uintptr(unsafe.Pointer(&value)), 4)
}

func (b *Basic) GetErrorText(code Status, language uint16) (Status, string) {
	var buf [maxLengthVersionString]byte
	st := call(b.procGetErrorText, uintptr(code), uintptr(language), uintptr(unsafe.Pointer(&buf[0])))
	if st != StatusOK {
		return st, ""
	}
	return st, cString(buf[:])
}

// HardwareName reads PCAN_HARDWARE_NAME of a channel.
func (b *Basic) HardwareName(ch Handle) (string, error) {
	var name [33]byte
	if st := call(b.procGetValue, uintptr(ch), uintptr(ParamHardwareName), uintptr(unsafe.Pointer(&name[0])), uintptr(len(name))); st != StatusOK {
		return "", st
	}
	return cString(name[:]), nil
}

// APIVersion reads the PCAN-Basic API version string.
func (b *Basic) APIVersion() (string, error) {
	var version [maxLengthVersionString]byte
	if st := call(b.procGetValue, uintptr(NoneBus), uintptr(ParamAPIVersion), uintptr(unsafe.Pointer(&version[0])), uintptr(len(version))); st != StatusOK {
		return "", st
	}
	return cString(version[:]), nil
}
