//go:build windows

// Package console decides whether padmux runs in a terminal and delivers
// Ctrl+C reliably while SDL owns a locked OS thread.
package console

import (
	"os"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
)

// Interactive reports whether a terminal is attached. A console build
// double-clicked from Explorer drops its console window and reports false.
// A GUI build started from a terminal gets a console of its own.
func Interactive() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	fromExplorer := strings.EqualFold(parentProcessName(), "explorer.exe")

	if hwnd != 0 {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if fromExplorer {
		return false
	}
	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func redirectStdStreams() {
	out, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || out == 0 {
		return
	}
	errOut, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err != nil || errOut == 0 {
		return
	}
	os.Stdout = os.NewFile(uintptr(out), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(errOut), "/dev/stderr")
	if in, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && in != 0 {
		os.Stdin = os.NewFile(uintptr(in), "/dev/stdin")
	}
}

func parentProcessName() string {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snapshot)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))

	self := uint32(os.Getpid())
	var parent uint32
	for err := windows.Process32First(snapshot, &pe); err == nil; err = windows.Process32Next(snapshot, &pe) {
		if pe.ProcessID == self {
			parent = pe.ParentProcessID
			break
		}
	}
	if parent == 0 {
		return ""
	}
	for err := windows.Process32First(snapshot, &pe); err == nil; err = windows.Process32Next(snapshot, &pe) {
		if pe.ProcessID == parent {
			return windows.UTF16ToString(pe.ExeFile[:])
		}
	}
	return ""
}

var (
	handlerOnce sync.Once
	handlerFn   uintptr
	interrupts  chan<- struct{}
	closeOnce   sync.Once
)

// OnInterrupt closes ch on Ctrl+C or Ctrl+Break. SDL installs its own
// console handler during init; call the returned func afterwards to put
// ours back on top.
func OnInterrupt(ch chan<- struct{}) (rearm func()) {
	interrupts = ch
	handlerOnce.Do(func() {
		handlerFn = windows.NewCallback(func(ctrlType uint32) uintptr {
			if ctrlType != ctrlCEvent && ctrlType != ctrlBreakEvent {
				return 0
			}
			closeOnce.Do(func() { close(interrupts) })
			return 1
		})
	})
	rearm = func() {
		procSetConsoleCtrlHandler.Call(handlerFn, 1)
	}
	rearm()
	return rearm
}
