//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
)

const (
	whKeyboardLL = 13
	wmKeydown    = 0x0100
	wmKeyup      = 0x0101
	wmSyskeydown = 0x0104
	wmSyskeyup   = 0x0105
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// WindowsHook implements the capture Hook with a low-level keyboard hook.
// While installed it swallows every key event system-wide, so callers must
// always Release it.
type WindowsHook struct {
	mu      sync.Mutex
	hook    uintptr
	cb      uintptr
	cbOnce  sync.Once
	onEvent func(HookEvent)
	done    chan struct{}
}

// NewHook creates an uninstalled capture hook.
func NewHook() Hook {
	return &WindowsHook{}
}

// Install sets the hook and starts its message loop.
func (h *WindowsHook) Install(onEvent func(HookEvent)) error {
	h.mu.Lock()
	if h.hook != 0 {
		h.mu.Unlock()
		return fmt.Errorf("hook already installed")
	}
	h.onEvent = onEvent
	h.done = make(chan struct{})
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go h.runHook(errCh)
	return <-errCh
}

// Release unhooks and stops the message loop. Safe to call when not
// installed.
func (h *WindowsHook) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hook == 0 {
		return nil
	}
	close(h.done)
	unhookWindowsHookEx.Call(h.hook)
	h.hook = 0
	h.onEvent = nil
	return nil
}

func (h *WindowsHook) runHook(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// NewCallback slots are never released, so the hook procedure is
	// created once per hook instance no matter how many sessions run.
	h.cbOnce.Do(func() {
		h.cb = windows.NewCallback(func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
			if nCode >= 0 {
				kbInfo := (*kbdllhookstruct)(unsafe.Pointer(lParam))
				h.handleKeyEvent(wParam, kbInfo)
				// Non-zero return suppresses delivery to other applications
				// while a capture is in progress.
				return 1
			}
			r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
			return r
		})
	})

	hook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		h.cb,
		0,
		0,
	)
	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookEx failed: %w", err)
		return
	}

	h.mu.Lock()
	h.hook = hook
	done := h.done
	h.mu.Unlock()

	errCh <- nil

	// Low-level hooks need a message pump on the installing thread.
	var m msg
	for {
		select {
		case <-done:
			return
		default:
			r, _, _ := peekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
			if r != 0 {
				continue
			}
			runtime.Gosched()
		}
	}
}

func (h *WindowsHook) handleKeyEvent(wParam uintptr, kbInfo *kbdllhookstruct) {
	h.mu.Lock()
	onEvent := h.onEvent
	h.mu.Unlock()
	if onEvent == nil {
		return
	}

	name, ok := keyNames[kbInfo.vkCode]
	if !ok {
		return
	}
	down := wParam == wmKeydown || wParam == wmSyskeydown
	onEvent(HookEvent{Key: name, Down: down})
}
