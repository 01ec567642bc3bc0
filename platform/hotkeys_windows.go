//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

var (
	registerHotKey   = user32.NewProc("RegisterHotKey")
	unregisterHotKey = user32.NewProc("UnregisterHotKey")
	peekMessage      = user32.NewProc("PeekMessageW")
)

const (
	wmHotkey = 0x0312
	pmRemove = 0x0001
)

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

type hotkeyCmd struct {
	register bool
	id       int
	mods     uint32
	vk       int
	reply    chan error
}

// WindowsHotkeys implements Hotkeys on top of RegisterHotKey. All win32
// calls happen on one locked OS thread that also pumps WM_HOTKEY messages.
type WindowsHotkeys struct {
	mu        sync.Mutex
	nextID    int
	callbacks map[int]func()
	cmds      chan hotkeyCmd
	done      chan struct{}
	closeOnce sync.Once
}

// NewHotkeys starts the hotkey message loop.
func NewHotkeys() (Hotkeys, error) {
	h := &WindowsHotkeys{
		nextID:    1,
		callbacks: map[int]func(){},
		cmds:      make(chan hotkeyCmd),
		done:      make(chan struct{}),
	}
	go h.loop()
	return h, nil
}

// Register installs a global hotkey for a normalized combo. The callback
// fires once per combination press (MOD_NOREPEAT suppresses auto-repeat).
func (h *WindowsHotkeys) Register(combo string, onPress func()) (Registration, error) {
	mods, vk, err := parseCombo(combo)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.callbacks[id] = onPress
	h.mu.Unlock()

	reply := make(chan error, 1)
	select {
	case h.cmds <- hotkeyCmd{register: true, id: id, mods: mods | modNoRepeat, vk: vk, reply: reply}:
	case <-h.done:
		return nil, fmt.Errorf("hotkey loop stopped")
	}
	if err := <-reply; err != nil {
		h.mu.Lock()
		delete(h.callbacks, id)
		h.mu.Unlock()
		return nil, err
	}

	return &winRegistration{owner: h, id: id}, nil
}

// Close stops the message loop, dropping every registration with it.
func (h *WindowsHotkeys) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

func (h *WindowsHotkeys) unregister(id int) error {
	h.mu.Lock()
	delete(h.callbacks, id)
	h.mu.Unlock()

	reply := make(chan error, 1)
	select {
	case h.cmds <- hotkeyCmd{register: false, id: id, reply: reply}:
		return <-reply
	case <-h.done:
		// Loop teardown unregisters everything.
		return nil
	}
}

// loop owns the thread hotkeys are registered on; RegisterHotKey delivers
// WM_HOTKEY to the registering thread's message queue.
func (h *WindowsHotkeys) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	registered := map[int]bool{}
	defer func() {
		for id := range registered {
			unregisterHotKey.Call(0, uintptr(id))
		}
	}()

	var m msg
	for {
		select {
		case <-h.done:
			return
		case cmd := <-h.cmds:
			if cmd.register {
				r, _, err := registerHotKey.Call(0, uintptr(cmd.id), uintptr(cmd.mods), uintptr(cmd.vk))
				if r == 0 {
					cmd.reply <- fmt.Errorf("RegisterHotKey failed: %w", err)
				} else {
					registered[cmd.id] = true
					cmd.reply <- nil
				}
			} else {
				unregisterHotKey.Call(0, uintptr(cmd.id))
				delete(registered, cmd.id)
				cmd.reply <- nil
			}
		default:
			r, _, _ := peekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
			if r != 0 {
				if m.message == wmHotkey {
					h.dispatch(int(m.wParam))
				}
				continue
			}
			runtime.Gosched()
		}
	}
}

func (h *WindowsHotkeys) dispatch(id int) {
	h.mu.Lock()
	cb := h.callbacks[id]
	h.mu.Unlock()
	if cb != nil {
		cb()
	}
}

type winRegistration struct {
	owner *WindowsHotkeys
	id    int
	once  sync.Once
}

func (r *winRegistration) Unregister() error {
	var err error
	r.once.Do(func() { err = r.owner.unregister(r.id) })
	return err
}
