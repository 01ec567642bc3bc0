//go:build windows

package platform

import (
	"fmt"
	"unicode/utf16"
	"unsafe"
)

var (
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard     = 1
	keyeventfKeyup    = 0x0002
	keyeventfUnicode  = 0x0004
	mapvkVkToVsc      = 0
	vkBackspace       = 0x08
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

// WindowsTyper implements Typer via SendInput.
type WindowsTyper struct{}

// NewTyper creates a Windows keystroke injector.
func NewTyper() Typer {
	return &WindowsTyper{}
}

// TypeRune emits one printable character as a KEYEVENTF_UNICODE press and
// release, so layout and shift state never matter. Runes outside the BMP
// are sent as their surrogate pair.
func (t *WindowsTyper) TypeRune(r rune) error {
	var inputs []input
	for _, u := range utf16.Encode([]rune{r}) {
		inputs = append(inputs,
			input{
				inputType: inputKeyboard,
				ki:        keyboardInput{wScan: u, dwFlags: keyeventfUnicode},
			},
			input{
				inputType: inputKeyboard,
				ki:        keyboardInput{wScan: u, dwFlags: keyeventfUnicode | keyeventfKeyup},
			},
		)
	}
	return send(inputs)
}

// Backspace taps the backspace key with its scan code for better
// compatibility with elevated applications.
func (t *WindowsTyper) Backspace() error {
	scan, _, _ := mapVirtualKeyW.Call(vkBackspace, mapvkVkToVsc)

	inputs := []input{
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vkBackspace, wScan: uint16(scan)},
		},
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vkBackspace, wScan: uint16(scan), dwFlags: keyeventfKeyup},
		},
	}
	return send(inputs)
}

func send(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}
	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed: %w", err)
	}
	return nil
}
