//go:build windows

package platform

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows"
)

var user32 = windows.NewLazySystemDLL("user32.dll")

const (
	modAlt      = 0x0001
	modControl  = 0x0002
	modShift    = 0x0004
	modWin      = 0x0008
	modNoRepeat = 0x4000
)

// vkCodes maps key names to Windows virtual key codes.
var vkCodes = map[string]int{
	"a": 0x41, "b": 0x42, "c": 0x43, "d": 0x44, "e": 0x45,
	"f": 0x46, "g": 0x47, "h": 0x48, "i": 0x49, "j": 0x4A,
	"k": 0x4B, "l": 0x4C, "m": 0x4D, "n": 0x4E, "o": 0x4F,
	"p": 0x50, "q": 0x51, "r": 0x52, "s": 0x53, "t": 0x54,
	"u": 0x55, "v": 0x56, "w": 0x57, "x": 0x58, "y": 0x59, "z": 0x5A,
	"0": 0x30, "1": 0x31, "2": 0x32, "3": 0x33, "4": 0x34,
	"5": 0x35, "6": 0x36, "7": 0x37, "8": 0x38, "9": 0x39,
	"f1": 0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
	"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
	"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
	"space": 0x20, "enter": 0x0D, "esc": 0x1B,
	"tab": 0x09, "backspace": 0x08,
	"ins": 0x2D, "del": 0x2E, "home": 0x24, "end": 0x23,
	"pgup": 0x21, "pgdn": 0x22,
	"up": 0x26, "down": 0x28, "left": 0x25, "right": 0x27,
}

// keyNames is the reverse mapping plus the modifier keys, used by the
// capture hook to name raw events.
var keyNames = map[uint32]string{
	0x10: "shift", 0xA0: "shift", 0xA1: "shift",
	0x11: "ctrl", 0xA2: "ctrl", 0xA3: "ctrl",
	0x12: "alt", 0xA4: "alt", 0xA5: "alt",
	0x5B: "windows", 0x5C: "windows",
	0x14: "capslock", 0x90: "numlock", 0x91: "scrolllock",
	0x2C: "prtsc",
}

func init() {
	for name, vk := range vkCodes {
		keyNames[uint32(vk)] = name
	}
}

// parseCombo splits a normalized combo string into a modifier bitmask and
// the virtual key code of its single non-modifier key.
func parseCombo(combo string) (mods uint32, vk int, err error) {
	for _, part := range strings.Split(combo, "+") {
		switch part {
		case "ctrl":
			mods |= modControl
		case "shift":
			mods |= modShift
		case "alt":
			mods |= modAlt
		case "windows", "cmd":
			mods |= modWin
		default:
			if vk != 0 {
				return 0, 0, fmt.Errorf("combo %q has more than one non-modifier key", combo)
			}
			code, ok := vkCodes[part]
			if !ok {
				return 0, 0, fmt.Errorf("unknown key: %s", part)
			}
			vk = code
		}
	}
	if vk == 0 {
		return 0, 0, fmt.Errorf("combo %q needs a non-modifier key", combo)
	}
	return mods, vk, nil
}
