// Package hotkey maps snippet hotkey strings onto OS-level global hotkey
// registrations and provides the capture flow used by the edit form.
package hotkey

import (
	"sort"
	"strings"
)

// synonyms collapses key-name variants to one canonical form.
var synonyms = map[string]string{
	"control":      "ctrl",
	"control_l":    "ctrl",
	"control_r":    "ctrl",
	"alt_l":        "alt",
	"alt_r":        "alt",
	"option":       "alt",
	"shift_l":      "shift",
	"shift_r":      "shift",
	"win":          "windows",
	"super":        "windows",
	"command":      "cmd",
	"escape":       "esc",
	"return":       "enter",
	"pagedown":     "pgdn",
	"pageup":       "pgup",
	"insert":       "ins",
	"delete":       "del",
	"print_screen": "prtsc",
	"caps_lock":    "capslock",
	"num_lock":     "numlock",
	"scroll_lock":  "scrolllock",
}

// modifierRank orders modifiers ahead of regular keys: ctrl, shift, alt,
// windows, cmd. Regular keys follow alphabetically.
var modifierRank = map[string]int{
	"ctrl":    0,
	"shift":   1,
	"alt":     2,
	"windows": 3,
	"cmd":     4,
}

// Normalize canonicalizes a raw hotkey string: parts may be separated by
// "+", spaces, or hyphens; synonyms are collapsed; duplicates removed;
// modifiers sorted in fixed priority order with remaining keys
// alphabetical. An empty result means "no binding".
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	lowered := strings.ToLower(raw)
	lowered = strings.ReplaceAll(lowered, " ", "+")
	lowered = strings.ReplaceAll(lowered, "-", "+")

	seen := map[string]bool{}
	var parts []string
	for _, p := range strings.Split(lowered, "+") {
		if p == "" {
			continue
		}
		if canon, ok := synonyms[p]; ok {
			p = canon
		}
		if !seen[p] {
			seen[p] = true
			parts = append(parts, p)
		}
	}

	sort.Slice(parts, func(i, j int) bool {
		ri, iMod := modifierRank[parts[i]]
		rj, jMod := modifierRank[parts[j]]
		switch {
		case iMod && jMod:
			return ri < rj
		case iMod != jMod:
			return iMod
		default:
			return parts[i] < parts[j]
		}
	})

	return strings.Join(parts, "+")
}
