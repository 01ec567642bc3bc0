// Package platform wraps the OS keyboard facilities the agent depends on:
// global hotkey registration, keystroke injection, and the raw key hook
// used for hotkey capture. Implementations are platform-specific.
package platform

// Registration is one installed OS-level hotkey hook.
type Registration interface {
	// Unregister removes the hook. Safe to call more than once.
	Unregister() error
}

// Hotkeys registers global hotkeys by normalized combo string
// (e.g. "ctrl+shift+k"). Callbacks fire once per combination press.
type Hotkeys interface {
	Register(combo string, onPress func()) (Registration, error)
	// Close releases every remaining registration and the message loop.
	Close() error
}

// Typer injects keystrokes into whatever application has input focus.
type Typer interface {
	TypeRune(r rune) error
	Backspace() error
}

// HookEvent is a single key transition seen by the capture hook.
type HookEvent struct {
	Key  string // canonical lower-case key name, e.g. "ctrl", "a"
	Down bool
}

// Hook intercepts and suppresses key delivery system-wide while installed.
// It must always be released, or the OS input pipeline stays blocked.
type Hook interface {
	Install(onEvent func(HookEvent)) error
	Release() error
}
