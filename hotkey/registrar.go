package hotkey

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"keysnip/platform"
	"keysnip/snippet"
)

// triggerDelay keeps the injected keystrokes from colliding with the
// hotkey's own key-up events.
const triggerDelay = 100 * time.Millisecond

// Registrar derives OS-level hotkey registrations from the snippet set.
// Bindings are not stored independently: Rebind recomputes them wholesale
// on every snippet change.
type Registrar struct {
	mu        sync.Mutex
	hotkeys   platform.Hotkeys
	execute   func(name string)
	regs      []platform.Registration
	bindings  map[string]string // normalized combo -> snippet name
	suspended bool
}

// NewRegistrar creates a registrar that schedules execute on a fresh
// goroutine whenever a bound hotkey fires.
func NewRegistrar(hotkeys platform.Hotkeys, execute func(name string)) *Registrar {
	return &Registrar{
		hotkeys:  hotkeys,
		execute:  execute,
		bindings: map[string]string{},
	}
}

// Rebind replaces all registrations with one per snippet that has a
// non-empty normalized hotkey. Individual unregister and register failures
// are logged and swallowed; a bad hotkey never blocks the rest.
func (r *Registrar) Rebind(snippets map[string]snippet.Snippet) {
	names := make([]string, 0, len(snippets))
	for name := range snippets {
		names = append(names, name)
	}
	sort.Strings(names)

	bindings := map[string]string{}
	for _, name := range names {
		combo := Normalize(snippets[name].Hotkey)
		if combo == "" {
			continue
		}
		if prev, ok := bindings[combo]; ok {
			slog.Warn("Duplicate hotkey ignored", "combo", combo, "snippet", name, "bound", prev)
			continue
		}
		bindings[combo] = name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = bindings
	r.applyLocked()
}

// Suspend drops all OS registrations but keeps the derived bindings so
// Resume can restore them. Used by the tray "Pause hotkeys" item.
func (r *Registrar) Suspend() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended = true
	r.unregisterAllLocked()
}

// Resume re-applies the current bindings.
func (r *Registrar) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended = false
	r.applyLocked()
}

// Suspended reports whether hotkeys are currently paused.
func (r *Registrar) Suspended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suspended
}

// Close releases every registration.
func (r *Registrar) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterAllLocked()
}

func (r *Registrar) applyLocked() {
	r.unregisterAllLocked()
	if r.suspended {
		return
	}

	combos := make([]string, 0, len(r.bindings))
	for combo := range r.bindings {
		combos = append(combos, combo)
	}
	sort.Strings(combos)

	for _, combo := range combos {
		name := r.bindings[combo]
		reg, err := r.hotkeys.Register(combo, r.trigger(name))
		if err != nil {
			slog.Warn("Could not register hotkey", "combo", combo, "snippet", name, "error", err)
			continue
		}
		r.regs = append(r.regs, reg)
	}
	slog.Info("Hotkeys registered", "count", len(r.regs))
}

func (r *Registrar) unregisterAllLocked() {
	for _, reg := range r.regs {
		if err := reg.Unregister(); err != nil {
			slog.Debug("Hotkey unregister failed", "error", err)
		}
	}
	r.regs = nil
}

// trigger returns the press callback for one snippet. Typing runs on its
// own goroutine so hotkey dispatch is never blocked.
func (r *Registrar) trigger(name string) func() {
	return func() {
		go func() {
			time.Sleep(triggerDelay)
			r.execute(name)
		}()
	}
}
