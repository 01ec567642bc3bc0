package hotkey

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"keysnip/platform"
)

// captureTimeout bounds how long the system-wide hook may stay installed
// if the UI never sends a stop. While the hook is active all key delivery
// is suppressed, so it must never be left behind.
const captureTimeout = 30 * time.Second

var (
	ErrCaptureActive  = errors.New("a capture session is already active")
	ErrCaptureUnknown = errors.New("no capture session with that id")
)

var captureModifiers = map[string]bool{
	"ctrl":    true,
	"shift":   true,
	"alt":     true,
	"windows": true,
	"cmd":     true,
}

// Capture runs the hotkey-recording flow behind the edit form: it installs
// the raw key hook, accumulates the held combination, and reports each
// intermediate state through an update callback. One session at a time.
type Capture struct {
	mu       sync.Mutex
	hook     platform.Hook
	id       string
	held     map[string]bool // modifiers currently down
	combo    string
	timer    *time.Timer
	onUpdate func(combo string)
}

// NewCapture wires the capture flow to a raw key hook. onUpdate receives
// the normalized combo after every key-down while a session is active.
func NewCapture(hook platform.Hook, onUpdate func(combo string)) *Capture {
	return &Capture{hook: hook, onUpdate: onUpdate}
}

// Start installs the hook and begins a session, returning its token.
func (c *Capture) Start() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id != "" {
		return "", ErrCaptureActive
	}
	if err := c.hook.Install(c.handle); err != nil {
		return "", err
	}
	c.id = uuid.NewString()
	c.held = map[string]bool{}
	c.combo = ""
	c.timer = time.AfterFunc(captureTimeout, func() {
		slog.Warn("Capture session timed out, releasing key hook")
		c.Stop(c.sessionID())
	})
	slog.Info("Hotkey capture started", "session", c.id)
	return c.id, nil
}

// Stop releases the hook and returns the final normalized combo. The id
// must match the active session.
func (c *Capture) Stop(id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" || c.id != id {
		return "", ErrCaptureUnknown
	}
	return c.stopLocked(), nil
}

// Shutdown force-releases any active session. Called on agent exit so the
// OS input pipeline is never left blocked.
func (c *Capture) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id != "" {
		c.stopLocked()
	}
}

func (c *Capture) stopLocked() string {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if err := c.hook.Release(); err != nil {
		slog.Warn("Key hook release failed", "error", err)
	}
	combo := c.combo
	c.id = ""
	c.held = nil
	slog.Info("Hotkey capture stopped", "combo", combo)
	return combo
}

func (c *Capture) sessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// handle consumes suppressed key events while a session is active. A bare
// modifier press extends the combo; a regular key fixes it to the held
// modifiers plus that key, mirroring how the combination will later be
// matched.
func (c *Capture) handle(evt platform.HookEvent) {
	c.mu.Lock()
	if c.id == "" {
		c.mu.Unlock()
		return
	}

	key := strings.ToLower(evt.Key)
	if canon, ok := synonyms[key]; ok {
		key = canon
	}

	if !evt.Down {
		if captureModifiers[key] {
			delete(c.held, key)
		}
		c.mu.Unlock()
		return
	}

	if captureModifiers[key] {
		c.held[key] = true
		parts := make([]string, 0, len(c.held))
		for m := range c.held {
			parts = append(parts, m)
		}
		sort.Strings(parts)
		c.combo = Normalize(strings.Join(parts, "+"))
	} else {
		parts := []string{key}
		for m := range c.held {
			parts = append(parts, m)
		}
		c.combo = Normalize(strings.Join(parts, "+"))
	}
	combo := c.combo
	update := c.onUpdate
	c.mu.Unlock()

	if update != nil {
		update(combo)
	}
}
