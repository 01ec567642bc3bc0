package snippet

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotObject is returned when an import file does not contain a JSON
// object keyed by snippet name.
var ErrNotObject = errors.New("import file is not a JSON object")

// Store owns the snippet set and its backing JSON file. Every mutation is
// persisted immediately; an on-change callback lets the agent rebind
// hotkeys and notify the web UI.
type Store struct {
	mu       sync.RWMutex
	filePath string
	snippets map[string]Snippet
	onChange func()
}

// NewStore loads the snippet set from filePath. A missing file yields an
// empty store; unreadable or malformed content is logged and treated as
// empty rather than failing startup.
func NewStore(filePath string) *Store {
	s := &Store{
		filePath: filePath,
		snippets: map[string]Snippet{},
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("Failed to read snippet file, starting empty", "path", filePath, "error", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.snippets); err != nil {
		slog.Error("Failed to parse snippet file, starting empty", "path", filePath, "error", err)
		s.snippets = map[string]Snippet{}
	}
	return s
}

// OnChange registers a callback invoked after every successful mutation.
// Must be set before the store is shared across goroutines.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// Get returns the snippet for name.
func (s *Store) Get(name string) (Snippet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.snippets[name]
	return sn, ok
}

// All returns a copy of the full snippet set.
func (s *Store) All() map[string]Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Snippet, len(s.snippets))
	for name, sn := range s.snippets {
		out[name] = sn
	}
	return out
}

// Put adds or replaces a snippet and persists the set.
func (s *Store) Put(name string, sn Snippet) error {
	s.mu.Lock()
	s.snippets[name] = sn
	err := s.writeLocked()
	s.mu.Unlock()
	s.notify()
	return err
}

// Delete removes a snippet and persists the set. Deleting an unknown name
// is a no-op.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	if _, ok := s.snippets[name]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.snippets, name)
	err := s.writeLocked()
	s.mu.Unlock()
	s.notify()
	return err
}

// ReplaceAll swaps in a whole new snippet set and persists it.
func (s *Store) ReplaceAll(snippets map[string]Snippet) error {
	if snippets == nil {
		snippets = map[string]Snippet{}
	}
	s.mu.Lock()
	s.snippets = snippets
	err := s.writeLocked()
	s.mu.Unlock()
	s.notify()
	return err
}

// Clear removes every snippet and writes an empty object.
func (s *Store) Clear() error {
	return s.ReplaceAll(nil)
}

// Import merges snippets from a JSON file into the store, overwriting
// entries with the same name. Any JSON shape other than an object keyed by
// name is rejected.
func (s *Store) Import(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read import file: %w", err)
	}
	var imported map[string]Snippet
	if err := json.Unmarshal(data, &imported); err != nil {
		return 0, ErrNotObject
	}
	// JSON null unmarshals into a nil map without error.
	if imported == nil {
		return 0, ErrNotObject
	}
	s.mu.Lock()
	for name, sn := range imported {
		s.snippets[name] = sn
	}
	err = s.writeLocked()
	s.mu.Unlock()
	s.notify()
	if err != nil {
		return len(imported), err
	}
	return len(imported), nil
}

// Export writes the current snippet set to a user-chosen path.
func (s *Store) Export(path string) error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.snippets, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Reload re-reads the backing file, replacing the in-memory set. Used when
// the file changes on disk outside this process.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			data = []byte("{}")
		} else {
			return err
		}
	}
	var snippets map[string]Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return fmt.Errorf("failed to parse snippet file: %w", err)
	}
	if snippets == nil {
		snippets = map[string]Snippet{}
	}
	s.mu.Lock()
	s.snippets = snippets
	s.mu.Unlock()
	s.notify()
	return nil
}

// writeLocked writes the set to a temp file then renames it over filePath.
// Caller must hold s.mu.
func (s *Store) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.snippets, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
