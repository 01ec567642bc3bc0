// Package history keeps the capped typing-history log backing the
// "Show History" view. The file is a JSON array, newest entry first.
package history

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxEntries bounds the log so the file cannot grow indefinitely.
const MaxEntries = 100

// Entry records one typing run. TypedText is the snippet's source text,
// regardless of any simulated corrections that appeared on screen.
type Entry struct {
	SnippetName string    `json:"snippet_name"`
	TypedText   string    `json:"typed_text"`
	Timestamp   time.Time `json:"timestamp"`
}

// Log is the JSON-file-backed history. Appends load, prepend, truncate,
// and rewrite the whole file; last write wins.
type Log struct {
	mu       sync.Mutex
	filePath string
}

// NewLog creates a log backed by filePath. The file is created lazily on
// the first append.
func NewLog(filePath string) *Log {
	return &Log{filePath: filePath}
}

// Entries returns the history, newest first. Read or parse failures are
// logged and yield an empty history.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked()
}

// Append prepends an entry and truncates to MaxEntries.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := append([]Entry{e}, l.readLocked()...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return l.writeLocked(entries)
}

// Clear overwrites the log with an empty list.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeLocked([]Entry{})
}

func (l *Log) readLocked() []Entry {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("Failed to read history file", "path", l.filePath, "error", err)
		}
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Error("Failed to parse history file", "path", l.filePath, "error", err)
		return nil
	}
	return entries
}

func (l *Log) writeLocked(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.filePath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := l.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, l.filePath)
}
