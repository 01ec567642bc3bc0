package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"keysnip/history"
)

func entry(name string) history.Entry {
	return history.Entry{SnippetName: name, TypedText: "text of " + name, Timestamp: time.Now()}
}

func TestEntriesMissingFile(t *testing.T) {
	l := history.NewLog(filepath.Join(t.TempDir(), "history.json"))
	if got := l.Entries(); len(got) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(got))
	}
}

func TestAppendNewestFirst(t *testing.T) {
	l := history.NewLog(filepath.Join(t.TempDir(), "history.json"))
	l.Append(entry("first"))
	l.Append(entry("second"))
	l.Append(entry("third"))

	got := l.Entries()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	want := []string{"third", "second", "first"}
	for i, name := range want {
		if got[i].SnippetName != name {
			t.Fatalf("position %d: got %q, want %q", i, got[i].SnippetName, name)
		}
	}
}

func TestTruncationAtCap(t *testing.T) {
	l := history.NewLog(filepath.Join(t.TempDir(), "history.json"))
	for i := 0; i < history.MaxEntries+20; i++ {
		l.Append(entry(fmt.Sprintf("snip-%d", i)))
	}

	got := l.Entries()
	if len(got) != history.MaxEntries {
		t.Fatalf("history has %d entries, cap is %d", len(got), history.MaxEntries)
	}
	// Newest survives, oldest were dropped.
	if got[0].SnippetName != fmt.Sprintf("snip-%d", history.MaxEntries+19) {
		t.Fatalf("newest entry is %q", got[0].SnippetName)
	}
	if got[len(got)-1].SnippetName != "snip-20" {
		t.Fatalf("oldest surviving entry is %q, want snip-20", got[len(got)-1].SnippetName)
	}
}

func TestClearWritesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	l := history.NewLog(path)
	l.Append(entry("a"))

	if err := l.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := l.Entries(); len(got) != 0 {
		t.Fatalf("expected empty history after Clear, got %d", len(got))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("history file missing after Clear: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("history file after Clear is %q, want \"[]\"", data)
	}
}

func TestMalformedFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	os.WriteFile(path, []byte("oops"), 0644)

	l := history.NewLog(path)
	if got := l.Entries(); len(got) != 0 {
		t.Fatalf("expected empty history for malformed file, got %d", len(got))
	}

	// Appending over a malformed file starts fresh.
	if err := l.Append(entry("fresh")); err != nil {
		t.Fatalf("Append over malformed file: %v", err)
	}
	if got := l.Entries(); len(got) != 1 || got[0].SnippetName != "fresh" {
		t.Fatalf("unexpected entries after recovery: %+v", got)
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	history.NewLog(path).Append(entry("persisted"))

	got := history.NewLog(path).Entries()
	if len(got) != 1 || got[0].SnippetName != "persisted" {
		t.Fatalf("entry did not persist: %+v", got)
	}
}
