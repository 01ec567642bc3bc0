package snippet_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"keysnip/snippet"
)

func TestNewStoreMissingFile(t *testing.T) {
	s := snippet.NewStore(filepath.Join(t.TempDir(), "nonexistent.json"))
	if got := s.All(); len(got) != 0 {
		t.Fatalf("expected empty store, got %d snippets", len(got))
	}
}

func TestNewStoreMalformedFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := snippet.NewStore(path)
	if got := s.All(); len(got) != 0 {
		t.Fatalf("expected empty store for malformed file, got %d", len(got))
	}
}

func TestPutPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.json")
	s := snippet.NewStore(path)

	sn := snippet.Snippet{Text: "hello", MinDelayMs: 10, MaxDelayMs: 50, Hotkey: "ctrl+shift+h"}
	if err := s.Put("greeting", sn); err != nil {
		t.Fatalf("Put: %v", err)
	}

	s2 := snippet.NewStore(path)
	got, ok := s2.Get("greeting")
	if !ok {
		t.Fatal("snippet missing after reload")
	}
	if got.Text != "hello" || got.Hotkey != "ctrl+shift+h" {
		t.Fatalf("unexpected snippet after reload: %+v", got)
	}
}

func TestDeleteAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.json")
	s := snippet.NewStore(path)
	s.Put("a", snippet.Snippet{Text: "x"})
	s.Put("b", snippet.Snippet{Text: "y"})

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("deleted snippet still present")
	}
	if err := s.Delete("a"); err != nil {
		t.Fatalf("deleting a missing name should be a no-op, got %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := s.All(); len(got) != 0 {
		t.Fatalf("expected empty store after Clear, got %d", len(got))
	}

	// The file must contain an empty object, not be deleted.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file after Clear: %v", err)
	}
	var m map[string]snippet.Snippet
	if err := json.Unmarshal(data, &m); err != nil || len(m) != 0 {
		t.Fatalf("store file after Clear should be an empty object, got %q", data)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := snippet.NewStore(filepath.Join(dir, "snippets.json"))
	s.Put("one", snippet.Snippet{Text: "first", Category: "work"})
	s.Put("two", snippet.Snippet{Text: "second", Hotkey: "ctrl+2"})

	exportPath := filepath.Join(dir, "export.json")
	if err := s.Export(exportPath); err != nil {
		t.Fatalf("Export: %v", err)
	}

	s2 := snippet.NewStore(filepath.Join(dir, "other.json"))
	n, err := s2.Import(exportPath)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d snippets, want 2", n)
	}

	want := s.All()
	got := s2.All()
	if len(got) != len(want) {
		t.Fatalf("round trip changed count: %d != %d", len(got), len(want))
	}
	for name, sn := range want {
		if got[name] != sn {
			t.Fatalf("round trip changed %q: %+v != %+v", name, got[name], sn)
		}
	}
}

func TestImportMergesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := snippet.NewStore(filepath.Join(dir, "snippets.json"))
	s.Put("keep", snippet.Snippet{Text: "kept"})
	s.Put("replace", snippet.Snippet{Text: "old"})

	importPath := filepath.Join(dir, "incoming.json")
	incoming := map[string]snippet.Snippet{
		"replace": {Text: "new"},
		"added":   {Text: "fresh"},
	}
	data, _ := json.Marshal(incoming)
	os.WriteFile(importPath, data, 0644)

	if _, err := s.Import(importPath); err != nil {
		t.Fatalf("Import: %v", err)
	}

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 snippets after merge, got %d", len(all))
	}
	if all["replace"].Text != "new" {
		t.Fatalf("import did not overwrite: %q", all["replace"].Text)
	}
	if all["keep"].Text != "kept" {
		t.Fatal("import dropped an existing snippet")
	}
}

func TestImportRejectsNonObject(t *testing.T) {
	dir := t.TempDir()
	s := snippet.NewStore(filepath.Join(dir, "snippets.json"))

	for _, body := range []string{`[1, 2, 3]`, `"just a string"`, `42`, `null`} {
		path := filepath.Join(dir, "bad.json")
		os.WriteFile(path, []byte(body), 0644)
		if _, err := s.Import(path); err == nil {
			t.Fatalf("import of %s should be rejected", body)
		}
	}
}

func TestImportNullDoesNotTouchStore(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "snippets.json")
	s := snippet.NewStore(storePath)
	s.Put("keep", snippet.Snippet{Text: "kept"})

	var changes int
	s.OnChange(func() { changes++ })

	nullPath := filepath.Join(dir, "null.json")
	os.WriteFile(nullPath, []byte(`null`), 0644)
	if _, err := s.Import(nullPath); err == nil {
		t.Fatal("import of JSON null should be rejected")
	}
	if changes != 0 {
		t.Fatalf("rejected import fired %d change notifications", changes)
	}
	if got := s.All(); len(got) != 1 || got["keep"].Text != "kept" {
		t.Fatalf("rejected import altered the store: %+v", got)
	}
}

func TestOnChangeFiresPerMutation(t *testing.T) {
	s := snippet.NewStore(filepath.Join(t.TempDir(), "snippets.json"))
	var calls int
	s.OnChange(func() { calls++ })

	s.Put("a", snippet.Snippet{Text: "x"})
	s.Delete("a")
	s.Clear()

	if calls != 3 {
		t.Fatalf("expected 3 change notifications, got %d", calls)
	}
}
