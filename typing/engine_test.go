package typing

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"keysnip/history"
	"keysnip/snippet"
	"keysnip/storage"
)

func init() {
	// Keep correction pauses out of test runtime.
	backspacePauseMin = 0
	backspacePauseMax = 0
	thinkPauseMin = 0
	thinkPauseMax = 0
}

// recordingTyper applies keystrokes to an in-memory screen buffer.
type recordingTyper struct {
	mu      sync.Mutex
	screen  []rune
	typed   []rune // every rune event, including retypes
	failAt  int    // fail the Nth rune event (1-based), 0 = never
	nEvents int
}

func (r *recordingTyper) TypeRune(ch rune) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nEvents++
	if r.failAt > 0 && r.nEvents >= r.failAt {
		return errors.New("injection failed")
	}
	r.screen = append(r.screen, ch)
	r.typed = append(r.typed, ch)
	return nil
}

func (r *recordingTyper) Backspace() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.screen) > 0 {
		r.screen = r.screen[:len(r.screen)-1]
	}
	return nil
}

func (r *recordingTyper) screenText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.screen)
}

func newTestEngine(t *testing.T, typer *recordingTyper, snippets map[string]snippet.Snippet) (*Engine, *history.Log) {
	t.Helper()
	dir := t.TempDir()
	store := snippet.NewStore(filepath.Join(dir, "snippets.json"))
	for name, sn := range snippets {
		require.NoError(t, store.Put(name, sn))
	}
	log := history.NewLog(filepath.Join(dir, "history.json"))
	return NewEngine(store, log, nil, typer), log
}

func TestTypesEveryRuneInOrder(t *testing.T) {
	typer := &recordingTyper{}
	e, log := newTestEngine(t, typer, map[string]snippet.Snippet{
		"plain": {Text: "hello, world", MinDelayMs: 0, MaxDelayMs: 0, MinBackspaces: 1, MaxBackspaces: 3},
	})

	e.Execute("plain")
	e.Wait()

	require.Equal(t, "hello, world", typer.screenText())
	entries := log.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "plain", entries[0].SnippetName)
	require.Equal(t, "hello, world", entries[0].TypedText)
}

func TestCorrectionBurstsPreserveFinalText(t *testing.T) {
	typer := &recordingTyper{}
	e, log := newTestEngine(t, typer, map[string]snippet.Snippet{
		"wobbly": {
			Text:                 "simulated human typing",
			MinDelayMs:           0,
			MaxDelayMs:           0,
			BackspaceProbability: 1, // burst before every rune after the first
			MinBackspaces:        1,
			MaxBackspaces:        1,
		},
	})

	e.Execute("wobbly")
	e.Wait()

	// Corrections delete and retype, but the screen must end up exact.
	require.Equal(t, "simulated human typing", typer.screenText())
	// With p=1 and n=1, every rune after the first is preceded by a
	// burst, so strictly more rune events than source runes occurred.
	require.Greater(t, len(typer.typed), len("simulated human typing"))
	require.Len(t, log.Entries(), 1)
}

func TestBurstNeverPrecedesFirstRune(t *testing.T) {
	typer := &recordingTyper{}
	e, _ := newTestEngine(t, typer, map[string]snippet.Snippet{
		"one": {Text: "x", BackspaceProbability: 1, MinBackspaces: 1, MaxBackspaces: 3},
	})

	e.Execute("one")
	e.Wait()

	// A single-rune snippet can never trigger a correction burst.
	require.Equal(t, []rune("x"), typer.typed)
}

func TestMissingSnippetIsReportedNoOp(t *testing.T) {
	typer := &recordingTyper{}
	e, log := newTestEngine(t, typer, nil)

	e.Execute("ghost")
	e.Wait()

	require.Empty(t, typer.typed)
	require.Empty(t, log.Entries())
}

func TestEmptyTextIsNoOp(t *testing.T) {
	typer := &recordingTyper{}
	e, log := newTestEngine(t, typer, map[string]snippet.Snippet{
		"blank": {Text: ""},
	})

	e.Execute("blank")
	e.Wait()

	require.Empty(t, typer.typed)
	require.Empty(t, log.Entries())
}

func TestHistoryRecordedOnFailure(t *testing.T) {
	typer := &recordingTyper{failAt: 3}
	e, log := newTestEngine(t, typer, map[string]snippet.Snippet{
		"doomed": {Text: "abcdef"},
	})

	e.Execute("doomed")
	e.Wait()

	// History logs the full source text even though typing aborted.
	entries := log.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "abcdef", entries[0].TypedText)
}

func TestRunRecordSaved(t *testing.T) {
	db, err := storage.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	store := snippet.NewStore(filepath.Join(dir, "snippets.json"))
	require.NoError(t, store.Put("tracked", snippet.Snippet{
		Text:                 "abcde",
		BackspaceProbability: 1,
		MinBackspaces:        1,
		MaxBackspaces:        1,
	}))
	log := history.NewLog(filepath.Join(dir, "history.json"))
	e := NewEngine(store, log, db, &recordingTyper{})

	e.Execute("tracked")
	e.Wait()

	runs, err := db.GetRuns(10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "tracked", runs[0].SnippetName)
	require.Equal(t, 5, runs[0].CharCount)
	require.Equal(t, 4, runs[0].CorrectionBursts)
	require.Equal(t, 4, runs[0].BackspacesSent)
	require.True(t, runs[0].Success)
}

func TestOnRunCallback(t *testing.T) {
	typer := &recordingTyper{}
	e, _ := newTestEngine(t, typer, map[string]snippet.Snippet{
		"cb": {Text: "hi"},
	})

	done := make(chan bool, 1)
	e.OnRun(func(name string, success bool) { done <- success })

	e.Execute("cb")
	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("OnRun never fired")
	}
}
