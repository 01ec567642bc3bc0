// Package typing replays snippet text into the focused application with
// randomized inter-key delay and simulated correction bursts.
package typing

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"keysnip/history"
	"keysnip/platform"
	"keysnip/snippet"
	"keysnip/storage"
)

// Pauses inside a correction burst. Vars so tests can shrink them.
var (
	backspacePauseMin = 30 * time.Millisecond
	backspacePauseMax = 70 * time.Millisecond
	thinkPauseMin     = 100 * time.Millisecond
	thinkPauseMax     = 300 * time.Millisecond
)

// Engine executes snippets. Each run happens on its own goroutine; once
// started, a run cannot be cancelled and proceeds to completion or error.
type Engine struct {
	store *snippet.Store
	log   *history.Log
	db    *storage.DB // optional run metrics
	typer platform.Typer

	wg sync.WaitGroup
	// onRun, if set, is called after a run finishes (web UI notifications).
	onRun func(name string, success bool)
}

// NewEngine builds an engine over the snippet store, history log, and
// keystroke injector. db may be nil to skip run metrics.
func NewEngine(store *snippet.Store, log *history.Log, db *storage.DB, typer platform.Typer) *Engine {
	return &Engine{store: store, log: log, db: db, typer: typer}
}

// OnRun registers a completion callback. Must be set before Execute is
// called from other goroutines.
func (e *Engine) OnRun(fn func(name string, success bool)) {
	e.onRun = fn
}

// Execute looks up the snippet and types it on a background goroutine,
// returning immediately. A missing snippet or empty text is a reported
// no-op. History is appended once per started run, even on error.
func (e *Engine) Execute(name string) {
	sn, ok := e.store.Get(name)
	if !ok {
		slog.Warn("Snippet not found", "name", name)
		return
	}
	if sn.Text == "" {
		slog.Warn("Snippet has no text to type", "name", name)
		return
	}

	params := sn.Clamp()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(name, sn.Text, params)
	}()
}

// Wait blocks until all in-flight runs complete. Used at shutdown to note
// work still typing; runs are never interrupted.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) run(name, text string, p snippet.Params) {
	slog.Info("Typing started", "snippet", name, "chars", len([]rune(text)))
	start := time.Now()

	stats, err := e.typeText(text, p)

	success := err == nil
	if err != nil {
		slog.Error("Typing failed", "snippet", name, "error", err)
	} else {
		slog.Info("Typing finished", "snippet", name, "bursts", stats.bursts, "duration", time.Since(start))
	}

	// History records the source text unconditionally, not what ended up
	// on screen after corrections.
	if err := e.log.Append(history.Entry{
		SnippetName: name,
		TypedText:   text,
		Timestamp:   time.Now(),
	}); err != nil {
		slog.Error("Failed to append history", "snippet", name, "error", err)
	}

	if e.db != nil {
		rec := &storage.Run{
			SnippetName:      name,
			CharCount:        stats.runes,
			CorrectionBursts: stats.bursts,
			BackspacesSent:   stats.backspaces,
			DurationMs:       time.Since(start).Milliseconds(),
			Success:          success,
		}
		if err != nil {
			rec.ErrorMessage = err.Error()
		}
		if dbErr := e.db.SaveRun(rec); dbErr != nil {
			slog.Error("Failed to save run record", "snippet", name, "error", dbErr)
		}
	}

	if e.onRun != nil {
		e.onRun(name, success)
	}
}

type runStats struct {
	runes      int // main character events emitted
	bursts     int
	backspaces int
}

// typeText emits every rune of text in source order, occasionally
// preceded by a correction burst. An injection failure aborts the run.
func (e *Engine) typeText(text string, p snippet.Params) (runStats, error) {
	var stats runStats
	var emitted []rune

	for _, r := range text {
		if p.BackspaceProb > 0 && len(emitted) > 0 && rand.Float64() < p.BackspaceProb {
			var err error
			emitted, err = e.correctionBurst(emitted, p, &stats)
			if err != nil {
				// Burst trouble is logged but never aborts the run.
				slog.Warn("Correction burst failed", "error", err)
			}
		}

		if err := e.typer.TypeRune(r); err != nil {
			return stats, err
		}
		emitted = append(emitted, r)
		stats.runes++
		sleepUniform(p.MinDelay, p.MaxDelay)
	}
	return stats, nil
}

// correctionBurst deletes the tail of the emitted buffer, pauses as if
// hesitating, then retypes the removed runes. Returns the updated buffer.
func (e *Engine) correctionBurst(emitted []rune, p snippet.Params, stats *runStats) ([]rune, error) {
	maxN := p.MaxBackspaces
	if maxN > len(emitted) {
		maxN = len(emitted)
	}
	minN := p.MinBackspaces
	if minN > maxN {
		minN = maxN
	}
	if minN < 1 {
		return emitted, nil
	}
	n := minN + rand.Intn(maxN-minN+1)

	removed := make([]rune, n)
	copy(removed, emitted[len(emitted)-n:])

	stats.bursts++
	for i := 0; i < n; i++ {
		if err := e.typer.Backspace(); err != nil {
			return emitted, err
		}
		stats.backspaces++
		emitted = emitted[:len(emitted)-1]
		sleepUniform(backspacePauseMin, backspacePauseMax)
	}

	sleepUniform(thinkPauseMin, thinkPauseMax)

	for _, r := range removed {
		if err := e.typer.TypeRune(r); err != nil {
			return emitted, err
		}
		emitted = append(emitted, r)
		sleepUniform(p.MinDelay, p.MaxDelay)
	}
	return emitted, nil
}

func sleepUniform(min, max time.Duration) {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min + 1)))
	}
	if d > 0 {
		time.Sleep(d)
	}
}
