package main

import (
	"context"
	"fmt"
	"log/slog"

	"keysnip/config"
	"keysnip/history"
	"keysnip/hotkey"
	"keysnip/platform"
	"keysnip/snippet"
	"keysnip/storage"
	"keysnip/typing"
	"keysnip/web"
)

// Agent wires the snippet store, hotkey registrar, typing engine, and web
// UI together and owns their lifetimes.
type Agent struct {
	cfg       *config.Config
	store     *snippet.Store
	log       *history.Log
	db        *storage.DB
	hotkeys   platform.Hotkeys
	engine    *typing.Engine
	registrar *hotkey.Registrar
	capture   *hotkey.Capture
	web       *web.Server
}

// NewAgent creates the agent. Failure to reach the OS hotkey facility or
// the metrics database is a startup error and aborts.
func NewAgent(cfg *config.Config) (*Agent, error) {
	snippetsPath, err := cfg.SnippetsPath()
	if err != nil {
		return nil, err
	}
	historyPath, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}

	hotkeys, err := platform.NewHotkeys()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start hotkey facility: %w", err)
	}

	a := &Agent{
		cfg:     cfg,
		store:   snippet.NewStore(snippetsPath),
		log:     history.NewLog(historyPath),
		db:      db,
		hotkeys: hotkeys,
	}

	a.engine = typing.NewEngine(a.store, a.log, a.db, platform.NewTyper())
	a.registrar = hotkey.NewRegistrar(hotkeys, a.engine.Execute)
	a.capture = hotkey.NewCapture(platform.NewHook(), func(combo string) {
		if a.web != nil {
			a.web.BroadcastCapture(combo)
		}
	})

	if cfg.Web.Enabled {
		a.web = web.NewServer(a.store, a.log, a.db, a.engine.Execute, a.capture, a.registrar, cfg.Web.Port)
	}

	a.engine.OnRun(func(name string, success bool) {
		if a.web != nil {
			a.web.BroadcastRun(name, success)
		}
	})

	// Bindings are derived state: every store mutation recomputes them.
	a.store.OnChange(func() {
		a.registrar.Rebind(a.store.All())
		if a.web != nil {
			a.web.BroadcastSnippetsChanged()
		}
	})

	return a, nil
}

// Run starts all agent services and blocks until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	a.registrar.Rebind(a.store.All())

	go func() {
		if err := snippet.Watch(ctx, a.store); err != nil {
			slog.Warn("Snippet file watcher unavailable", "error", err)
		}
	}()

	webErr := make(chan error, 1)
	if a.web != nil {
		go func() { webErr <- a.web.Start(ctx) }()
	}

	slog.Info("keysnip started", "snippets", len(a.store.All()), "web", a.cfg.Web.Enabled)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-webErr:
		if err != nil {
			runErr = fmt.Errorf("web server failed: %w", err)
		}
	}

	// OS hooks and the DB are released on every exit path, including a
	// failed web server.
	a.shutdown()
	return runErr
}

// PauseHotkeys toggles all snippet hotkeys. Used by the tray menu.
func (a *Agent) PauseHotkeys(paused bool) {
	if paused {
		slog.Info("Hotkeys paused")
		a.registrar.Suspend()
	} else {
		slog.Info("Hotkeys resumed")
		a.registrar.Resume()
	}
}

// shutdown releases OS hooks first (the capture hook blocks all key
// delivery while installed), then waits out in-flight typing runs.
func (a *Agent) shutdown() {
	a.capture.Shutdown()
	a.registrar.Close()
	a.hotkeys.Close()

	slog.Info("Waiting for in-flight typing runs")
	a.engine.Wait()

	if err := a.db.Close(); err != nil {
		slog.Warn("Failed to close run database", "error", err)
	}
}
