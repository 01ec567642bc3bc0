package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"keysnip/history"
	"keysnip/hotkey"
	"keysnip/snippet"
	"keysnip/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local-only server
	},
}

// Server is the local web UI: REST API plus a websocket event feed.
type Server struct {
	store     *snippet.Store
	log       *history.Log
	db        *storage.DB
	execute   func(name string)
	capture   *hotkey.Capture
	registrar *hotkey.Registrar
	hub       *Hub
	port      int
}

// NewServer wires the web UI to the agent's components. execute schedules
// a typing run by snippet name.
func NewServer(store *snippet.Store, log *history.Log, db *storage.DB, execute func(string), capture *hotkey.Capture, registrar *hotkey.Registrar, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		store:     store,
		log:       log,
		db:        db,
		execute:   execute,
		capture:   capture,
		registrar: registrar,
		hub:       hub,
		port:      port,
	}
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting web server", "url", fmt.Sprintf("http://localhost:%d", s.port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/snippets", s.handleGetSnippets)
	r.Put("/api/snippets", s.handlePutSnippets)
	r.Delete("/api/snippets", s.handleClearSnippets)
	r.Post("/api/snippets/import", s.handleImport)
	r.Post("/api/snippets/export", s.handleExport)

	r.Post("/api/type/{name}", s.handleType)

	r.Get("/api/history", s.handleGetHistory)
	r.Delete("/api/history", s.handleClearHistory)

	r.Get("/api/runs", s.handleGetRuns)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/status", s.handleStatus)

	r.Post("/api/capture/start", s.handleCaptureStart)
	r.Post("/api/capture/stop", s.handleCaptureStop)

	r.Get("/ws", s.handleWebSocket)

	staticFS, _ := fs.Sub(staticFiles, "static")
	r.Handle("/*", http.FileServer(http.FS(staticFS)))

	return r
}

// BroadcastCapture pushes an intermediate captured combo to the UI.
func (s *Server) BroadcastCapture(combo string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeCapture,
		Data: map[string]string{"combo": combo},
	})
}

// BroadcastRun announces a finished typing run.
func (s *Server) BroadcastRun(name string, success bool) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeRun,
		Data: map[string]any{
			"snippet":   name,
			"success":   success,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// BroadcastSnippetsChanged tells clients to refetch the snippet set.
func (s *Server) BroadcastSnippetsChanged() {
	s.hub.BroadcastMessage(Message{Type: MessageTypeSnippets})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
