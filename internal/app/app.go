package app

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Application wires the core together: persistence substrate, session store,
// conversation controller, remote client, streamer, reachability monitor and
// the submission pipeline.
type Application struct {
	Config     Config
	Logger     *Logger
	Store      *SessionStore
	Controller *Controller
	Client     *ChatClient
	Streamer   *Streamer
	Monitor    *Monitor
	Pipeline   *Pipeline
	Recognizer Recognizer

	logFile io.Closer
	kvClose io.Closer
}

func NewApplication(cfg Config) (*Application, error) {
	root := cfg.DataRoot
	if root == "" {
		root = DefaultDataRoot()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	// Logs go to a file; stdout belongs to the TUI.
	var logger *Logger
	var logFile io.Closer
	if f, err := os.OpenFile(filepath.Join(root, "pocketchat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		logger = NewLogger(f)
		logFile = f
	}

	var kv KV
	var kvClose io.Closer
	switch cfg.Storage {
	case "sqlite":
		st, err := NewSQLiteKV(root)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		kv = st
		kvClose = st
	default:
		kv = NewFileKV(root)
	}

	store := NewSessionStore(kv, logger)
	ctrl := NewController(store)
	client := NewChatClient(cfg.ServerURL, &http.Client{Timeout: 120 * time.Second})
	streamer := NewStreamer(time.Duration(cfg.StreamDelayMs) * time.Millisecond)
	monitor := NewMonitor(cfg.ServerURL, 0)
	pipeline := NewPipeline(ctrl, store, client, streamer, monitor.Online, cfg.UserID, logger)

	a := &Application{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Controller: ctrl,
		Client:     client,
		Streamer:   streamer,
		Monitor:    monitor,
		Pipeline:   pipeline,
		Recognizer: NewCommandRecognizer(cfg.SpeechCommand),
		logFile:    logFile,
		kvClose:    kvClose,
	}
	monitor.Start()
	return a, nil
}

func (a *Application) Close() {
	a.Monitor.Stop()
	if a.kvClose != nil {
		_ = a.kvClose.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
