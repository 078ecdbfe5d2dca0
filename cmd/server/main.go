package main

import (
	"context"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	tanowebui "github.com/oamra/tano-web-ui"
	"github.com/oamra/tano-web-ui/internal/api"
	"github.com/oamra/tano-web-ui/internal/chat"
	"github.com/oamra/tano-web-ui/internal/handlers"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// A .env next to the binary is optional; the real environment always wins.
	_ = godotenv.Load()

	cfgPath := os.Getenv("TANO_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	backend := api.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.requestTimeout()}, logger)

	m, err := handlers.NewMain(backend, chat.Options{
		Welcome:            cfg.WelcomeMessage,
		InactivityTimeout:  cfg.inactivityTimeout(),
		SurveyShowDelay:    cfg.surveyShowDelay(),
		SurveyDismissDelay: cfg.surveyDismissDelay(),
	}, cfg.FAQ, logger)
	if err != nil {
		log.Fatal(err)
	}

	// Serve static files from the embedded filesystem
	staticFS, err := fs.Sub(tanowebui.StaticFS, "static")
	if err != nil {
		log.Fatal(err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	r := mux.NewRouter()
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fileServer))
	r.HandleFunc("/", m.HandleWidget).Methods(http.MethodGet)
	r.HandleFunc("/chat", m.HandleChat).Methods(http.MethodPost)
	r.HandleFunc("/feedback", m.HandleFeedback).Methods(http.MethodPost)
	r.HandleFunc("/survey", m.HandleSurvey).Methods(http.MethodPost)
	r.HandleFunc("/survey/close", m.HandleSurveyClose).Methods(http.MethodPost)
	r.HandleFunc("/sse", m.HandleSSE).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown sse server", slog.String("err", err.Error()))
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt/terminate signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		logger.Error("Server error", slog.String("err", err.Error()))

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", slog.String("err", err.Error()))
			if err := srv.Close(); err != nil {
				logger.Error("Forcing server close", slog.String("err", err.Error()))
			}
		}
	}
}

// newLogger builds the process logger. With a file configured, output goes through a
// size-capped rotating writer; otherwise it goes to stderr.
func newLogger(cfg logConfig) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.slogLevel()}))
}
