package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kpauljoseph/pagemark/internal/config"
	"github.com/kpauljoseph/pagemark/internal/httpapi"
	"github.com/kpauljoseph/pagemark/internal/session"
	"github.com/kpauljoseph/pagemark/internal/workspace"
	"github.com/kpauljoseph/pagemark/pkg/logger"
	"github.com/kpauljoseph/pagemark/pkg/version"
)

func main() {
	configPath := flag.String("config", "pagemark.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	flag.Parse()

	log := logger.New(logger.WithPrefix("[pagemark-server] "))

	// Load environment variables from .env file
	if err := config.LoadEnv(); err != nil {
		log.Warn(".env file could not be loaded: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	editor, err := session.NewEditor(cfg.EditorOptions(), log)
	if err != nil {
		log.Fatal("Error initializing editor: %v", err)
	}
	ws := workspace.New(editor, log)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(ws, log, httpapi.Options{AllowedOrigins: cfg.Server.AllowedOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("%s listening on %s", version.GetVersionInfo(), server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown: %v", err)
	}
	ws.Shutdown()
	log.Info("Server exited")
}
