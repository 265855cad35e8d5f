package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/erudithe/portal/internal/analysis"
	"github.com/erudithe/portal/internal/api"
	"github.com/erudithe/portal/internal/config"
	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/identity"
	"github.com/erudithe/portal/internal/mcp"
	"github.com/erudithe/portal/internal/sqlite"
	"github.com/erudithe/portal/internal/storage"
	"github.com/erudithe/portal/internal/watch"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxUploadBytes = 64 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if cfg.Auth.Secret == "" {
		logger.Error("auth secret is required; set PORTAL_AUTH_SECRET")
		os.Exit(1)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	hub := watch.NewHub()
	quoteRepo := sqlite.NewQuoteRepository(db, hub)
	projectRepo := sqlite.NewProjectRepository(db, hub)
	userRepo := sqlite.NewUserRepository(db, hub)

	var analyzer quote.Analyzer
	if cfg.Analyzer.APIKey != "" {
		analyzer = analysis.NewService(cfg.Analyzer.APIKey, cfg.Analyzer.BaseURL, cfg.Analyzer.Model)
		logger.Info("quote analyzer enabled", "model", cfg.Analyzer.Model)
	}

	userSvc := user.NewService(userRepo, logger)
	quoteSvc := quote.NewService(quoteRepo, analyzer, logger)
	projectSvc := project.NewService(projectRepo, userSvc, logger)

	files, err := storage.NewFileManager(cfg.Storage.Dir, maxUploadBytes)
	if err != nil {
		logger.Error("failed to prepare storage directory", "error", err)
		os.Exit(1)
	}

	tokens, err := identity.NewManager(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTL))
	if err != nil {
		logger.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Quotes:   quoteSvc,
			Projects: projectSvc,
			Users:    userSvc,
		},
		Verifier: tokens,
		Logger:   logger,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	srv := api.NewServer(quoteSvc, projectSvc, userSvc, files, tokens, hub, logger)
	router := srv.Router()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
