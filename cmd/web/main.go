package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/anasahmed07/Highflying-Themes/internal/api"
	"github.com/anasahmed07/Highflying-Themes/internal/config"
	"github.com/anasahmed07/Highflying-Themes/internal/logger"
	"github.com/anasahmed07/Highflying-Themes/internal/session"
	"github.com/anasahmed07/Highflying-Themes/internal/web"
)

func main() {
	cfg := config.LoadWebConfig()
	log := logger.New("web", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := api.New(cfg.BackendAPIURL, api.WithTimeout(cfg.APITimeout))
	if err != nil {
		log.Error("backend client setup failed", "error", err)
		os.Exit(1)
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	if addr := strings.TrimSpace(cfg.SessionRedisAddr); addr != "" {
		redisStore, err := session.NewRedisStore(addr, cfg.SessionRedisPass, cfg.SessionRedisDB, cfg.SessionTTL)
		if err != nil {
			log.Warn("redis session store unavailable, falling back to memory", "error", err)
		} else {
			store.Close()
			store = redisStore
		}
	}

	sessions, err := session.NewManager(backend, store, log, cfg.SessionSecret, cfg.CookieName, cfg.CookieSecure, cfg.SessionTTL)
	if err != nil {
		log.Error("session manager setup failed", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	limiter := web.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := web.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter.Close()
			limiter = redisLimiter
		}
	}

	server, err := web.New(cfg, backend, sessions, limiter, store.Ping, log)
	if err != nil {
		log.Error("server setup failed", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("web server starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("web server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
