package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ifrs-console/internal/apiclient"
	"ifrs-console/internal/config"
	"ifrs-console/internal/handler"
	"ifrs-console/internal/logger"
	"ifrs-console/internal/middleware"
	"ifrs-console/internal/session"
	"ifrs-console/internal/store"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	if cfg.UsesDefaultSecret() {
		slog.Warn("cookie secret not configured, using development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, stats, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("token store init failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}

	renderer, err := web.New()
	if err != nil {
		slog.Error("templates failed to parse", "err", err)
		os.Exit(1)
	}

	api := apiclient.New(cfg.Backend.BaseURL, cfg.BackendTimeout())
	sessions := session.NewManager(api, tokens)
	cookies := middleware.Cookies{
		Codec:  session.NewCookieCodec(cfg.Server.CookieSecret, cfg.CookieMaxAge()),
		Secure: cfg.Server.CookieSecure,
	}
	deps := &handler.Deps{API: api, Sessions: sessions, Cookies: cookies, Busy: view.NewBusy()}
	health := handler.NewHealthHandler(api, stats)

	r := gin.Default()
	r.HTMLRender = renderer
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.StaticFS("/static", web.Static())
	r.GET("/healthz", health.Healthz)

	pages := r.Group("", middleware.Session(cookies, sessions))
	pages.GET("/api/session", health.Session)
	handler.New(deps, cfg.UploadLimit()).Mount(pages)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "backend", api.BaseURL(), "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
}

// openStore builds the token store named by the config. The stats func
// feeds /healthz.
func openStore(ctx context.Context, cfg *config.Config) (store.TokenStore, func() any, error) {
	switch cfg.Store.Driver {
	case "mysql", "sqlite":
		open := cfg.OpenGormDB
		if cfg.Store.Driver == "sqlite" {
			open = cfg.OpenSQLiteDB
		}
		db, err := open()
		if err != nil {
			return nil, nil, err
		}
		s := store.NewGormStore(db, cfg.StoreTTL())
		if err := s.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		go purgeLoop(ctx, s)
		return s, func() any { return gin.H{"driver": cfg.Store.Driver} }, nil
	default:
		s := store.NewMemoryStore(store.MemoryConfig{TTL: cfg.StoreTTL(), MaxSize: cfg.Store.MaxSize})
		return s, func() any { return s.Stats() }, nil
	}
}

func purgeLoop(ctx context.Context, s *store.GormStore) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("session purge failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Info("session purge", "removed", n)
			}
		}
	}
}
